package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mulengadev/lendstack/internal/config"
	"github.com/mulengadev/lendstack/internal/domain/gateway"
	"github.com/mulengadev/lendstack/internal/domain/models"
	apperrors "github.com/mulengadev/lendstack/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(config.Gateway{
		Mode:           "sandbox",
		SandboxBaseURL: url,
		SandboxToken:   "test-token",
		TimeoutSeconds: "2",
		MaxAttempts:    "2",
		Description:    "LendStackPay",
	})
	require.NoError(t, err)
	c.retryDelay = 0
	return c
}

func TestInitiateDeposit(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deposits", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{"depositId": captured["depositId"].(string), "status": "ACCEPTED"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	res, err := client.InitiateDeposit(context.Background(), gateway.DepositRequest{
		DepositID:     "dep-1",
		Amount:        decimal.RequireFromString("250.5"),
		Currency:      "ZMW",
		PayerPhone:    "260965123456",
		Correspondent: "MTN_MOMO_ZMB",
		Description:   "LendStackPay",
		Metadata: models.NewFieldListMetadata(
			models.MetadataField{Name: "userId", Value: "u1", PII: true},
		),
	})

	require.NoError(t, err)
	assert.Equal(t, "dep-1", res.ExternalID)
	assert.Equal(t, models.TxAccepted, res.Status)
	assert.Equal(t, "250.50", captured["amount"])
	assert.Equal(t, "MSISDN", captured["payer"].(map[string]interface{})["type"])
}

func TestInitiatePayoutPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payouts", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"payoutId": "pay-1", "status": "PENDING"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	res, err := client.InitiatePayout(context.Background(), gateway.PayoutRequest{
		PayoutID:       "pay-1",
		Amount:         decimal.NewFromInt(100),
		Currency:       "ZMW",
		RecipientPhone: "260977000111",
		Correspondent:  "AIRTEL_OAPI_ZMB",
	})

	require.NoError(t, err)
	assert.Equal(t, "pay-1", res.ExternalID)
	assert.Equal(t, models.TxPending, res.Status)
}

func TestNonJSONResponseIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway under maintenance</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.InitiateDeposit(context.Background(), gateway.DepositRequest{DepositID: "dep-2"})

	var upstream *apperrors.UpstreamError
	require.Error(t, err)
	assert.True(t, apperrors.As(err, &upstream))
}

func TestServerErrorRetriedThenSurfaced(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.DepositStatus(context.Background(), "dep-3")

	require.Error(t, err)
	assert.Equal(t, 2, calls, "bounded retry should re-attempt once")

	var upstream *apperrors.UpstreamError
	assert.True(t, apperrors.As(err, &upstream))
}

func TestTransientFailureRecoversOnRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"depositId": "dep-4", "status": "COMPLETED"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	res, err := client.DepositStatus(context.Background(), "dep-4")

	require.NoError(t, err)
	assert.Equal(t, models.TxCompleted, res.Status)
	assert.Equal(t, 2, calls)
}
