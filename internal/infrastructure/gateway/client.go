package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mulengadev/lendstack/internal/config"
	"github.com/mulengadev/lendstack/internal/domain/gateway"
	"github.com/mulengadev/lendstack/internal/domain/models"
	apperrors "github.com/mulengadev/lendstack/internal/errors"
	"github.com/mulengadev/lendstack/pkg/log"
	"github.com/mulengadev/lendstack/pkg/util/repeat"
	"github.com/rs/zerolog"
)

// HTTPClient talks to the PawaPay-style collection/payout API. Every call has
// an explicit timeout; failed calls are retried a bounded number of times,
// which is safe because the deposit/payout ids act as idempotency tokens.
type HTTPClient struct {
	cfg         config.Gateway
	http        *http.Client
	maxAttempts int
	retryDelay  time.Duration
	logger      *zerolog.Logger
}

func NewHTTPClient(cfg config.Gateway) (*HTTPClient, error) {
	timeout, err := strconv.Atoi(cfg.TimeoutSeconds)
	if err != nil {
		return nil, fmt.Errorf("strconv.Atoi: %w", err)
	}
	attempts, err := strconv.Atoi(cfg.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("strconv.Atoi: %w", err)
	}

	l := log.GetLogger()
	return &HTTPClient{
		cfg:         cfg,
		http:        &http.Client{Timeout: time.Duration(timeout) * time.Second},
		maxAttempts: attempts,
		retryDelay:  time.Second,
		logger:      &l,
	}, nil
}

type payerAddress struct {
	Value string `json:"value"`
}

type payer struct {
	Type    string       `json:"type"`
	Address payerAddress `json:"address"`
}

type depositPayload struct {
	DepositID            string          `json:"depositId"`
	Amount               string          `json:"amount"`
	Currency             string          `json:"currency"`
	Correspondent        string          `json:"correspondent"`
	Payer                payer           `json:"payer"`
	CustomerTimestamp    string          `json:"customerTimestamp"`
	StatementDescription string          `json:"statementDescription"`
	Metadata             models.Metadata `json:"metadata"`
}

type payoutPayload struct {
	PayoutID             string          `json:"payoutId"`
	Amount               string          `json:"amount"`
	Currency             string          `json:"currency"`
	Correspondent        string          `json:"correspondent"`
	Recipient            payer           `json:"recipient"`
	CustomerTimestamp    string          `json:"customerTimestamp"`
	StatementDescription string          `json:"statementDescription"`
	Metadata             models.Metadata `json:"metadata"`
}

type gatewayResponse struct {
	DepositID string `json:"depositId"`
	PayoutID  string `json:"payoutId"`
	Status    string `json:"status"`
}

func (c *HTTPClient) InitiateDeposit(ctx context.Context, req gateway.DepositRequest) (*gateway.Result, error) {
	payload := depositPayload{
		DepositID:            req.DepositID,
		Amount:               req.Amount.StringFixed(2),
		Currency:             req.Currency,
		Correspondent:        req.Correspondent,
		Payer:                payer{Type: "MSISDN", Address: payerAddress{Value: req.PayerPhone}},
		CustomerTimestamp:    time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		StatementDescription: req.Description,
		Metadata:             req.Metadata,
	}
	return c.post(ctx, c.cfg.BaseURL()+"/deposits", payload)
}

func (c *HTTPClient) InitiatePayout(ctx context.Context, req gateway.PayoutRequest) (*gateway.Result, error) {
	payload := payoutPayload{
		PayoutID:             req.PayoutID,
		Amount:               req.Amount.StringFixed(2),
		Currency:             req.Currency,
		Correspondent:        req.Correspondent,
		Recipient:            payer{Type: "MSISDN", Address: payerAddress{Value: req.RecipientPhone}},
		CustomerTimestamp:    time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		StatementDescription: req.Description,
		Metadata:             req.Metadata,
	}
	return c.post(ctx, c.cfg.BaseURL()+"/v2/payouts", payload)
}

func (c *HTTPClient) DepositStatus(ctx context.Context, depositID string) (*gateway.Result, error) {
	var result *gateway.Result
	err := repeat.Repeat(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL()+"/deposits/"+depositID, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token())

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		result, err = c.decode(resp)
		return err
	}, c.maxAttempts, c.retryDelay)

	if err != nil {
		return nil, wrapUpstream("deposit status check failed", err)
	}
	return result, nil
}

func (c *HTTPClient) post(ctx context.Context, url string, payload interface{}) (*gateway.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var result *gateway.Result
	err = repeat.Repeat(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token())
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		result, err = c.decode(resp)
		return err
	}, c.maxAttempts, c.retryDelay)

	if err != nil {
		return nil, wrapUpstream("gateway call failed", err)
	}
	return result, nil
}

func (c *HTTPClient) decode(resp *http.Response) (*gateway.Result, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("code", resp.StatusCode).Bytes("body", raw).Msg("gateway returned non-2xx")
		return nil, fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	var gr gatewayResponse
	if err = json.Unmarshal(raw, &gr); err != nil {
		c.logger.Warn().Bytes("body", raw).Msg("non-JSON response from gateway")
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	status := models.TxPending
	if gr.Status != "" {
		status, err = models.ParseTransactionStatus(gr.Status)
		if err != nil {
			return nil, err
		}
	}

	externalID := gr.DepositID
	if externalID == "" {
		externalID = gr.PayoutID
	}
	return &gateway.Result{ExternalID: externalID, Status: status}, nil
}

func wrapUpstream(message string, err error) error {
	return apperrors.NewUpstreamError(message, err)
}
