package models

import (
	"encoding/json"
	"strings"
)

// Metadata is the opaque structured payload attached to gateway requests and
// callbacks. The gateway delivers it either as a mapping
// {"userId": "...", "purpose": "...", "loanId": "..."} or as an ordered list
// of {"fieldName": ..., "fieldValue": ...} entries. Both shapes normalize to
// the same field set; call sites never branch on the wire shape.
type Metadata struct {
	raw    json.RawMessage
	fields map[string]string
}

type metadataEntry struct {
	FieldName  string `json:"fieldName"`
	FieldValue string `json:"fieldValue"`
	IsPII      bool   `json:"isPII,omitempty"`
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	m.raw = append(m.raw[:0], b...)
	m.fields = map[string]string{}

	var entries []metadataEntry
	if err := json.Unmarshal(b, &entries); err == nil {
		for _, e := range entries {
			if e.FieldName != "" {
				m.fields[e.FieldName] = e.FieldValue
			}
		}
		return nil
	}

	var mapping map[string]interface{}
	if err := json.Unmarshal(b, &mapping); err != nil {
		return err
	}
	for k, v := range mapping {
		if s, ok := v.(string); ok {
			m.fields[k] = s
		}
	}
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	return []byte("null"), nil
}

// NewFieldListMetadata builds the list-of-pairs shape the gateway expects on
// outbound requests.
func NewFieldListMetadata(entries ...MetadataField) Metadata {
	list := make([]metadataEntry, 0, len(entries))
	fields := make(map[string]string, len(entries))
	for _, e := range entries {
		list = append(list, metadataEntry{FieldName: e.Name, FieldValue: e.Value, IsPII: e.PII})
		fields[e.Name] = e.Value
	}
	raw, _ := json.Marshal(list)
	return Metadata{raw: raw, fields: fields}
}

type MetadataField struct {
	Name  string
	Value string
	PII   bool
}

// MetadataView is the canonical projection the reconciler works with.
type MetadataView struct {
	OwnerID string
	Purpose string
	LoanID  string
}

func (m Metadata) View() MetadataView {
	return MetadataView{
		OwnerID: m.fields["userId"],
		Purpose: m.fields["purpose"],
		LoanID:  m.fields["loanId"],
	}
}

func (m Metadata) IsZero() bool {
	return len(m.raw) == 0
}

func (m Metadata) Raw() []byte {
	return m.raw
}

// IsInvestment reports whether the metadata earmarks the deposit for lending.
func (v MetadataView) IsInvestment() bool {
	return strings.EqualFold(v.Purpose, "investment")
}
