package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a decimal that tolerates the upstream's loose numeric
// encoding: numbers, quoted numbers, null, and garbage all decode, with
// anything unparseable degrading to zero. One bad field must never fail
// the whole snapshot.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

// EventTime is a timestamp that tolerates the upstream's mixed formats:
// RFC3339 strings, date-only strings, unix seconds, and unix
// milliseconds. Unparseable values decode to the zero time; the
// normalizer substitutes processing time for those.
type EventTime struct {
	time.Time
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *EventTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range eventTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Heuristic split between unix seconds and milliseconds.
		if n > 1e12 {
			t.Time = time.UnixMilli(n)
		} else {
			t.Time = time.Unix(n, 0)
		}
		return nil
	}

	t.Time = time.Time{}
	return nil
}

// MethodField decodes the upstream payment-method field, which arrives
// either as a plain string or as a nested object whose fields may all be
// absent. The label is empty when nothing usable was present; it is
// never a string containing the literal text of a missing field.
type MethodField struct {
	Label string
}

var methodLabelKeys = []string{"bankName", "bank", "upiId", "wallet", "name"}

// UnmarshalJSON implements json.Unmarshaler.
func (m *MethodField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Label = strings.TrimSpace(s)
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		m.Label = ""
		return nil
	}

	for _, key := range methodLabelKeys {
		if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
			m.Label = strings.TrimSpace(v)
			return nil
		}
	}

	m.Label = ""
	return nil
}

// OrderRecord is a raw token purchase as delivered by the platform API.
type OrderRecord struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"` // "deposit" or "entry_fee"
	AmountPaid     Amount    `json:"amountPaid"`
	CreditedTokens Amount    `json:"creditedTokens"`
	ProcessedAt    EventTime `json:"processedAt"`
	Status         string    `json:"status"`
}

// WithdrawalRecord is a raw withdrawal request as delivered by the
// platform API. The same shape carries both binary-token and won-token
// withdrawals; the enclosing collection decides the token class.
type WithdrawalRecord struct {
	ID              string      `json:"id"`
	RequestedTokens Amount      `json:"requestedTokens"`
	CreatedAt       EventTime   `json:"createdAt"`
	Status          string      `json:"status"`
	Tax             Amount      `json:"tax"`
	TaxPercentage   Amount      `json:"taxPercentage"`
	FinalTokens     Amount      `json:"finalTokens"`
	Method          MethodField `json:"method"`
}

// Snapshot is one complete, canonical view of a user's state, decoded
// from a single upstream payload. All shape-sniffing over the loose
// upstream schema happens here, once, at the ingestion boundary.
type Snapshot struct {
	UserKey        string
	Tokens         decimal.Decimal
	BinaryTokens   decimal.Decimal
	WonTokens      decimal.Decimal
	Orders         map[string]OrderRecord
	Withdrawals    map[string]WithdrawalRecord
	WonWithdrawals map[string]WithdrawalRecord
}

type userIDFields struct {
	MyUserID string `json:"myuserid"`
}

type snapshotUserData struct {
	UserIDs        *userIDFields               `json:"userIds"`
	UserIDsLower   *userIDFields               `json:"userids"`
	MyUserID       string                      `json:"myuserid"`
	Tokens         Amount                      `json:"tokens"`
	BinaryTokens   Amount                      `json:"binaryTokens"`
	WonTokens      Amount                      `json:"wontokens"`
	Orders         map[string]OrderRecord      `json:"orders"`
	Withdrawals    map[string]WithdrawalRecord `json:"withdrawals"`
	WonWithdrawals map[string]WithdrawalRecord `json:"wonWithdrawals"`
}

type snapshotPayload struct {
	Success  bool              `json:"success"`
	UserData *snapshotUserData `json:"userData"`
}

// DecodeSnapshot decodes one upstream payload into a canonical Snapshot.
// A payload with success=false (or no userData) returns ErrSnapshotFailed;
// empty collections are normal and yield an empty ledger downstream.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var payload snapshotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ErrMalformedSnapshot
	}

	if !payload.Success || payload.UserData == nil {
		return nil, ErrSnapshotFailed
	}

	ud := payload.UserData

	return &Snapshot{
		UserKey:        ud.userKey(),
		Tokens:         ud.Tokens.Decimal,
		BinaryTokens:   ud.BinaryTokens.Decimal,
		WonTokens:      ud.WonTokens.Decimal,
		Orders:         ud.Orders,
		Withdrawals:    ud.Withdrawals,
		WonWithdrawals: ud.WonWithdrawals,
	}, nil
}

// userKey resolves the user identifier from the upstream's historically
// inconsistent field variants, in the order the platform introduced them.
func (ud *snapshotUserData) userKey() string {
	if ud.UserIDs != nil && ud.UserIDs.MyUserID != "" {
		return ud.UserIDs.MyUserID
	}
	if ud.UserIDsLower != nil && ud.UserIDsLower.MyUserID != "" {
		return ud.UserIDsLower.MyUserID
	}
	return ud.MyUserID
}
