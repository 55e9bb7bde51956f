package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// rawTransaction mirrors the inbound wire schema. Pointers distinguish a
// missing field from a zero value; amount and timestamp stay raw so a bad
// value is reported as a validation failure rather than a decode failure.
type rawTransaction struct {
	TransactionID *string          `json:"transactionId"`
	UserID        *string          `json:"userId"`
	Amount        *json.RawMessage `json:"amount"`
	Location      *string          `json:"location"`
	Timestamp     *string          `json:"timestamp"`
}

// Decode parses a raw message payload into a Transaction.
//
// An undecodable payload fails with *MalformedError. A decodable payload with
// missing fields fails with a single *ValidationError naming every missing
// field; a payload with all fields present but invalid values fails with a
// *ValidationError enumerating every failed constraint. Both are permanent.
func Decode(raw []byte, receivedAt time.Time) (Transaction, error) {
	var r rawTransaction
	if err := json.Unmarshal(raw, &r); err != nil {
		return Transaction{}, &MalformedError{Err: err}
	}

	if missing := missingFields(&r); len(missing) > 0 {
		reasons := make([]string, len(missing))
		for i, f := range missing {
			reasons[i] = fmt.Sprintf("missing required field: %s", f)
		}
		return Transaction{}, &ValidationError{Reasons: reasons}
	}

	var reasons []string

	amount, err := decodeAmount(*r.Amount)
	if err != nil || !amount.IsPositive() {
		reasons = append(reasons, "amount must be a positive number")
	}
	if strings.TrimSpace(*r.Location) == "" {
		reasons = append(reasons, "location must be non-empty")
	}
	ts, err := time.Parse(time.RFC3339, *r.Timestamp)
	if err != nil {
		reasons = append(reasons, "invalid timestamp")
	}

	if len(reasons) > 0 {
		return Transaction{}, &ValidationError{Reasons: reasons}
	}

	return Transaction{
		ID:         *r.TransactionID,
		UserID:     *r.UserID,
		Amount:     amount,
		Location:   *r.Location,
		Timestamp:  ts,
		ReceivedAt: receivedAt,
	}, nil
}

func missingFields(r *rawTransaction) []string {
	var missing []string
	checks := []struct {
		name string
		ok   bool
	}{
		{"transactionId", r.TransactionID != nil},
		{"userId", r.UserID != nil},
		{"amount", r.Amount != nil},
		{"location", r.Location != nil},
		{"timestamp", r.Timestamp != nil},
	}
	for _, c := range checks {
		if !c.ok {
			missing = append(missing, c.name)
		}
	}
	return missing
}

func decodeAmount(raw json.RawMessage) (decimal.Decimal, error) {
	// decimal accepts quoted numbers, but the wire schema requires a JSON
	// number.
	if len(raw) > 0 && raw[0] == '"' {
		return decimal.Zero, fmt.Errorf("amount is not a number")
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
