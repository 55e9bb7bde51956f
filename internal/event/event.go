package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical input model for all incoming transaction
// events. It is immutable once constructed by Decode.
type Transaction struct {
	ID         string          `json:"transactionId"`
	UserID     string          `json:"userId"`
	Amount     decimal.Decimal `json:"amount"`
	Location   string          `json:"location"`
	Timestamp  time.Time       `json:"timestamp"`
	ReceivedAt time.Time       `json:"receivedAt"`
}
