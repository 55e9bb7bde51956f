// Package rules evaluates transactions against the fixed fraud rule set.
package rules

import "github.com/shopspring/decimal"

// Name identifies a fraud rule.
type Name string

const (
	HighAmountNonUSA  Name = "HIGH_AMOUNT_NON_USA"
	RoundAmount       Name = "ROUND_AMOUNT"
	RapidTransactions Name = "RAPID_TRANSACTIONS"
)

// Severity grades a violation.
type Severity string

const (
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Violation is a single rule match against a transaction.
type Violation struct {
	Rule        Name     `json:"rule"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	// TransactionCount is set only by the rapid-transaction rule: the size
	// of the user's activity window at evaluation time.
	TransactionCount int `json:"transactionCount,omitempty"`
}

// Thresholds holds the tunable parameters of the rule set. The zero value is
// not usable; DefaultThresholds supplies the standard limits.
type Thresholds struct {
	HighAmount       decimal.Decimal
	DomesticLocation string
	RoundDivisor     decimal.Decimal
}

// DefaultThresholds returns the standard rule parameters.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighAmount:       decimal.NewFromInt(5000),
		DomesticLocation: "USA",
		RoundDivisor:     decimal.NewFromInt(1000),
	}
}
