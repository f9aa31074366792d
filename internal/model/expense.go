package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how an expense was paid.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCard         PaymentMethod = "CARD"
	PaymentUPI          PaymentMethod = "UPI"
	PaymentNetBanking   PaymentMethod = "NET_BANKING"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentOther        PaymentMethod = "OTHER"
)

// PaymentMethods lists every accepted payment method in display order.
var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentCard,
	PaymentUPI,
	PaymentNetBanking,
	PaymentBankTransfer,
	PaymentOther,
}

// Valid reports whether p is one of the supported payment methods.
func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

// ParsePaymentMethod accepts any casing and '-' or ' ' in place of '_'.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	p := PaymentMethod(normalized)
	if !p.Valid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return p, nil
}

// Expense is a single spending record owned by one user.
type Expense struct {
	Date          time.Time     `json:"date"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Description   *string       `json:"description,omitempty"`
	Amount        Money         `json:"amount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CategoryName  string        `json:"categoryName"`
	CategoryColor string        `json:"categoryColor"`
	CategoryIcon  string        `json:"categoryIcon"`
	ID            int64         `json:"id"`
	CategoryID    int64         `json:"categoryId"`
	UserID        uuid.UUID     `json:"-"`
}

// DescriptionOrEmpty returns the description or "" when unset.
func (e Expense) DescriptionOrEmpty() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// StatementEntry is a debit read from a bank or card statement.
type StatementEntry struct {
	Date        time.Time
	FITID       string
	Description string
	Account     string
	Amount      Money
}

// DedupKey identifies an entry across overlapping statement files.
func (e StatementEntry) DedupKey() string {
	if e.FITID != "" {
		return e.Account + ":" + e.FITID
	}
	return fmt.Sprintf("%s:%s:%s:%s", e.Account, FormatDate(e.Date), e.Amount, e.Description)
}
