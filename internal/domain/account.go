package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a bank account.
type AccountType string

const (
	AccountTypeSavings    AccountType = "ahorros"
	AccountTypeChecking   AccountType = "corriente"
	AccountTypeTerm       AccountType = "plazo_fijo"
	AccountTypeInvestment AccountType = "inversion"
	AccountTypeCash       AccountType = "efectivo"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeSavings:    true,
	AccountTypeChecking:   true,
	AccountTypeTerm:       true,
	AccountTypeInvestment: true,
	AccountTypeCash:       true,
}

// IsValid checks if the account type is known.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// BankAccount holds a running balance maintained incrementally through
// movement posting. CurrentBalance must always equal InitialBalance plus the
// signed sum of all non-cancelled movements referencing this account.
type BankAccount struct {
	ID              string
	Code            string
	OwnerID         string
	BankName        string
	AccountNumber   string
	Type            AccountType
	Currency        string
	InitialBalance  decimal.Decimal
	CurrentBalance  decimal.Decimal
	Version         int64
	Active          bool
	MinBalanceAlert decimal.Decimal
	LastMovementAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidateDebit checks that the account can cover an outgoing amount.
func (a *BankAccount) ValidateDebit(amount decimal.Decimal) error {
	if amount.GreaterThan(a.CurrentBalance) {
		return InsufficientFundsError(amount, a.CurrentBalance)
	}
	return nil
}

// ApplyDebit returns the balance after an outgoing amount.
func (a *BankAccount) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.CurrentBalance.Sub(amount)
}

// ApplyCredit returns the balance after an incoming amount.
func (a *BankAccount) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.CurrentBalance.Add(amount)
}

// BelowAlertThreshold reports whether the balance has dropped under the
// configured minimum-balance alert.
func (a *BankAccount) BelowAlertThreshold() bool {
	if a.MinBalanceAlert.IsZero() {
		return false
	}
	return a.CurrentBalance.LessThan(a.MinBalanceAlert)
}

// OwnedBy checks the account owner against an actor.
func (a *BankAccount) OwnedBy(actor Actor) bool {
	return a.OwnerID == actor.UserID
}
