package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/domain/user"
)

func NewTopupEntry(customer string, amount float64) ledger.Entry {
	return ledger.Entry{
		Timestamp:      time.Now().UTC(),
		TransactionID:  uuid.New(),
		Customer:       customer,
		Type:           ledger.TypeTopup,
		Amount:         decimal.NewFromFloat(amount),
		ActorEmail:     "cashier@example.com",
		IdempotencyKey: uuid.New().String(),
	}
}

func NewSpendEntry(customer string, amount float64) ledger.Entry {
	return ledger.Entry{
		Timestamp:      time.Now().UTC(),
		TransactionID:  uuid.New(),
		Customer:       customer,
		Type:           ledger.TypeSpend,
		Amount:         decimal.NewFromFloat(amount).Neg(),
		ActorEmail:     "cashier@example.com",
		IdempotencyKey: uuid.New().String(),
	}
}

func NewTestUser(name, email string, role user.Role) user.User {
	return user.User{
		Name:   name,
		Email:  email,
		Role:   role,
		Active: true,
	}
}
