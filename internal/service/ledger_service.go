package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/repository"
	"taskventure.app/backend/pkg/apperror"
)

// LedgerService owns the coin balance. Balances never go negative: Debit
// fails on insufficient funds, DebitClamped floors at zero (used for reward
// clawback). Callers that need atomicity with other writes bind the ledger
// to their transaction via WithTx.
type LedgerService interface {
	WithTx(tx *gorm.DB) LedgerService
	Credit(ctx context.Context, userID uuid.UUID, amount int64) (before, after int64, err error)
	Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	DebitClamped(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
	SetBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

type ledgerService struct {
	users repository.UserRepository
}

func NewLedgerService(users repository.UserRepository) LedgerService {
	return &ledgerService{users: users}
}

func (s *ledgerService) WithTx(tx *gorm.DB) LedgerService {
	return &ledgerService{users: s.users.WithTx(tx)}
}

func (s *ledgerService) Credit(ctx context.Context, userID uuid.UUID, amount int64) (int64, int64, error) {
	if amount < 0 {
		return 0, 0, fmt.Errorf("credit amount cannot be negative: %w", apperror.ErrInvalidInput)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, 0, mapNotFound(err, "user")
	}

	before := user.Coins
	user.Coins = before + amount
	if err := s.users.Update(ctx, user); err != nil {
		return 0, 0, err
	}

	return before, user.Coins, nil
}

func (s *ledgerService) Debit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit amount cannot be negative: %w", apperror.ErrInvalidInput)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, mapNotFound(err, "user")
	}

	if user.Coins < amount {
		return user.Coins, apperror.ErrInsufficientFunds
	}

	user.Coins -= amount
	if err := s.users.Update(ctx, user); err != nil {
		return 0, err
	}

	return user.Coins, nil
}

func (s *ledgerService) DebitClamped(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit amount cannot be negative: %w", apperror.ErrInvalidInput)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, mapNotFound(err, "user")
	}

	user.Coins -= amount
	if user.Coins < 0 {
		user.Coins = 0
	}
	if err := s.users.Update(ctx, user); err != nil {
		return 0, err
	}

	return user.Coins, nil
}

func (s *ledgerService) SetBalance(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("balance cannot be negative: %w", apperror.ErrInvalidInput)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, mapNotFound(err, "user")
	}

	user.Coins = amount
	if err := s.users.Update(ctx, user); err != nil {
		return 0, err
	}

	return user.Coins, nil
}

func mapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return err
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
