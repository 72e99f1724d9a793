package service

import (
	"context"
	"errors"
	"testing"

	"taskventure.app/backend/pkg/apperror"
)

func TestCreditAndDebit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "alice", 0)

	before, after, err := env.ledger.Credit(ctx, user.ID, 100)
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if before != 0 || after != 100 {
		t.Errorf("credit reported %d -> %d, want 0 -> 100", before, after)
	}

	remaining, err := env.ledger.Debit(ctx, user.ID, 40)
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if remaining != 60 {
		t.Errorf("remaining = %d, want 60", remaining)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "bob", 30)

	if _, err := env.ledger.Debit(ctx, user.ID, 31); !errors.Is(err, apperror.ErrInsufficientFunds) {
		t.Fatalf("debit beyond balance returned %v, want ErrInsufficientFunds", err)
	}

	if got := env.balance(t, user); got != 30 {
		t.Errorf("balance changed after failed debit: %d", got)
	}
}

func TestDebitClampedFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "carol", 20)

	remaining, err := env.ledger.DebitClamped(ctx, user.ID, 50)
	if err != nil {
		t.Fatalf("clamped debit failed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
}

func TestNegativeAmountsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "dave", 10)

	if _, _, err := env.ledger.Credit(ctx, user.ID, -1); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("negative credit returned %v, want ErrInvalidInput", err)
	}
	if _, err := env.ledger.Debit(ctx, user.ID, -1); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("negative debit returned %v, want ErrInvalidInput", err)
	}
	if _, err := env.ledger.SetBalance(ctx, user.ID, -1); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("negative balance returned %v, want ErrInvalidInput", err)
	}
}

func TestSetBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "erin", 10)

	got, err := env.ledger.SetBalance(ctx, user.ID, 500)
	if err != nil {
		t.Fatalf("set balance failed: %v", err)
	}
	if got != 500 {
		t.Errorf("balance = %d, want 500", got)
	}
}
