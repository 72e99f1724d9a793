package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"taskventure.app/backend/internal/dto"
	"taskventure.app/backend/pkg/apperror"
)

func newUserSvc(t *testing.T, env *testEnv) UserService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	leaderboard := NewLeaderboardService(env.users, nil)
	return NewUserService(env.users, env.ledger, leaderboard, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newUserSvc(t, env)

	user, err := svc.Register(ctx, dto.RegisterRequest{
		Username: "frank",
		Email:    "frank@example.com",
		Password: "hunter22hunter22",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.PasswordHash == "hunter22hunter22" {
		t.Error("password stored in plain text")
	}

	token, err := svc.Login(ctx, dto.LoginRequest{Username: "frank", Password: "hunter22hunter22"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token.AccessToken == "" || token.TokenType != "bearer" {
		t.Errorf("unexpected token response: %+v", token)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token.AccessToken, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("token subject = %s, want %s", claims.Subject, user.ID)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newUserSvc(t, env)

	req := dto.RegisterRequest{Username: "gina", Email: "gina@example.com", Password: "longenoughpw"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Register(ctx, req); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("duplicate username returned %v, want ErrInvalidInput", err)
	}

	req.Username = "gina2"
	if _, err := svc.Register(ctx, req); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("duplicate email returned %v, want ErrInvalidInput", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newUserSvc(t, env)

	if _, err := svc.Register(ctx, dto.RegisterRequest{
		Username: "hank",
		Email:    "hank@example.com",
		Password: "correct-horse-battery",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(ctx, dto.LoginRequest{Username: "hank", Password: "wrong"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("wrong password returned %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "wrong"}); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("unknown user returned %v, want ErrUnauthorized", err)
	}
}

func TestCoinsEndpointsOwnAccountOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newUserSvc(t, env)

	owner := env.seedUser(t, "owner", 100)
	other := env.seedUser(t, "other", 100)

	if _, err := svc.AddCoins(ctx, owner.ID, other.ID, 50); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("crediting another account returned %v, want ErrForbidden", err)
	}

	updated, err := svc.AddCoins(ctx, owner.ID, owner.ID, 50)
	if err != nil {
		t.Fatalf("add coins failed: %v", err)
	}
	if updated.Coins != 150 {
		t.Errorf("coins = %d, want 150", updated.Coins)
	}

	updated, err = svc.DeductCoins(ctx, owner.ID, owner.ID, 150)
	if err != nil {
		t.Fatalf("deduct coins failed: %v", err)
	}
	if updated.Coins != 0 {
		t.Errorf("coins = %d, want 0", updated.Coins)
	}

	if _, err := svc.DeductCoins(ctx, owner.ID, owner.ID, 1); !errors.Is(err, apperror.ErrInsufficientFunds) {
		t.Errorf("overdraft returned %v, want ErrInsufficientFunds", err)
	}

	updated, err = svc.SetCoins(ctx, owner.ID, owner.ID, 777)
	if err != nil {
		t.Fatalf("set coins failed: %v", err)
	}
	if updated.Coins != 777 {
		t.Errorf("coins = %d, want 777", updated.Coins)
	}
}
