package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"taskventure.app/backend/internal/dto"
	"taskventure.app/backend/internal/model"
	"taskventure.app/backend/internal/repository"
	"taskventure.app/backend/pkg/apperror"
)

type UserService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, filter dto.ListFilter) ([]*model.User, error)
	Update(ctx context.Context, actorID, targetID uuid.UUID, req dto.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, actorID, targetID uuid.UUID) error
	SetCoins(ctx context.Context, actorID, targetID uuid.UUID, amount int64) (*model.User, error)
	AddCoins(ctx context.Context, actorID, targetID uuid.UUID, amount int64) (*model.User, error)
	DeductCoins(ctx context.Context, actorID, targetID uuid.UUID, amount int64) (*model.User, error)
}

// CoinsOp is the shared shape of the balance-mutating user operations.
type CoinsOp func(ctx context.Context, actorID, targetID uuid.UUID, amount int64) (*model.User, error)

type userService struct {
	users       repository.UserRepository
	ledger      LedgerService
	leaderboard LeaderboardService
	redisClient *redis.Client
	secret      string
	tokenTTL    time.Duration
}

func NewUserService(users repository.UserRepository, ledger LedgerService, leaderboard LeaderboardService, redisClient *redis.Client) UserService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	ttl := 24 * time.Hour
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	return &userService{
		users:       users,
		ledger:      ledger,
		leaderboard: leaderboard,
		redisClient: redisClient,
		secret:      secret,
		tokenTTL:    ttl,
	}
}

func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*model.User, error) {
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already registered: %w", apperror.ErrInvalidInput)
	} else if !isRecordNotFound(err) {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrInvalidInput)
	} else if !isRecordNotFound(err) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		IsActive:     true,
		Coins:        req.Coins,
	}

	if role, err := s.users.FindRoleByName(ctx, "user"); err == nil {
		user.RoleID = &role.ID
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, fmt.Errorf("incorrect username or password: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is disabled: %w", apperror.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("incorrect username or password: %w", apperror.ErrUnauthorized)
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Set(ctx, sessionKey(user.ID), time.Now().Unix(), s.tokenTTL).Err(); err != nil {
			log.Printf("failed to record session for %s: %v", user.ID, err)
		}
	}

	return &dto.TokenResponse{AccessToken: signed, TokenType: "bearer"}, nil
}

func (s *userService) Logout(ctx context.Context, userID uuid.UUID) error {
	if s.redisClient == nil {
		return nil
	}

	return s.redisClient.Del(ctx, sessionKey(userID)).Err()
}

func sessionKey(userID uuid.UUID) string {
	return "session:" + userID.String()
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "user")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filter dto.ListFilter) ([]*model.User, error) {
	filter.Normalize()
	return s.users.FindAll(ctx, filter.Skip, filter.Limit)
}

func (s *userService) Update(ctx context.Context, actorID, targetID uuid.UUID, req dto.UpdateUserRequest) (*model.User, error) {
	if actorID != targetID {
		return nil, apperror.ErrForbidden
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, mapNotFound(err, "user")
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) Delete(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID != targetID {
		return apperror.ErrForbidden
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return mapNotFound(err, "user")
	}

	return s.users.Delete(ctx, targetID)
}

func (s *userService) SetCoins(ctx context.Context, actorID, targetID uuid.UUID, amount int64) (*model.User, error) {
	if actorID != targetID {
		return nil, apperror.ErrForbidden
	}

	if _, err := s.ledger.SetBalance(ctx, targetID, amount); err != nil {
		return nil, err
	}

	s.leaderboard.Invalidate(ctx)
	return s.users.FindByID(ctx, targetID)
}

func (s *userService) AddCoins(ctx context.Context, actorID, targetID uuid.UUID, amount int64) (*model.User, error) {
	if actorID != targetID {
		return nil, apperror.ErrForbidden
	}

	if _, _, err := s.ledger.Credit(ctx, targetID, amount); err != nil {
		return nil, err
	}

	s.leaderboard.Invalidate(ctx)
	return s.users.FindByID(ctx, targetID)
}

func (s *userService) DeductCoins(ctx context.Context, actorID, targetID uuid.UUID, amount int64) (*model.User, error) {
	if actorID != targetID {
		return nil, apperror.ErrForbidden
	}

	if _, err := s.ledger.Debit(ctx, targetID, amount); err != nil {
		return nil, err
	}

	s.leaderboard.Invalidate(ctx)
	return s.users.FindByID(ctx, targetID)
}
