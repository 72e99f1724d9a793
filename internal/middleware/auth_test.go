package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"taskventure.app/backend/internal/model"
	"taskventure.app/backend/internal/repository"
)

func newAuthFixture(t *testing.T) (*AuthMiddleware, *model.User, *model.User) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.Role{}, &model.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	adminRole := model.Role{Name: "admin"}
	if err := db.Create(&adminRole).Error; err != nil {
		t.Fatalf("failed to seed admin role: %v", err)
	}

	admin := &model.User{
		Username:     "root",
		Email:        "root@example.com",
		PasswordHash: "x",
		IsActive:     true,
		RoleID:       &adminRole.ID,
	}
	regular := &model.User{
		Username:     "plain",
		Email:        "plain@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	for _, user := range []*model.User{admin, regular} {
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("failed to seed user %s: %v", user.Username, err)
		}
	}

	return NewAuthMiddleware(repository.NewUserRepository(db)), admin, regular
}

func signToken(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestRequireAuth(t *testing.T) {
	m, admin, _ := newAuthFixture(t)

	run := func(header string) (*httptest.ResponseRecorder, *gin.Context) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		m.RequireAuth()(c)
		return w, c
	}

	w, c := run("Bearer " + signToken(t, admin.ID.String()))
	if w.Code != http.StatusOK {
		t.Errorf("valid token got status %d, want 200", w.Code)
	}
	if got := c.GetString("user_id"); got != admin.ID.String() {
		t.Errorf("user_id in context = %q, want %q", got, admin.ID)
	}

	if w, _ := run(""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing header got status %d, want 401", w.Code)
	}
	if w, _ := run("Bearer not-a-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token got status %d, want 401", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	m, admin, regular := newAuthFixture(t)

	run := func(userID string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if userID != "" {
			c.Set("user_id", userID)
		}
		m.RequireAdmin()(c)
		return w
	}

	if w := run(admin.ID.String()); w.Code != http.StatusOK {
		t.Errorf("admin got status %d, want 200", w.Code)
	}
	if w := run(regular.ID.String()); w.Code != http.StatusForbidden {
		t.Errorf("non-admin got status %d, want 403", w.Code)
	}
	if w := run(""); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated got status %d, want 401", w.Code)
	}
}
