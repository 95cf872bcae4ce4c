package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/config"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

type staticDenylist map[string]bool

func (d staticDenylist) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return d[jti], nil
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(config.AuthConfig{
		AccessTokenSecret:  "access",
		AccessTokenTTL:     time.Hour,
		RefreshTokenSecret: "refresh",
		RefreshTokenTTL:    24 * time.Hour,
	})
}

func testAccount() *models.Account {
	return &models.Account{ID: "acc-1", Username: "alice", PasswordHash: "hash", RefreshToken: "rt"}
}

func newAuthRouter(guard gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(ErrorHandler(nil))
	router.GET("/test", guard, func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, account.ID+"|"+account.PasswordHash+"|"+account.RefreshToken)
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := testTokens()
	token, err := tokens.IssueAccess(testAccount())
	require.NoError(t, err)

	accounts := new(MockAccounts)
	accounts.On("GetAccountByID", mock.Anything, "acc-1").Return(testAccount(), nil)

	router := newAuthRouter(NewAuthenticator(tokens, accounts, nil, nil).RequireAuth())

	tests := []struct {
		name           string
		setup          func(r *http.Request)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Missing token",
			setup:          func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed header",
			setup:          func(r *http.Request) { r.Header.Set("Authorization", "Token abc") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid token",
			setup:          func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Bearer header",
			setup:          func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			expectedStatus: http.StatusOK,
			expectedBody:   "acc-1||",
		},
		{
			name: "Cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "acc-1||",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/test", nil)
			tt.setup(req)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRequireAuth_UnknownAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := testTokens()
	token, err := tokens.IssueAccess(testAccount())
	require.NoError(t, err)

	accounts := new(MockAccounts)
	accounts.On("GetAccountByID", mock.Anything, "acc-1").Return(nil, fmt.Errorf("get account: %w", database.ErrNotFound))

	router := newAuthRouter(NewAuthenticator(tokens, accounts, nil, nil).RequireAuth())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_AccountLookupFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := testTokens()
	token, err := tokens.IssueAccess(testAccount())
	require.NoError(t, err)

	accounts := new(MockAccounts)
	accounts.On("GetAccountByID", mock.Anything, "acc-1").Return(nil, errors.New("connection refused"))
	guard := NewAuthenticator(tokens, accounts, nil, nil)

	for name, handler := range map[string]gin.HandlerFunc{
		"required": guard.RequireAuth(),
		"optional": guard.OptionalAuth(),
	} {
		t.Run(name, func(t *testing.T) {
			router := newAuthRouter(handler)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestRequireAuth_RevokedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := testTokens()
	token, err := tokens.IssueAccess(testAccount())
	require.NoError(t, err)
	claims, err := tokens.ParseAccess(token)
	require.NoError(t, err)

	accounts := new(MockAccounts)
	accounts.On("GetAccountByID", mock.Anything, "acc-1").Return(testAccount(), nil)

	denylist := staticDenylist{claims.ID: true}
	router := newAuthRouter(NewAuthenticator(tokens, accounts, denylist, nil).RequireAuth())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	accounts.AssertNotCalled(t, "GetAccountByID", mock.Anything, mock.Anything)
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := testTokens()
	token, err := tokens.IssueAccess(testAccount())
	require.NoError(t, err)

	accounts := new(MockAccounts)
	accounts.On("GetAccountByID", mock.Anything, "acc-1").Return(testAccount(), nil)

	router := newAuthRouter(NewAuthenticator(tokens, accounts, nil, nil).OptionalAuth())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	router.ServeHTTP(w, req)
	assert.Equal(t, "anonymous", w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, "acc-1||", w.Body.String())
}

func TestAccountIDWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	assert.Equal(t, "", AccountID(c))
	_, ok := AccessClaims(c)
	assert.False(t, ok)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"cookie wins", "from-cookie", "Bearer from-header", "from-cookie"},
		{"header fallback", "", "Bearer from-header", "from-header"},
		{"undefined cookie falls back", "undefined", "Bearer from-header", "from-header"},
		{"undefined bearer", "", "Bearer undefined", ""},
		{"wrong scheme", "", "Basic abc", ""},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				c.Request.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractToken(c))
		})
	}
}
