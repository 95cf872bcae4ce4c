package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

const (
	AccountContextKey = "account"
	ClaimsContextKey  = "access_claims"

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// AccountLoader resolves the subject of a token to an account
type AccountLoader interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
}

// TokenDenylist reports access tokens revoked by a logout
type TokenDenylist interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Authenticator is the auth guard: it turns a bearer credential into an account on the request
type Authenticator struct {
	tokens   *auth.TokenManager
	accounts AccountLoader
	denylist TokenDenylist
	logger   *logging.Logger
}

// NewAuthenticator creates the guard. denylist may be nil when Redis is unavailable.
func NewAuthenticator(tokens *auth.TokenManager, accounts AccountLoader, denylist TokenDenylist, logger *logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Authenticator{tokens: tokens, accounts: accounts, denylist: denylist, logger: logger}
}

// ExtractToken reads the access token from the cookie, falling back to "Authorization: Bearer <token>".
// Browser clients send the literal "undefined" after a logout; it counts as no token.
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && usableToken(cookie) {
		return cookie
	}

	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	if token := strings.TrimSpace(parts[1]); usableToken(token) {
		return token
	}
	return ""
}

func usableToken(token string) bool {
	return token != "" && token != "undefined"
}

func (a *Authenticator) authenticate(c *gin.Context) (*models.Account, *auth.AccessClaims, error) {
	token := ExtractToken(c)
	if token == "" {
		return nil, nil, apperror.Unauthorized("Unauthorized request")
	}

	claims, err := a.tokens.ParseAccess(token)
	if err != nil {
		return nil, nil, apperror.Unauthorized("Invalid access token")
	}

	if a.denylist != nil {
		revoked, err := a.denylist.IsTokenRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// Redis outages must not lock everybody out
			a.logger.WithError(err).Warn("Token denylist unavailable")
		} else if revoked {
			return nil, nil, apperror.Unauthorized("Invalid access token")
		}
	}

	account, err := a.accounts.GetAccountByID(c.Request.Context(), claims.Subject)
	if errors.Is(err, database.ErrNotFound) || (err == nil && account == nil) {
		return nil, nil, apperror.Unauthorized("Invalid access token")
	}
	if err != nil {
		return nil, nil, apperror.Internal("Something went wrong while authenticating", err)
	}

	account.PasswordHash = ""
	account.RefreshToken = ""
	return account, claims, nil
}

// RequireAuth rejects the request with 401 unless it carries a valid access token
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, claims, err := a.authenticate(c)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(AccountContextKey, account)
		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches the account when a valid token is present and lets anonymous requests through.
// A failed account lookup still aborts with 500.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, claims, err := a.authenticate(c)
		switch {
		case err == nil:
			c.Set(AccountContextKey, account)
			c.Set(ClaimsContextKey, claims)
		case apperror.StatusCode(err) != http.StatusUnauthorized:
			c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentAccount returns the authenticated account, if any
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	value, exists := c.Get(AccountContextKey)
	if !exists {
		return nil, false
	}
	account, ok := value.(*models.Account)
	return account, ok && account != nil
}

// AccountID returns the authenticated account ID or "" for anonymous requests
func AccountID(c *gin.Context) string {
	if account, ok := CurrentAccount(c); ok {
		return account.ID
	}
	return ""
}

// AccessClaims returns the claims of the token that authenticated the request
func AccessClaims(c *gin.Context) (*auth.AccessClaims, bool) {
	value, exists := c.Get(ClaimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.AccessClaims)
	return claims, ok
}
