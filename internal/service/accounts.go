package service

import (
	"context"
	"errors"
	"strings"

	"github.com/therealutkarshpriyadarshi/vidtube/internal/apperror"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/database"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidtube/internal/upload"
	"github.com/therealutkarshpriyadarshi/vidtube/pkg/models"
)

// AccountRepository is the persistence AccountService needs
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountExists(ctx context.Context, username, email string) (bool, error)
	UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.Account, error)
	UpdateUsername(ctx context.Context, id, username string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	UpdateAvatar(ctx context.Context, id, url string) (*models.Account, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*models.Account, error)
	GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	GetWatchHistory(ctx context.Context, accountID string) ([]*models.WatchedVideo, error)
}

// SignupInput holds the text fields of a signup form
type SignupInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

// LoginInput identifies an account by username or email
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// AccountService implements registration, sessions and profile management
type AccountService struct {
	repo    AccountRepository
	tokens  *auth.TokenManager
	media   *Media
	revoker TokenRevoker
	logger  *logging.Logger
}

// NewAccountService creates an account service. revoker may be nil, in which
// case logout only clears the stored refresh token.
func NewAccountService(repo AccountRepository, tokens *auth.TokenManager, media *Media, revoker TokenRevoker, logger *logging.Logger) *AccountService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AccountService{repo: repo, tokens: tokens, media: media, revoker: revoker, logger: logger}
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperror.BadRequest("Invalid email format")
	}
	return nil
}

func normalizeUsername(username string) (string, error) {
	username = strings.ToLower(trimmed(username))
	if !usernamePattern.MatchString(username) {
		return "", apperror.BadRequest("Username must be 3-30 characters of lowercase letters, digits, '_' or '.'")
	}
	return username, nil
}

// Signup registers an account. The avatar is required, the cover image optional.
// Both temp files are always consumed.
func (s *AccountService) Signup(ctx context.Context, in SignupInput, avatar, cover *upload.File) (*models.Account, error) {
	account, err := s.prepareSignup(ctx, in, avatar)
	if err != nil {
		upload.Cleanup(avatar, cover)
		return nil, err
	}

	assets, err := s.media.UploadAll(ctx, "signup failed",
		uploadOf(avatar, models.FolderAvatars),
		uploadOf(cover, models.FolderCovers),
	)
	if err != nil {
		return nil, err
	}

	account.AvatarURL = assets[0].URL
	if assets[1] != nil {
		account.CoverImageURL = assets[1].URL
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		s.media.Discard(ctx, "signup failed", assets...)
		if isDuplicate(err) {
			return nil, signupConflict(err)
		}
		return nil, internalError("registering the user", err)
	}

	metrics.AccountsCreatedTotal.Inc()
	s.logger.WithAccountID(account.ID).Info("Account created")

	return account, nil
}

// signupConflict names the field that lost a concurrent signup race
func signupConflict(err error) error {
	switch database.DuplicateConstraint(err) {
	case database.AccountsUsernameIndex:
		return apperror.Conflict("User with this username already exists")
	case database.AccountsEmailIndex:
		return apperror.Conflict("User with this email already exists")
	}
	return apperror.Conflict("User with email or username already exists")
}

func (s *AccountService) prepareSignup(ctx context.Context, in SignupInput, avatar *upload.File) (*models.Account, error) {
	fullName, email := trimmed(in.FullName), strings.ToLower(trimmed(in.Email))
	if fullName == "" || trimmed(in.Username) == "" || email == "" || trimmed(in.Password) == "" {
		return nil, apperror.BadRequest("All fields are required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperror.BadRequest("Password must be at least %d characters", minPasswordLength)
	}
	username, err := normalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.AccountExists(ctx, username, email)
	if err != nil {
		return nil, internalError("registering the user", err)
	}
	if exists {
		return nil, apperror.Conflict("User with email or username already exists")
	}

	if avatar == nil {
		return nil, apperror.BadRequest("Avatar file is required")
	}

	hash, err := s.tokens.HashPassword(in.Password)
	if err != nil {
		return nil, internalError("registering the user", err)
	}

	return &models.Account{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}, nil
}

// Login verifies credentials and starts a session
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*models.Account, *models.TokenPair, error) {
	username, email := trimmed(in.Username), trimmed(in.Email)
	if username == "" && email == "" {
		return nil, nil, apperror.BadRequest("username or email is required")
	}
	if in.Password == "" {
		return nil, nil, apperror.BadRequest("Password is required")
	}

	var (
		account *models.Account
		err     error
	)
	if username != "" {
		account, err = s.repo.GetAccountByUsername(ctx, username)
	} else {
		account, err = s.repo.GetAccountByEmail(ctx, email)
	}
	if err != nil {
		return nil, nil, notFoundOr(err, "User does not exist", "logging in")
	}

	if err := s.tokens.ComparePassword(account.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, apperror.Unauthorized("Invalid user credentials")
		}
		return nil, nil, internalError("logging in", err)
	}

	pair, err := s.startSession(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	return account, pair, nil
}

func (s *AccountService) startSession(ctx context.Context, account *models.Account) (*models.TokenPair, error) {
	pair, err := s.tokens.IssuePair(account)
	if err != nil {
		return nil, internalError("generating tokens", err)
	}
	if err := s.repo.SetRefreshToken(ctx, account.ID, pair.RefreshToken); err != nil {
		return nil, internalError("generating tokens", err)
	}
	account.RefreshToken = pair.RefreshToken
	return pair, nil
}

// Refresh rotates both tokens when refreshToken is the one stored for its account
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperror.Unauthorized("Unauthorized request")
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid refresh token")
	}

	account, err := s.repo.GetAccountByID(ctx, claims.Subject)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthorized("Invalid refresh token")
		}
		return nil, internalError("refreshing tokens", err)
	}

	if account.RefreshToken == "" || account.RefreshToken != refreshToken {
		return nil, apperror.Unauthorized("Refresh token is expired or used")
	}

	return s.startSession(ctx, account)
}

// Logout clears the stored refresh token and revokes the access token behind claims
func (s *AccountService) Logout(ctx context.Context, accountID string, claims *auth.AccessClaims) error {
	if err := s.repo.SetRefreshToken(ctx, accountID, ""); err != nil && !isNotFound(err) {
		return internalError("logging out", err)
	}

	if s.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.revoker.RevokeToken(ctx, claims.ID, s.tokens.Remaining(claims.RegisteredClaims)); err != nil {
		s.logger.WithError(err).WithAccountID(accountID).Warn("Failed to revoke access token")
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one.
// Stored refresh tokens are invalidated.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperror.BadRequest("Old and new passwords are required")
	}
	if len(newPassword) < minPasswordLength {
		return apperror.BadRequest("Password must be at least %d characters", minPasswordLength)
	}
	if oldPassword == newPassword {
		return apperror.BadRequest("New password must be different from the old password")
	}

	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return notFoundOr(err, "User does not exist", "changing the password")
	}

	if err := s.tokens.ComparePassword(account.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperror.Unauthorized("Invalid old password")
		}
		return internalError("changing the password", err)
	}

	hash, err := s.tokens.HashPassword(newPassword)
	if err != nil {
		return internalError("changing the password", err)
	}
	if err := s.repo.UpdatePassword(ctx, accountID, hash); err != nil {
		return internalError("changing the password", err)
	}
	return nil
}

// UpdateDetails changes the full name and/or email. Empty values keep the current one.
func (s *AccountService) UpdateDetails(ctx context.Context, accountID, fullName, email string) (*models.Account, error) {
	fullName, email = trimmed(fullName), strings.ToLower(trimmed(email))
	if fullName == "" && email == "" {
		return nil, apperror.BadRequest("At least one field is required")
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}

	current, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, notFoundOr(err, "User does not exist", "updating account details")
	}
	if fullName == "" {
		fullName = current.FullName
	}
	if email == "" {
		email = current.Email
	}

	account, err := s.repo.UpdateAccountDetails(ctx, accountID, fullName, email)
	if err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflict("Email is already in use")
		}
		return nil, notFoundOr(err, "User does not exist", "updating account details")
	}
	return account, nil
}

// UpdateUsername changes the account handle
func (s *AccountService) UpdateUsername(ctx context.Context, accountID, username string) (*models.Account, error) {
	if trimmed(username) == "" {
		return nil, apperror.BadRequest("Username is required")
	}
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, notFoundOr(err, "User does not exist", "updating the username")
	}
	if current.Username == username {
		return nil, apperror.BadRequest("New username must be different from the current one")
	}

	account, err := s.repo.UpdateUsername(ctx, accountID, username)
	if err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflict("Username is already taken")
		}
		return nil, notFoundOr(err, "User does not exist", "updating the username")
	}
	return account, nil
}

// UpdateAvatar replaces the avatar of account
func (s *AccountService) UpdateAvatar(ctx context.Context, account *models.Account, file *upload.File) (*models.Account, error) {
	if file == nil {
		return nil, apperror.BadRequest("Avatar file is missing")
	}

	var updated *models.Account
	_, err := s.media.Replace(ctx, uploadOf(file, models.FolderAvatars), account.AvatarURL, func(url string) error {
		var err error
		updated, err = s.repo.UpdateAvatar(ctx, account.ID, url)
		if err != nil {
			return notFoundOr(err, "User does not exist", "updating the avatar")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateCoverImage replaces the cover image of account
func (s *AccountService) UpdateCoverImage(ctx context.Context, account *models.Account, file *upload.File) (*models.Account, error) {
	if file == nil {
		return nil, apperror.BadRequest("Cover image file is missing")
	}

	var updated *models.Account
	_, err := s.media.Replace(ctx, uploadOf(file, models.FolderCovers), account.CoverImageURL, func(url string) error {
		var err error
		updated, err = s.repo.UpdateCoverImage(ctx, account.ID, url)
		if err != nil {
			return notFoundOr(err, "User does not exist", "updating the cover image")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChannelProfile returns the public profile of a channel as seen by viewerID
func (s *AccountService) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.ToLower(trimmed(username))
	if username == "" {
		return nil, apperror.BadRequest("username is missing")
	}

	profile, err := s.repo.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		return nil, notFoundOr(err, "Channel does not exist", "fetching the channel")
	}
	return profile, nil
}

// WatchHistory returns the videos accountID watched, most recent first
func (s *AccountService) WatchHistory(ctx context.Context, accountID string) ([]*models.WatchedVideo, error) {
	history, err := s.repo.GetWatchHistory(ctx, accountID)
	if err != nil {
		return nil, internalError("fetching the watch history", err)
	}
	return history, nil
}
