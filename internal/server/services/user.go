// Package services contains server-side business logic. Every method that acts
// on behalf of a caller takes an explicit *access.Actor and applies the rules
// in package access before touching the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/dbx"
	"github.com/dmitrijs2005/memoir/internal/server/access"
	"github.com/dmitrijs2005/memoir/internal/server/auth"
	"github.com/dmitrijs2005/memoir/internal/server/config"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	FirstName      *string
	LastName       *string
	Bio            *string
	ProfilePicture *string
}

// ProfileUpdate lists the profile fields a user may change on their own
// account. Role and verification go through AdminUserUpdate.
type ProfileUpdate struct {
	Email          *string
	FirstName      *string
	LastName       *string
	Bio            *string
	ProfilePicture *string
}

type AdminUserUpdate struct {
	Role       *models.Role
	IsVerified *bool
}

// UserService covers accounts: registration, login, token rotation,
// verification, profiles and administration.
type UserService struct {
	db                           dbx.DBTX
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           m.Conn(),
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates an unverified user with a fresh verification token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if len(in.Password) < auth.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, auth.MinPasswordLength)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("%w: username already exists", common.ErrorAlreadyExists)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	if _, err := repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", common.ErrorAlreadyExists)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	token, err := common.MakeRandHexString(common.VerificationTokenSize)
	if err != nil {
		return nil, err
	}

	u, err := repo.Create(ctx, &models.User{
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      hash,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Bio:               in.Bio,
		ProfilePicture:    in.ProfilePicture,
		VerificationToken: &token,
		Role:              models.RoleUser,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login checks credentials and, on success, returns a new TokenPair together
// with the user.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorInvalidCredentials
		}
		return nil, nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, nil, common.ErrorInvalidCredentials
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		pair    *TokenPair
		expired bool
	)

	// expired tokens are still consumed; the error is reported after commit
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}

		if err := repo.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		if token.Expires.Before(time.Now()) {
			expired = true
			return nil
		}

		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}
	return pair, nil
}

// Logout forgets the refresh token. Unknown tokens are ignored.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// Authenticate resolves an access token to an Actor. The role is read from the
// store so that role changes apply to tokens already issued.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*access.Actor, error) {
	userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return access.ActorFor(user), nil
}

// Verify consumes a verification token and marks its user verified.
func (s *UserService) Verify(ctx context.Context, token string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}

	verified := true
	var noToken *string
	return repo.Update(ctx, user.ID, models.UserPatch{IsVerified: &verified, VerificationToken: &noToken})
}

func (s *UserService) Current(ctx context.Context, actor *access.Actor) (*models.User, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).GetByID(ctx, actor.UserID)
}

func (s *UserService) GetProfile(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// ProfileEditable checks, in order, that the actor is signed in, that user id
// exists and that the actor is that user or an admin.
func (s *UserService) ProfileEditable(ctx context.Context, actor *access.Actor, id int64) error {
	if err := access.RequireAuthenticated(actor); err != nil {
		return err
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, id); err != nil {
		return err
	}
	return access.CanUpdateProfile(actor, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *access.Actor, id int64, in ProfileUpdate) (*models.User, error) {
	if err := s.ProfileEditable(ctx, actor, id); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).Update(ctx, id, models.UserPatch{
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Bio:            in.Bio,
		ProfilePicture: in.ProfilePicture,
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		return nil, fmt.Errorf("%w: email already exists", common.ErrorAlreadyExists)
	}
	return u, err
}

func (s *UserService) ListUsers(ctx context.Context, actor *access.Actor) ([]*models.User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).List(ctx)
}

// AdminEditable checks the actor is an admin and user id exists.
func (s *UserService) AdminEditable(ctx context.Context, actor *access.Actor, id int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	_, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	return err
}

// AdminUpdateUser changes role or verification state of any account, except
// that administrators cannot demote themselves.
func (s *UserService) AdminUpdateUser(ctx context.Context, actor *access.Actor, id int64, in AdminUserUpdate) (*models.User, error) {
	if err := s.AdminEditable(ctx, actor, id); err != nil {
		return nil, err
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, fmt.Errorf("%w: role must be one of user, admin", common.ErrorValidation)
	}
	if err := access.CanAdminUpdateUser(actor, id, in.Role); err != nil {
		return nil, err
	}

	return s.repomanager.Users(s.db).Update(ctx, id, models.UserPatch{Role: in.Role, IsVerified: in.IsVerified})
}

// AdminDeleteUser removes an account with everything it owns.
func (s *UserService) AdminDeleteUser(ctx context.Context, actor *access.Actor, id int64) error {
	if err := access.CanAdminDeleteUser(actor, id); err != nil {
		return err
	}
	return s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
}

// EnsureAdmin creates an administrator or promotes an existing account with
// the same username. It reports whether a new account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	repo := s.repomanager.Users(s.db)
	admin, verified := models.RoleAdmin, true

	existing, err := repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		u, err := repo.Update(ctx, existing.ID, models.UserPatch{Role: &admin, IsVerified: &verified})
		return u, false, err
	case !errors.Is(err, common.ErrorNotFound):
		return nil, false, err
	}

	if strings.TrimSpace(email) == "" {
		return nil, false, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	if len(password) < auth.MinPasswordLength {
		return nil, false, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, auth.MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	u, err := repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   true,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(common.RefreshTokenSize)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64, tx dbx.DBTX) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refresh}, nil
}
