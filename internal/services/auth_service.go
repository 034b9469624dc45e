package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("account already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// AuthConfig carries the token settings of AuthService.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
	ResetTTL time.Duration
}

// RegisterParams is a member self sign-up.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles logins, member sign-up and password resets.
type AuthService struct {
	users   UserRepository
	members MemberRepository
	tokens  TokenRepository
	cfg     AuthConfig
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewAuthService(users UserRepository, members MemberRepository, tokens TokenRepository, cfg AuthConfig, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:   users,
		members: members,
		tokens:  tokens,
		cfg:     cfg,
		log:     log.WithField("component", "auth_service"),
		now:     time.Now,
	}
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Register creates a member login. An existing member record with the same
// email is linked to the new login; otherwise a member is created too.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (string, *models.User, *models.Member, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", nil, nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, nil, err
	}

	member, err := s.members.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		member = nil
	case err != nil:
		return "", nil, nil, err
	case member.UserID != nil:
		return "", nil, nil, ErrAlreadyRegistered
	}

	hash, err := utils.HashPassword(p.Password)
	if err != nil {
		return "", nil, nil, err
	}

	if member == nil {
		member = &models.Member{Name: p.Name, Email: email, Status: models.MemberStatusActive}
	}

	user := &models.User{Name: p.Name, Email: email, PasswordHash: hash}
	if err := s.users.CreateWithMember(ctx, user, models.RoleMember, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, nil, ErrAlreadyRegistered
		}
		return "", nil, nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "member_id": member.ID}).Info("member registered")

	token, err := s.issue(user)
	if err != nil {
		return "", nil, nil, err
	}
	return token, user, member, nil
}

// ForgotPassword creates a reset token for the account. An unknown email
// yields an empty token and no error.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Info("password reset requested for unknown email")
		return "", nil
	}
	if err != nil {
		return "", err
	}

	secret, err := utils.NewSecretToken()
	if err != nil {
		return "", errors.Wrap(err, "generate reset token")
	}

	vt := &models.VerificationToken{
		Token:     secret,
		Type:      models.TokenTypePasswordReset,
		UserID:    &user.ID,
		ExpiresAt: s.now().Add(s.cfg.ResetTTL),
	}
	if err := s.tokens.Create(ctx, vt); err != nil {
		return "", err
	}

	s.log.WithField("user_id", user.ID).Info("password reset token issued")
	return secret, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < utils.MinPasswordLength {
		return utils.ErrPasswordTooShort
	}

	vt, err := s.tokens.Consume(ctx, token, models.TokenTypePasswordReset, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if vt.UserID == nil {
		return ErrInvalidResetToken
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, *vt.UserID, hash); err != nil {
		return err
	}

	s.log.WithField("user_id", *vt.UserID).Info("password reset")
	return nil
}

// PurgeTokens removes expired and used verification tokens.
func (s *AuthService) PurgeTokens(ctx context.Context) (int64, error) {
	return s.tokens.PurgeExpired(ctx, s.now())
}

func (s *AuthService) issue(user *models.User) (string, error) {
	role := ""
	if user.Role != nil {
		role = user.Role.Name
	}
	token, err := utils.GenerateToken(s.cfg.Secret, user.ID, role, s.cfg.TokenTTL)
	return token, errors.Wrap(err, "sign token")
}
