package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/services/mocks"
	"github.com/example/pandol/internal/utils"
)

const testSecret = "test-secret"

type authMocks struct {
	users   *mocks.MockUserRepository
	members *mocks.MockMemberRepository
	tokens  *mocks.MockTokenRepository
}

func newAuthService(t *testing.T) (*services.AuthService, authMocks) {
	ctrl := gomock.NewController(t)
	m := authMocks{
		users:   mocks.NewMockUserRepository(ctrl),
		members: mocks.NewMockMemberRepository(ctrl),
		tokens:  mocks.NewMockTokenRepository(ctrl),
	}
	cfg := services.AuthConfig{Secret: testSecret, TokenTTL: time.Hour, ResetTTL: 30 * time.Minute}
	return services.NewAuthService(m.users, m.members, m.tokens, cfg, quietLog), m
}

func userWithPassword(t *testing.T, password, role string) *models.User {
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	u := &models.User{Name: gofakeit.Name(), Email: gofakeit.Email(), PasswordHash: hash, Role: &models.Role{Name: role}}
	u.ID = uint(gofakeit.IntRange(1, 1000))
	return u
}

func TestLogin(t *testing.T) {
	svc, m := newAuthService(t)
	user := userWithPassword(t, "secret123", models.RoleCashier)

	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil).Times(2)
	m.users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, repository.ErrNotFound)

	token, got, err := svc.Login(context.Background(), user.Email, "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	claims, err := utils.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleCashier, claims.Role)

	_, _, err = svc.Login(context.Background(), user.Email, "wrong-password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterLinksExistingMember(t *testing.T) {
	svc, m := newAuthService(t)
	existing := member(7, "0", "1000")

	m.users.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(nil, repository.ErrNotFound)
	m.members.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(&existing, nil)
	m.users.EXPECT().CreateWithMember(gomock.Any(), gomock.Any(), models.RoleMember, &existing).
		DoAndReturn(func(_ context.Context, u *models.User, _ string, mem *models.Member) error {
			assert.True(t, utils.CheckPassword(u.PasswordHash, "secret123"))
			u.ID = 21
			u.Role = &models.Role{Name: models.RoleMember}
			mem.UserID = &u.ID
			return nil
		})

	token, user, mem, err := svc.Register(context.Background(), services.RegisterParams{
		Name: "Ana Reyes", Email: " Ana@Example.com ", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, uint(21), user.ID)
	assert.Equal(t, uint(7), mem.ID)
	require.NotNil(t, mem.UserID)
	assert.Equal(t, uint(21), *mem.UserID)
}

func TestRegisterCreatesMember(t *testing.T) {
	svc, m := newAuthService(t)

	m.users.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(nil, repository.ErrNotFound)
	m.members.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(nil, repository.ErrNotFound)
	m.users.EXPECT().CreateWithMember(gomock.Any(), gomock.Any(), models.RoleMember, gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User, _ string, mem *models.Member) error {
			assert.Zero(t, mem.ID)
			assert.Equal(t, "new@example.com", mem.Email)
			assert.Equal(t, models.MemberStatusActive, mem.Status)
			u.ID = 22
			mem.ID = 8
			return nil
		})

	_, _, mem, err := svc.Register(context.Background(), services.RegisterParams{
		Name: "New Member", Email: "new@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(8), mem.ID)
}

func TestRegisterFailedWriteCanBeRetried(t *testing.T) {
	svc, m := newAuthService(t)
	params := services.RegisterParams{Name: "New Member", Email: "new@example.com", Password: "secret123"}

	// No user row survives a failed write, so the second attempt finds no account.
	m.users.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(nil, repository.ErrNotFound).Times(2)
	m.members.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(nil, repository.ErrNotFound).Times(2)
	gomock.InOrder(
		m.users.EXPECT().CreateWithMember(gomock.Any(), gomock.Any(), models.RoleMember, gomock.Any()).
			Return(errors.New("connection reset")),
		m.users.EXPECT().CreateWithMember(gomock.Any(), gomock.Any(), models.RoleMember, gomock.Any()).
			DoAndReturn(func(_ context.Context, u *models.User, _ string, mem *models.Member) error {
				u.ID = 23
				mem.ID = 9
				return nil
			}),
	)

	_, user, mem, err := svc.Register(context.Background(), params)
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrAlreadyRegistered)
	assert.Nil(t, user)
	assert.Nil(t, mem)

	token, user, mem, err := svc.Register(context.Background(), params)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, uint(23), user.ID)
	assert.Equal(t, uint(9), mem.ID)
}

func TestRegisterLinkRaceIsDuplicate(t *testing.T) {
	svc, m := newAuthService(t)
	existing := member(7, "0", "1000")

	m.users.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(nil, repository.ErrNotFound)
	m.members.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(&existing, nil)
	m.users.EXPECT().CreateWithMember(gomock.Any(), gomock.Any(), models.RoleMember, gomock.Any()).
		Return(errors.Wrap(repository.ErrDuplicate, "link member"))

	_, _, _, err := svc.Register(context.Background(), services.RegisterParams{Email: "ana@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, services.ErrAlreadyRegistered)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	t.Run("user exists", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(&models.User{}, nil)

		_, _, _, err := svc.Register(context.Background(), services.RegisterParams{Email: "ana@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, services.ErrAlreadyRegistered)
	})

	t.Run("member already linked", func(t *testing.T) {
		svc, m := newAuthService(t)
		linked := member(7, "0", "0")
		userID := uint(3)
		linked.UserID = &userID

		m.users.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(nil, repository.ErrNotFound)
		m.members.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(&linked, nil)

		_, _, _, err := svc.Register(context.Background(), services.RegisterParams{Email: "ana@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, services.ErrAlreadyRegistered)
	})

	t.Run("short password", func(t *testing.T) {
		svc, m := newAuthService(t)
		m.users.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(nil, repository.ErrNotFound)
		m.members.EXPECT().GetByEmail(gomock.Any(), "ana@example.com").Return(nil, repository.ErrNotFound)

		_, _, _, err := svc.Register(context.Background(), services.RegisterParams{Email: "ana@example.com", Password: "123"})
		assert.ErrorIs(t, err, utils.ErrPasswordTooShort)
	})
}

func TestPasswordReset(t *testing.T) {
	svc, m := newAuthService(t)
	user := userWithPassword(t, "secret123", models.RoleMember)

	var issued *models.VerificationToken
	m.users.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	m.tokens.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, vt *models.VerificationToken) error {
			issued = vt
			return nil
		})

	token, err := svc.ForgotPassword(context.Background(), user.Email)
	require.NoError(t, err)
	require.NotNil(t, issued)
	assert.Len(t, token, 32)
	assert.Equal(t, token, issued.Token)
	assert.Equal(t, models.TokenTypePasswordReset, issued.Type)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), issued.ExpiresAt, time.Minute)

	m.tokens.EXPECT().Consume(gomock.Any(), token, models.TokenTypePasswordReset, gomock.Any()).Return(issued, nil)
	m.users.EXPECT().UpdatePassword(gomock.Any(), user.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uint, hash string) error {
			assert.True(t, utils.CheckPassword(hash, "n3w-password"))
			return nil
		})
	require.NoError(t, svc.ResetPassword(context.Background(), token, "n3w-password"))

	m.tokens.EXPECT().Consume(gomock.Any(), token, models.TokenTypePasswordReset, gomock.Any()).Return(nil, repository.ErrNotFound)
	assert.ErrorIs(t, svc.ResetPassword(context.Background(), token, "n3w-password"), services.ErrInvalidResetToken)

	assert.ErrorIs(t, svc.ResetPassword(context.Background(), token, "abc"), utils.ErrPasswordTooShort)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, m := newAuthService(t)
	m.users.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(nil, repository.ErrNotFound)

	token, err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}
