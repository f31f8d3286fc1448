//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"flashsale/internal/domain/user"
	"flashsale/internal/infra"
	"flashsale/internal/pkg/errs"
	"flashsale/internal/pkg/jwt"
	"flashsale/internal/pkg/password"
	"flashsale/internal/usecase/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	user *user.User
	err  error
}

func (f *fakeUserRepo) FindByEmail(context.Context, string) (*user.User, error) {
	return f.user, f.err
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	jwtService := jwt.NewService("test-secret", time.Hour)

	hash, err := password.HashPassword("correct-horse")
	require.NoError(t, err)
	knownUser := &user.User{ID: 42, Email: "user@example.com", PasswordHash: hash}

	t.Run("valid credentials yield a token carrying the user id", func(t *testing.T) {
		uc := commands.NewAuthCommands(&fakeUserRepo{user: knownUser}, jwtService)

		token, err := uc.Login(ctx, "user@example.com", "correct-horse")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		uc := commands.NewAuthCommands(&fakeUserRepo{user: knownUser}, jwtService)

		_, err := uc.Login(ctx, "user@example.com", "wrong-password")
		require.ErrorIs(t, err, commands.ErrInvalidCredentials)
	})

	t.Run("unknown user maps to the same error as a wrong password", func(t *testing.T) {
		repo := &fakeUserRepo{err: infra.WrapRepoErr("user not found", errs.New("no rows"), infra.KindNotFound)}
		uc := commands.NewAuthCommands(repo, jwtService)

		_, err := uc.Login(ctx, "nobody@example.com", "whatever")
		require.ErrorIs(t, err, commands.ErrInvalidCredentials)
	})

	t.Run("repository failures are not credential errors", func(t *testing.T) {
		repo := &fakeUserRepo{err: infra.WrapRepoErr("db failure", errs.New("connection reset"))}
		uc := commands.NewAuthCommands(repo, jwtService)

		_, err := uc.Login(ctx, "user@example.com", "correct-horse")
		require.Error(t, err)
		assert.NotErrorIs(t, err, commands.ErrInvalidCredentials)
	})
}
