package commands

import (
	"context"

	"flashsale/internal/domain/user"
	"flashsale/internal/infra"
	"flashsale/internal/pkg/errs"
	"flashsale/internal/pkg/jwt"
	"flashsale/internal/pkg/password"
)

var ErrInvalidCredentials = errs.New("invalid credentials")

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type AuthCommands interface {
	Login(ctx context.Context, email, plainPassword string) (string, error)
}

type authUseCaseImpl struct {
	users UserRepository
	jwt   *jwt.Service
}

func NewAuthCommands(users UserRepository, jwtService *jwt.Service) AuthCommands {
	return &authUseCaseImpl{users: users, jwt: jwtService}
}

func (a *authUseCaseImpl) Login(ctx context.Context, email, plainPassword string) (string, error) {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", errs.Wrap(err, "failed to load user")
	}

	if err := password.ComparePassword(u.PasswordHash, plainPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := a.jwt.GenerateToken(u.ID)
	if err != nil {
		return "", errs.Wrap(err, "failed to issue token")
	}
	return token, nil
}
