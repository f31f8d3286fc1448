package queries

import (
	"context"
	"time"

	"flashsale/internal/domain/user"
	"flashsale/internal/infra"
	"flashsale/internal/pkg/errs"

	"github.com/jinzhu/copier"
)

var ErrUserNotFound = errs.New("user not found")

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// UserView deliberately excludes the password hash.
type UserView struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	NickName   string    `json:"nickName"`
	CreateTime time.Time `json:"createTime"`
}

type UserQueries interface {
	GetCurrentUser(ctx context.Context, id int64) (*UserView, error)
}

type userQueriesImpl struct {
	users UserRepository
}

func NewUserQueries(users UserRepository) UserQueries {
	return &userQueriesImpl{users: users}
}

func (q *userQueriesImpl) GetCurrentUser(ctx context.Context, id int64) (*UserView, error) {
	u, err := q.users.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errs.Wrap(err, "failed to load user")
	}

	var view UserView
	if err := copier.Copy(&view, u); err != nil {
		return nil, errs.Wrap(err, "failed to map user view")
	}
	return &view, nil
}
