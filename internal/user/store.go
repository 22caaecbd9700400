package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user: not found")
	ErrEmailTaken = errors.New("user: email already registered")
)

// Store describes persistence operations for user accounts.
type Store interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int, error)
	SetActive(ctx context.Context, id string, active bool) (*User, error)
	Delete(ctx context.Context, id string) error
	AddParticipationRights(ctx context.Context, id string, amount int) (int, error)
}
