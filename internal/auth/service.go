package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"ihale.org/internal/ids"
	"ihale.org/internal/user"
)

// LoginTypeAdmin selects the admin portal at login. Any other login type must
// match the account's user type exactly.
const LoginTypeAdmin = "admin"

// Service implements registration, login and session verification on top of
// a user store.
type Service struct {
	users user.Store
	codec *TokenCodec
}

// NewService builds the credential service.
func NewService(users user.Store, codec *TokenCodec) *Service {
	return &Service{users: users, codec: codec}
}

// Register creates a new account. The password is stored only as a bcrypt
// hash. New accounts are active non-admins with a zero participation-right
// balance.
func (s *Service) Register(ctx context.Context, name, email, password, userType string) (*user.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || password == "" {
		return nil, fmt.Errorf("%w: name and password are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if !user.ValidType(userType) {
		return nil, fmt.Errorf("%w: unknown user type %q", ErrInvalidInput, userType)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &user.User{
		ID:           ids.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		UserType:     userType,
		IsAdmin:      false,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates credentials against the requested portal and issues a
// session token. The admin portal requires the admin flag; the individual
// and corporate portals require a matching user type.
func (s *Service) Login(ctx context.Context, email, password, loginType string) (string, time.Time, *user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, ErrBadCredentials
	}
	if loginType == LoginTypeAdmin {
		if !u.IsAdmin {
			return "", time.Time{}, nil, ErrWrongPortal
		}
	} else if loginType != u.UserType {
		return "", time.Time{}, nil, ErrWrongPortal
	}
	token, expiresAt, err := s.codec.Issue(u.ID, u.UserType, u.IsAdmin)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, u, nil
}

// VerifySession resolves a bearer token into a caller identity.
func (s *Service) VerifySession(token string) (Identity, error) {
	return s.codec.Verify(token)
}

// Profile loads the account behind an identity, for the verify/user
// endpoints. The password hash never leaves the store boundary serialized.
func (s *Service) Profile(ctx context.Context, userID string) (*user.User, error) {
	return s.users.Find(ctx, userID)
}
