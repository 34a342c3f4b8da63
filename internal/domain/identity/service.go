package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebus/carebus/internal/platform/auth"
	"github.com/carebus/carebus/internal/platform/memstore"
)

var (
	ErrAlreadyExists      = errors.New("account already exists for this phone number")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
)

type Service struct {
	users  UserRepository
	tokens *auth.Manager
}

func NewService(users UserRepository, tokens *auth.Manager) *Service {
	return &Service{users: users, tokens: tokens}
}

// RegisterInput carries the caller-supplied account fields.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an account. Phone numbers are unique; the password is
// stored as a bcrypt hash only.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.FullName == "" || in.Phone == "" {
		return User{}, fmt.Errorf("full_name and phone are required")
	}
	if len(in.Password) < 6 {
		return User{}, fmt.Errorf("password must be at least 6 characters")
	}
	if in.Role == "" {
		in.Role = RolePatient
	}
	if !ValidRole(in.Role) {
		return User{}, fmt.Errorf("invalid role: %s", in.Role)
	}

	// Hash before touching the store; the uniqueness check and insert are
	// one atomic repository operation so racing registrations with the
	// same phone cannot both pass.
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:           uuid.New().String(),
		FullName:     in.FullName,
		Phone:        in.Phone,
		Role:         in.Role,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(u)
	if err != nil {
		if errors.Is(err, memstore.ErrConflict) {
			return User{}, ErrAlreadyExists
		}
		return User{}, err
	}
	return created, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, phone, password string) (User, string, error) {
	u, ok := s.users.FindByPhone(phone)
	if !ok {
		return User{}, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Get returns one account by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.users.Get(id)
}
