package identity

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carebus/carebus/internal/platform/auth"
)

func newTestService() *Service {
	tokens := auth.NewManager([]byte("test-secret"), time.Hour)
	return NewService(NewUserRepoMem(), tokens)
}

func TestRegister(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Ali Raza",
		Phone:    "+923001234567",
		Password: "secret123",
		Role:     RolePatient,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated id")
	}
	if len(u.PasswordHash) == 0 {
		t.Error("expected stored password hash")
	}
	if string(u.PasswordHash) == "secret123" {
		t.Error("password must not be stored in plaintext")
	}
}

func TestRegister_DefaultsToPatient(t *testing.T) {
	svc := newTestService()

	u, err := svc.Register(context.Background(), RegisterInput{FullName: "Ali Raza", Phone: "+923001234567", Password: "secret123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != RolePatient {
		t.Errorf("expected patient role, got %s", u.Role)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{Phone: "+92300", Password: "secret123"}},
		{"missing phone", RegisterInput{FullName: "Ali", Password: "secret123"}},
		{"short password", RegisterInput{FullName: "Ali", Phone: "+92300", Password: "abc"}},
		{"unknown role", RegisterInput{FullName: "Ali", Phone: "+92300", Password: "secret123", Role: "wizard"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.in); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegister_DuplicatePhone(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := RegisterInput{FullName: "Ali Raza", Phone: "+923001234567", Password: "secret123"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, in)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegister_ConcurrentSamePhone(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	const callers = 32
	var wg sync.WaitGroup
	var created int64
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, RegisterInput{FullName: "Ali Raza", Phone: "+923001234567", Password: "secret123"})
			switch {
			case err == nil:
				atomic.AddInt64(&created, 1)
			case errors.Is(err, ErrAlreadyExists):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("expected exactly one successful registration, got %d", created)
	}

	u, ok := svc.users.FindByPhone("+923001234567")
	if !ok {
		t.Fatal("expected a stored account")
	}
	accounts := 0
	for _, stored := range svc.users.List() {
		if stored.Phone == u.Phone {
			accounts++
		}
	}
	if accounts != 1 {
		t.Errorf("expected 1 account for phone, got %d", accounts)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{FullName: "Ali Raza", Phone: "+923001234567", Password: "secret123", Role: RoleDoctor})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, token, err := svc.Login(ctx, "+923001234567", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != registered.ID {
		t.Errorf("expected user %s, got %s", registered.ID, u.ID)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	claims, err := auth.NewManager([]byte("test-secret"), time.Hour).Verify(token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Subject != registered.ID || claims.Role != RoleDoctor {
		t.Errorf("token claims mismatch: %+v", claims)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.Register(ctx, RegisterInput{FullName: "Ali Raza", Phone: "+923001234567", Password: "secret123"})

	if _, _, err := svc.Login(ctx, "+923001234567", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "+920000000000", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown phone: expected ErrInvalidCredentials, got %v", err)
	}
}
