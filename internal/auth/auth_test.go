package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/sheet"
)

func newTestService() (*Service, *sheet.MemoryStore) {
	store := sheet.NewMemoryStore()
	svc := NewService(store, "")
	svc.cost = bcrypt.MinCost
	return svc, store
}

func TestRegisterThenLogin(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Mario.Rossi@Example.IT ", " segreto ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "mario.rossi@example.it" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}

	rows, _ := store.Read(ctx, DefaultWorksheet)
	if len(rows) != 1 {
		t.Fatalf("expected 1 user row, got %d", len(rows))
	}
	if rows[0][ColPassword] == "segreto" || rows[0][ColPassword] == "" {
		t.Error("password must be stored hashed")
	}

	if _, err := svc.Login(ctx, "MARIO.ROSSI@example.it", "segreto"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "no-at-sign", "pw"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.it", "   "); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
	if _, err := svc.Register(ctx, "a@b.it", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "A@B.IT", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, "a@b.it", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@b.it", "pw"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Login(ctx, "a@b.it", "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

func TestLogin_LegacySHA256Hash(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	sum := sha256.Sum256([]byte("vecchia"))
	legacy := strings.ToUpper(hex.EncodeToString(sum[:]))
	if err := store.Append(ctx, DefaultWorksheet, Columns, sheet.Row{ColEmail: " Old@User.it", ColPassword: legacy}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Login(ctx, "old@user.it", "vecchia"); err != nil {
		t.Fatalf("legacy login: %v", err)
	}
	if _, err := svc.Login(ctx, "old@user.it", "nuova"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

func TestCheckPassword_RejectsGarbageHash(t *testing.T) {
	if CheckPassword("pw", "not-a-hash") {
		t.Error("garbage hash must not verify")
	}
}
