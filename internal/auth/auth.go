// Package auth registers and verifies users kept in the users worksheet.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ciuffardimattia-hub/my-trading-ai/internal/model"
	"github.com/ciuffardimattia-hub/my-trading-ai/internal/sheet"
)

// DefaultWorksheet holds the user table.
const DefaultWorksheet = "Utenti"

// Column headers of the users worksheet.
const (
	ColEmail    = "Email"
	ColPassword = "Password"
)

var Columns = []string{ColEmail, ColPassword}

var (
	ErrInvalidEmail  = errors.New("invalid email")
	ErrEmptyPassword = errors.New("password is required")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

// Service handles registration and login.
type Service struct {
	store     sheet.Store
	worksheet string
	cost      int
}

// NewService creates a Service over the given worksheet.
func NewService(store sheet.Store, worksheet string) *Service {
	if worksheet == "" {
		worksheet = DefaultWorksheet
	}
	return &Service{store: store, worksheet: worksheet, cost: bcrypt.DefaultCost}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. The email must contain "@" and be unused.
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	password = strings.TrimSpace(password)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	existing, err := s.find(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Email: email, PasswordHash: string(hash)}
	if err := s.store.Append(ctx, s.worksheet, Columns, sheet.Row{
		ColEmail:    u.Email,
		ColPassword: u.PasswordHash,
	}); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and returns the stored user.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)
	u, err := s.find(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !CheckPassword(strings.TrimSpace(password), u.PasswordHash) {
		return nil, ErrWrongPassword
	}
	return u, nil
}

func (s *Service) find(ctx context.Context, email string) (*model.User, error) {
	rows, err := s.store.Read(ctx, s.worksheet)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	for _, r := range rows {
		if NormalizeEmail(r[ColEmail]) == email {
			return &model.User{Email: email, PasswordHash: strings.TrimSpace(r[ColPassword])}, nil
		}
	}
	return nil, nil
}

// CheckPassword verifies password against a bcrypt hash, or against the
// legacy unsalted SHA-256 hex digests found in older user sheets.
func CheckPassword(password, hash string) bool {
	if isLegacyHash(hash) {
		sum := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(hash))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func isLegacyHash(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
