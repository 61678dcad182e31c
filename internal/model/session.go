package model

import "time"

// Page is the screen a session is on.
type Page string

const (
	PageLanding   Page = "landing"
	PageAuth      Page = "auth"
	PageDashboard Page = "dashboard"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the advisor conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// User is a registered account as stored in the users worksheet.
type User struct {
	Email        string
	PasswordHash string
}

// Session is the per-visitor state carried between requests.
type Session struct {
	Token      string        `json:"token"`
	Email      string        `json:"email,omitempty"`
	Page       Page          `json:"page"`
	LastSymbol string        `json:"last_symbol,omitempty"`
	Messages   []ChatMessage `json:"messages,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	SeenAt     time.Time     `json:"seen_at"`
}

// LoggedIn reports whether the session belongs to an authenticated user.
func (s *Session) LoggedIn() bool { return s.Email != "" }
