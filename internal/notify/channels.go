package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// Email channel
// ---------------------------------------------------------------------------

// EmailSender hands notification content to an external email collaborator.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// LogEmailSender is the default EmailSender: it writes the message to the
// structured log instead of delivering it. Stands in until a real gateway is
// wired.
type LogEmailSender struct {
	From   string
	Logger zerolog.Logger
}

func (s *LogEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.Logger.Info().
		Str("channel", "email").
		Str("from", s.From).
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email stub: message logged, not sent")
	return nil
}

// ---------------------------------------------------------------------------
// Browser channel
// ---------------------------------------------------------------------------

// Permission is the platform notification permission state.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// ErrNotPermitted marks a browser delivery skipped because the user has not
// granted (or has denied) notification permission. It is a skip, not a
// failure.
var ErrNotPermitted = errors.New("browser notifications not permitted")

// PermissionClient exposes the platform permission state for a user and an
// asynchronous permission request.
type PermissionClient interface {
	Permission(ctx context.Context, userID string) Permission
	RequestPermission(ctx context.Context, userID string) (Permission, error)
}

// Pusher delivers a browser notification payload to a user's active
// sessions.
type Pusher interface {
	Push(ctx context.Context, userID string, payload interface{}) error
}

// BrowserPayload is the message shape pushed to browser sessions.
type BrowserPayload struct {
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	ActionURL string `json:"action_url,omitempty"`
}

// BrowserChannel shows platform notifications, honoring the three permission
// states: granted shows immediately, denied is silently skipped, and default
// triggers a single permission request with no retry if it is dismissed.
type BrowserChannel struct {
	perms  PermissionClient
	pusher Pusher
}

func NewBrowserChannel(perms PermissionClient, pusher Pusher) *BrowserChannel {
	return &BrowserChannel{perms: perms, pusher: pusher}
}

// Show delivers one notification to the user's browser sessions. It returns
// ErrNotPermitted when permission is denied or remains ungranted after a
// request.
func (b *BrowserChannel) Show(ctx context.Context, n *Notification) error {
	perm := b.perms.Permission(ctx, n.UserID)

	switch perm {
	case PermissionDenied:
		return ErrNotPermitted
	case PermissionDefault:
		requested, err := b.perms.RequestPermission(ctx, n.UserID)
		if err != nil {
			return fmt.Errorf("request permission: %w", err)
		}
		if requested != PermissionGranted {
			return ErrNotPermitted
		}
	}

	payload := BrowserPayload{
		Kind:      "notification",
		Title:     n.Title,
		Message:   n.Message,
		ActionURL: n.ActionURL,
	}
	if err := b.pusher.Push(ctx, n.UserID, payload); err != nil {
		return fmt.Errorf("push browser notification: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mocks (test doubles)
// ---------------------------------------------------------------------------

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockPermissionClient is a test double for PermissionClient.
type MockPermissionClient struct {
	mu            sync.Mutex
	State         Permission
	RequestResult Permission
	RequestErr    error
	requests      int
}

func (m *MockPermissionClient) Permission(_ context.Context, _ string) Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.State == "" {
		return PermissionDefault
	}
	return m.State
}

func (m *MockPermissionClient) RequestPermission(_ context.Context, _ string) (Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	if m.RequestErr != nil {
		return PermissionDefault, m.RequestErr
	}
	return m.RequestResult, nil
}

// Requests returns how many times permission was requested.
func (m *MockPermissionClient) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// PushCall records a single call to Push.
type PushCall struct {
	UserID  string
	Payload interface{}
}

// MockPusher is a test double for Pusher.
type MockPusher struct {
	mu         sync.Mutex
	calls      []PushCall
	ShouldFail bool
}

func (m *MockPusher) Push(_ context.Context, userID string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, PushCall{UserID: userID, Payload: payload})
	if m.ShouldFail {
		return errors.New("push failed")
	}
	return nil
}

// Calls returns a copy of recorded push calls.
func (m *MockPusher) Calls() []PushCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PushCall, len(m.calls))
	copy(out, m.calls)
	return out
}
