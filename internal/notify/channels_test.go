package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func testNotification() *Notification {
	return &Notification{
		ID:      "n-1",
		UserID:  "u1",
		Title:   "Appointment tomorrow",
		Message: "10:00 with Dr. Osei",
	}
}

func TestBrowserChannel_Granted(t *testing.T) {
	perms := &MockPermissionClient{State: PermissionGranted}
	pusher := &MockPusher{}
	ch := NewBrowserChannel(perms, pusher)

	if err := ch.Show(context.Background(), testNotification()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(pusher.Calls()); got != 1 {
		t.Errorf("push calls = %d, want 1", got)
	}
	if got := perms.Requests(); got != 0 {
		t.Errorf("permission requests = %d, want 0 when already granted", got)
	}
}

func TestBrowserChannel_Denied(t *testing.T) {
	perms := &MockPermissionClient{State: PermissionDenied}
	pusher := &MockPusher{}
	ch := NewBrowserChannel(perms, pusher)

	err := ch.Show(context.Background(), testNotification())
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("error = %v, want ErrNotPermitted", err)
	}
	if got := len(pusher.Calls()); got != 0 {
		t.Errorf("push calls = %d, want 0", got)
	}
	if got := perms.Requests(); got != 0 {
		t.Errorf("permission requests = %d, want 0 when denied", got)
	}
}

func TestBrowserChannel_DefaultThenGranted(t *testing.T) {
	perms := &MockPermissionClient{State: PermissionDefault, RequestResult: PermissionGranted}
	pusher := &MockPusher{}
	ch := NewBrowserChannel(perms, pusher)

	if err := ch.Show(context.Background(), testNotification()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := perms.Requests(); got != 1 {
		t.Errorf("permission requests = %d, want 1", got)
	}
	if got := len(pusher.Calls()); got != 1 {
		t.Errorf("push calls = %d, want 1", got)
	}
}

func TestBrowserChannel_DefaultThenDismissed(t *testing.T) {
	perms := &MockPermissionClient{State: PermissionDefault, RequestResult: PermissionDefault}
	pusher := &MockPusher{}
	ch := NewBrowserChannel(perms, pusher)

	err := ch.Show(context.Background(), testNotification())
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("error = %v, want ErrNotPermitted", err)
	}
	// The attempt is abandoned for this call; exactly one request, no retry.
	if got := perms.Requests(); got != 1 {
		t.Errorf("permission requests = %d, want 1", got)
	}
	if got := len(pusher.Calls()); got != 0 {
		t.Errorf("push calls = %d, want 0", got)
	}
}

func TestBrowserChannel_RequestError(t *testing.T) {
	perms := &MockPermissionClient{State: PermissionDefault, RequestErr: errors.New("client gone")}
	pusher := &MockPusher{}
	ch := NewBrowserChannel(perms, pusher)

	err := ch.Show(context.Background(), testNotification())
	if err == nil || errors.Is(err, ErrNotPermitted) {
		t.Fatalf("error = %v, want a non-skip failure", err)
	}
}

func TestLogEmailSender_NeverFails(t *testing.T) {
	s := &LogEmailSender{From: "no-reply@carelink.local", Logger: zerolog.Nop()}
	if err := s.SendEmail(context.Background(), "u1@hospital.test", "subject", "body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
