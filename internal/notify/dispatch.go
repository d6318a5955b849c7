package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// ChannelStatus classifies the outcome of one delivery attempt.
type ChannelStatus string

const (
	StatusDelivered ChannelStatus = "delivered"
	StatusSkipped   ChannelStatus = "skipped"
	StatusFailed    ChannelStatus = "failed"
)

// ChannelResult reports what happened on one delivery channel. Failures are
// surfaced here for observability and tests; they are never propagated to
// the caller.
type ChannelResult struct {
	Channel string        `json:"channel"`
	Status  ChannelStatus `json:"status"`
	Reason  string        `json:"reason,omitempty"`
}

// Request carries the caller-supplied fields of one outbound notification.
// The recipient's email address is resolved by the caller; dispatch trusts
// the user id without re-validation.
type Request struct {
	UserID    string            `json:"user_id"`
	Email     string            `json:"email,omitempty"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      Type              `json:"type"`
	Category  Category          `json:"category"`
	ActionURL string            `json:"action_url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Dispatcher classifies and routes one outbound notification: append to the
// store unconditionally, then best-effort fan-out to external channels gated
// by the user's preferences. No retry, no receipt, no dead-letter.
type Dispatcher struct {
	store   *Store
	email   EmailSender
	browser *BrowserChannel
	logger  zerolog.Logger
}

func NewDispatcher(store *Store, email EmailSender, browser *BrowserChannel, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store:   store,
		email:   email,
		browser: browser,
		logger:  logger,
	}
}

// Dispatch appends the notification to the in-app store and attempts the
// email and browser channels when the corresponding preference is enabled.
// In-app visibility is never gated by preferences; only the external
// channels are. Channel failures are logged and reported in the results,
// never returned as an error: completion means the in-app record exists,
// not that any channel delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Notification, []ChannelResult) {
	n := d.store.Append(req.UserID, Notification{
		Type:      req.Type,
		Category:  req.Category,
		Title:     req.Title,
		Message:   req.Message,
		ActionURL: req.ActionURL,
		Metadata:  req.Metadata,
	})

	results := make([]ChannelResult, 0, 2)
	results = append(results, d.attemptEmail(ctx, req, n))
	results = append(results, d.attemptBrowser(ctx, n))
	return n, results
}

func (d *Dispatcher) attemptEmail(ctx context.Context, req Request, n *Notification) ChannelResult {
	if !d.store.Enabled(n.UserID, PrefEmail) {
		return ChannelResult{Channel: PrefEmail, Status: StatusSkipped, Reason: "preference disabled"}
	}

	if err := d.email.SendEmail(ctx, req.Email, n.Title, n.Message); err != nil {
		d.logger.Warn().Err(err).
			Str("channel", PrefEmail).
			Str("notification_id", n.ID).
			Str("user_id", n.UserID).
			Msg("email delivery failed")
		return ChannelResult{Channel: PrefEmail, Status: StatusFailed, Reason: err.Error()}
	}
	return ChannelResult{Channel: PrefEmail, Status: StatusDelivered}
}

func (d *Dispatcher) attemptBrowser(ctx context.Context, n *Notification) ChannelResult {
	if !d.store.Enabled(n.UserID, PrefBrowser) {
		return ChannelResult{Channel: PrefBrowser, Status: StatusSkipped, Reason: "preference disabled"}
	}

	err := d.browser.Show(ctx, n)
	switch {
	case err == nil:
		return ChannelResult{Channel: PrefBrowser, Status: StatusDelivered}
	case errors.Is(err, ErrNotPermitted):
		return ChannelResult{Channel: PrefBrowser, Status: StatusSkipped, Reason: err.Error()}
	default:
		d.logger.Warn().Err(err).
			Str("channel", PrefBrowser).
			Str("notification_id", n.ID).
			Str("user_id", n.UserID).
			Msg("browser delivery failed")
		return ChannelResult{Channel: PrefBrowser, Status: StatusFailed, Reason: err.Error()}
	}
}
