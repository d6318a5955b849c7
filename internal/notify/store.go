// Package notify implements in-app notifications for hospital staff and
// patients: a per-user in-memory store with channel preferences, a dispatcher
// that fans out to email and browser channels, and Echo HTTP handlers.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type identifies the event that triggered a notification.
type Type string

const (
	TypeAppointmentReminder Type = "appointment_reminder"
	TypeTestResults         Type = "test_results"
	TypePrescriptionReady   Type = "prescription_ready"
	TypeBillingUpdate       Type = "billing_update"
	TypeGeneral             Type = "general"
)

// Category is the coarser bucket used to gate external delivery via
// preferences.
type Category string

const (
	CategoryAppointments  Category = "appointments"
	CategoryPrescriptions Category = "prescriptions"
	CategoryLabResults    Category = "lab_results"
	CategoryBilling       Category = "billing"
	CategorySystem        Category = "system"
)

// Channel preference keys. Category names double as preference keys; any
// other key is accepted and simply never consulted.
const (
	PrefEmail   = "email"
	PrefBrowser = "browser"
)

// Notification represents one addressed, classified message surfaced to a
// user. ID and Timestamp are assigned by the store at append time and never
// change afterwards; Read is the only field mutated in place.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      Type              `json:"type"`
	Category  Category          `json:"category"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
	ActionURL string            `json:"action_url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// DefaultPreferences returns the initial preference map: every channel and
// category enabled.
func DefaultPreferences() map[string]bool {
	return map[string]bool{
		PrefEmail:                     true,
		PrefBrowser:                   true,
		string(CategoryAppointments):  true,
		string(CategoryPrescriptions): true,
		string(CategoryLabResults):    true,
		string(CategoryBilling):       true,
		string(CategorySystem):        true,
	}
}

type userState struct {
	notifications []*Notification // newest first
	unread        int
	prefs         map[string]bool
}

// Store is the single source of truth for in-memory notifications and
// channel preferences, partitioned by user. It owns the notification list
// exclusively; accessors return copies.
type Store struct {
	mu     sync.RWMutex
	byUser map[string]*userState
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byUser: make(map[string]*userState)}
}

// Reset discards all state. Intended for test isolation.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser = make(map[string]*userState)
}

// user returns the state for userID, creating it with default preferences on
// first touch. Callers must hold s.mu.
func (s *Store) user(userID string) *userState {
	st, ok := s.byUser[userID]
	if !ok {
		st = &userState{prefs: DefaultPreferences()}
		s.byUser[userID] = st
	}
	return st
}

// Append stores a new notification for the user. The store assigns ID and
// Timestamp, forces Read to false, and prepends so the sequence stays
// newest-first. The stored copy is returned.
func (s *Store) Append(userID string, n Notification) *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.New().String()
	n.UserID = userID
	n.Timestamp = time.Now().UTC()
	n.Read = false

	st := s.user(userID)
	st.notifications = append([]*Notification{&n}, st.notifications...)
	st.unread++

	out := n
	return &out
}

// MarkRead sets the notification's read flag. Unknown ids are a no-op; read
// transitions false to true only.
func (s *Store) MarkRead(userID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byUser[userID]
	if !ok {
		return
	}
	for _, n := range st.notifications {
		if n.ID == id {
			if !n.Read {
				n.Read = true
				if st.unread > 0 {
					st.unread--
				}
			}
			return
		}
	}
}

// MarkAllRead marks every notification read. Idempotent.
func (s *Store) MarkAllRead(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byUser[userID]
	if !ok {
		return
	}
	for _, n := range st.notifications {
		n.Read = true
	}
	st.unread = 0
}

// Remove deletes the notification if present. The unread counter decrements
// only when the removed record was unread. Absent ids are a no-op.
func (s *Store) Remove(userID, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byUser[userID]
	if !ok {
		return
	}
	for i, n := range st.notifications {
		if n.ID == id {
			if !n.Read && st.unread > 0 {
				st.unread--
			}
			st.notifications = append(st.notifications[:i], st.notifications[i+1:]...)
			return
		}
	}
}

// Clear empties the user's notification sequence and resets the unread
// counter.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.byUser[userID]
	if !ok {
		return
	}
	st.notifications = nil
	st.unread = 0
}

// List returns a copy of the user's notifications, newest first, capped at
// limit when limit > 0.
func (s *Store) List(userID string, limit int) []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.byUser[userID]
	if !ok {
		return nil
	}

	n := len(st.notifications)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*Notification, n)
	for i := 0; i < n; i++ {
		cp := *st.notifications[i]
		out[i] = &cp
	}
	return out
}

// UnreadCount returns the number of unread notifications for the user.
func (s *Store) UnreadCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.byUser[userID]
	if !ok {
		return 0
	}
	return st.unread
}

// Preferences returns a copy of the user's preference map.
func (s *Store) Preferences(userID string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.user(userID)
	out := make(map[string]bool, len(st.prefs))
	for k, v := range st.prefs {
		out[k] = v
	}
	return out
}

// UpdatePreferences applies a partial preference map key-by-key,
// last-writer-wins. Unknown keys are stored but never consulted.
func (s *Store) UpdatePreferences(userID string, prefs map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.user(userID)
	for k, v := range prefs {
		st.prefs[k] = v
	}
}

// Enabled reports whether the given preference key is enabled for the user.
func (s *Store) Enabled(userID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user(userID).prefs[key]
}
