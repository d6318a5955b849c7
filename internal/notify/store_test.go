package notify

import (
	"testing"
)

func appendN(t *testing.T, s *Store, userID string, titles ...string) []*Notification {
	t.Helper()
	out := make([]*Notification, 0, len(titles))
	for _, title := range titles {
		n := s.Append(userID, Notification{
			Type:     TypeGeneral,
			Category: CategorySystem,
			Title:    title,
			Message:  "body",
		})
		out = append(out, n)
	}
	return out
}

func TestStore_AppendAssignsIdentity(t *testing.T) {
	s := NewStore()
	n := s.Append("u1", Notification{
		// Caller-supplied identity fields must be overwritten by the store.
		ID:       "caller-id",
		Read:     true,
		Type:     TypeTestResults,
		Category: CategoryLabResults,
		Title:    "Lab ready",
	})

	if n.ID == "" || n.ID == "caller-id" {
		t.Errorf("id = %q, want store-assigned", n.ID)
	}
	if n.Timestamp.IsZero() {
		t.Error("timestamp not assigned")
	}
	if n.Read {
		t.Error("read must be false at creation")
	}
	if n.UserID != "u1" {
		t.Errorf("user id = %q, want u1", n.UserID)
	}

	if got := len(s.List("u1", 0)); got != 1 {
		t.Errorf("list length = %d, want 1", got)
	}
	if got := s.UnreadCount("u1"); got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}
}

func TestStore_OrderingNewestFirst(t *testing.T) {
	s := NewStore()
	appendN(t, s, "u1", "first", "second", "third")

	list := s.List("u1", 0)
	if len(list) != 3 {
		t.Fatalf("list length = %d, want 3", len(list))
	}
	want := []string{"third", "second", "first"}
	for i, title := range want {
		if list[i].Title != title {
			t.Errorf("list[%d].Title = %q, want %q", i, list[i].Title, title)
		}
	}
}

func TestStore_UnreadAccounting(t *testing.T) {
	s := NewStore()
	ns := appendN(t, s, "u1", "a", "b", "c", "d")

	countUnread := func() int {
		unread := 0
		for _, n := range s.List("u1", 0) {
			if !n.Read {
				unread++
			}
		}
		return unread
	}

	check := func(step string) {
		t.Helper()
		if got, want := s.UnreadCount("u1"), countUnread(); got != want {
			t.Errorf("%s: unread counter = %d, records say %d", step, got, want)
		}
	}

	check("after appends")
	s.MarkRead("u1", ns[0].ID)
	check("after mark one")
	s.Remove("u1", ns[1].ID) // unread record
	check("after remove unread")
	s.Remove("u1", ns[0].ID) // already-read record
	check("after remove read")
	s.MarkAllRead("u1")
	check("after mark all")
	s.Clear("u1")
	check("after clear")
}

func TestStore_MarkRead(t *testing.T) {
	s := NewStore()
	ns := appendN(t, s, "u1", "Lab ready")

	s.MarkRead("u1", ns[0].ID)
	if got := s.UnreadCount("u1"); got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}
	list := s.List("u1", 0)
	if len(list) != 1 {
		t.Fatalf("record removed by MarkRead; list length = %d", len(list))
	}
	if !list[0].Read {
		t.Error("record not marked read")
	}

	// Repeating is a no-op, never double-decrements.
	s.MarkRead("u1", ns[0].ID)
	if got := s.UnreadCount("u1"); got != 0 {
		t.Errorf("unread after repeat = %d, want 0", got)
	}
}

func TestStore_MarkRead_UnknownIDNoOp(t *testing.T) {
	s := NewStore()
	appendN(t, s, "u1", "a")

	s.MarkRead("u1", "no-such-id")
	s.MarkRead("other-user", "no-such-id")

	if got := s.UnreadCount("u1"); got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}
}

func TestStore_MarkAllReadIdempotent(t *testing.T) {
	s := NewStore()
	appendN(t, s, "u1", "a", "b", "c")

	s.MarkAllRead("u1")
	first := s.List("u1", 0)

	s.MarkAllRead("u1")
	second := s.List("u1", 0)

	if len(first) != len(second) {
		t.Fatalf("list length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Read != second[i].Read {
			t.Errorf("record %d changed between calls", i)
		}
	}
	if got := s.UnreadCount("u1"); got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}
}

func TestStore_RemoveAbsentIDNoOp(t *testing.T) {
	s := NewStore()
	appendN(t, s, "u1", "a", "b")

	before := s.List("u1", 0)
	s.Remove("u1", "absent-id")
	after := s.List("u1", 0)

	if len(before) != len(after) {
		t.Fatalf("list length changed: %d vs %d", len(before), len(after))
	}
	if got := s.UnreadCount("u1"); got != 2 {
		t.Errorf("unread = %d, want 2", got)
	}
}

func TestStore_RemoveDecrementsOnlyUnread(t *testing.T) {
	s := NewStore()
	ns := appendN(t, s, "u1", "a", "b")

	s.MarkRead("u1", ns[0].ID)
	s.Remove("u1", ns[0].ID) // read record: no decrement
	if got := s.UnreadCount("u1"); got != 1 {
		t.Errorf("unread after removing read record = %d, want 1", got)
	}

	s.Remove("u1", ns[1].ID) // unread record: decrement
	if got := s.UnreadCount("u1"); got != 0 {
		t.Errorf("unread after removing unread record = %d, want 0", got)
	}
	if got := len(s.List("u1", 0)); got != 0 {
		t.Errorf("list length = %d, want 0", got)
	}
}

func TestStore_ClearAfterAppends(t *testing.T) {
	s := NewStore()
	appendN(t, s, "u1", "a", "b", "c")

	s.Clear("u1")
	if got := len(s.List("u1", 0)); got != 0 {
		t.Errorf("list length = %d, want 0", got)
	}
	if got := s.UnreadCount("u1"); got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}
}

func TestStore_IdentityFieldsImmutable(t *testing.T) {
	s := NewStore()
	ns := appendN(t, s, "u1", "a", "b")
	id, ts := ns[0].ID, ns[0].Timestamp

	s.MarkRead("u1", ns[0].ID)
	s.MarkAllRead("u1")
	s.Remove("u1", ns[1].ID)

	// Mutating a returned copy must not touch the stored record.
	snapshot := s.List("u1", 0)
	snapshot[0].ID = "tampered"
	snapshot[0].Read = false

	list := s.List("u1", 0)
	if list[0].ID != id {
		t.Errorf("id changed: %q -> %q", id, list[0].ID)
	}
	if !list[0].Timestamp.Equal(ts) {
		t.Errorf("timestamp changed: %v -> %v", ts, list[0].Timestamp)
	}
	if !list[0].Read {
		t.Error("read flag reverted by external mutation")
	}
}

func TestStore_UsersIsolated(t *testing.T) {
	s := NewStore()
	appendN(t, s, "u1", "a")
	appendN(t, s, "u2", "b", "c")

	if got := len(s.List("u1", 0)); got != 1 {
		t.Errorf("u1 list length = %d, want 1", got)
	}
	if got := len(s.List("u2", 0)); got != 2 {
		t.Errorf("u2 list length = %d, want 2", got)
	}

	s.Clear("u1")
	if got := s.UnreadCount("u2"); got != 2 {
		t.Errorf("u2 unread = %d, want 2 after clearing u1", got)
	}
}

func TestStore_ListLimit(t *testing.T) {
	s := NewStore()
	appendN(t, s, "u1", "a", "b", "c", "d")

	if got := len(s.List("u1", 2)); got != 2 {
		t.Errorf("limited list length = %d, want 2", got)
	}
	if got := len(s.List("u1", 10)); got != 4 {
		t.Errorf("over-limit list length = %d, want 4", got)
	}
}

func TestStore_DefaultPreferences(t *testing.T) {
	s := NewStore()
	prefs := s.Preferences("u1")

	for _, key := range []string{
		PrefEmail, PrefBrowser,
		string(CategoryAppointments), string(CategoryPrescriptions),
		string(CategoryLabResults), string(CategoryBilling), string(CategorySystem),
	} {
		if !prefs[key] {
			t.Errorf("default preference %q = false, want true", key)
		}
	}
}

func TestStore_UpdatePreferencesPartial(t *testing.T) {
	s := NewStore()
	s.UpdatePreferences("u1", map[string]bool{PrefEmail: false, "unknown_key": true})

	if s.Enabled("u1", PrefEmail) {
		t.Error("email preference should be disabled")
	}
	if !s.Enabled("u1", PrefBrowser) {
		t.Error("browser preference should remain enabled")
	}
	// Unknown keys are stored but inert.
	if !s.Enabled("u1", "unknown_key") {
		t.Error("unknown key should round-trip")
	}

	// Last writer wins.
	s.UpdatePreferences("u1", map[string]bool{PrefEmail: true})
	if !s.Enabled("u1", PrefEmail) {
		t.Error("email preference should be re-enabled")
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	appendN(t, s, "u1", "a")
	s.UpdatePreferences("u1", map[string]bool{PrefEmail: false})

	s.Reset()

	if got := len(s.List("u1", 0)); got != 0 {
		t.Errorf("list length = %d, want 0 after reset", got)
	}
	if !s.Enabled("u1", PrefEmail) {
		t.Error("preferences should be back to defaults after reset")
	}
}
