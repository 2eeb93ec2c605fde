// Package client implements the client side of the conversation protocol:
// a websocket connection to the gateway and the reconciliation engine that
// merges locally-optimistic messages with server-confirmed ones into a
// single deduplicated, ordered view.
package client

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"support-chat-service/internal/models"
)

// State is the lifecycle of one entry in the timeline.
type State int

const (
	// StatePending marks an optimistic, locally-created entry awaiting
	// server confirmation.
	StatePending State = iota
	// StateConfirmed marks an entry matched to a canonical server message.
	StateConfirmed
	// StateFailed marks a pending entry whose send was rejected; it stays
	// visible so the user can retry or remove it, and is never silently
	// converted to confirmed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	// DefaultMatchWindow bounds the content+sender match between a pending
	// entry and an arriving canonical message. Best-effort only: the
	// canonical id is the source of truth once assigned.
	DefaultMatchWindow = time.Second
	// DefaultLockTTL bounds how long an in-flight canonical id may stay
	// locked before the lock is considered abandoned.
	DefaultLockTTL = 5 * time.Second
)

// Entry is the client-side view model of one message.
type Entry struct {
	// ID is the locally-unique temporary id until confirmation, then the
	// canonical id in string form.
	ID             string
	CanonicalID    int64
	ConversationID string
	SenderID       string
	Content        string
	MessageType    models.MessageType
	AttachmentURL  string
	// CreatedAt is the server clock once confirmed, the local clock before.
	CreatedAt time.Time
	// LocalCreatedAt orders pending entries and bounds the match window.
	LocalCreatedAt time.Time
	State          State
	IsRead         bool
	FailureCode    string
}

// Timeline reconciles one user's view of their conversations. Safe for
// concurrent use; every canonical message becomes visible at most once.
type Timeline struct {
	selfID  string
	window  time.Duration
	lockTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	entries   []*Entry
	byLocalID map[string]*Entry
	confirmed map[int64]struct{}
	inflight  map[int64]time.Time
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithMatchWindow overrides the pending-match tolerance window.
func WithMatchWindow(d time.Duration) Option {
	return func(t *Timeline) { t.window = d }
}

// WithLockTTL overrides the in-flight lock auto-release bound.
func WithLockTTL(d time.Duration) Option {
	return func(t *Timeline) { t.lockTTL = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Timeline) { t.now = now }
}

// NewTimeline builds an empty timeline for the given user.
func NewTimeline(selfID string, opts ...Option) *Timeline {
	t := &Timeline{
		selfID:    selfID,
		window:    DefaultMatchWindow,
		lockTTL:   DefaultLockTTL,
		now:       time.Now,
		byLocalID: make(map[string]*Entry),
		confirmed: make(map[int64]struct{}),
		inflight:  make(map[int64]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AppendLocal records an optimistic send and returns the pending entry. An
// empty conversationID means first contact; the id is learned on
// confirmation. The entry appears in the view immediately.
func (t *Timeline) AppendLocal(conversationID, content string, messageType models.MessageType, attachmentURL string) Entry {
	now := t.now()
	entry := &Entry{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       t.selfID,
		Content:        content,
		MessageType:    messageType,
		AttachmentURL:  attachmentURL,
		CreatedAt:      now,
		LocalCreatedAt: now,
		State:          StatePending,
	}

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.byLocalID[entry.ID] = entry
	t.mu.Unlock()
	return *entry
}

// ApplyCanonical merges one server-confirmed message into the view. Returns
// false when the delivery was recognized as a duplicate and discarded.
//
// A pending entry from the same sender with identical content arriving within
// the match window is promoted in place; anything else appends a new
// confirmed entry (counterpart message, or the user's own send from another
// session).
func (t *Timeline) ApplyCanonical(msg models.Message) bool {
	cid := msg.ID

	t.mu.Lock()
	if _, dup := t.confirmed[cid]; dup {
		t.mu.Unlock()
		return false
	}
	if acquiredAt, held := t.inflight[cid]; held && t.now().Sub(acquiredAt) < t.lockTTL {
		// a concurrent delivery of the same id is already being matched
		t.mu.Unlock()
		return false
	}
	t.inflight[cid] = t.now()
	t.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	defer delete(t.inflight, cid)

	if _, dup := t.confirmed[cid]; dup {
		return false
	}

	if entry := t.matchPendingLocked(msg); entry != nil {
		delete(t.byLocalID, entry.ID)
		entry.ID = strconv.FormatInt(cid, 10)
		entry.CanonicalID = cid
		entry.ConversationID = msg.ConversationID
		entry.Content = msg.Content
		entry.MessageType = msg.MessageType
		entry.AttachmentURL = msg.AttachmentURL
		entry.CreatedAt = msg.CreatedAt
		entry.IsRead = msg.IsRead
		entry.State = StateConfirmed
	} else {
		t.entries = append(t.entries, &Entry{
			ID:             strconv.FormatInt(cid, 10),
			CanonicalID:    cid,
			ConversationID: msg.ConversationID,
			SenderID:       msg.FromID,
			Content:        msg.Content,
			MessageType:    msg.MessageType,
			AttachmentURL:  msg.AttachmentURL,
			CreatedAt:      msg.CreatedAt,
			LocalCreatedAt: t.now(),
			State:          StateConfirmed,
			IsRead:         msg.IsRead,
		})
	}

	t.confirmed[cid] = struct{}{}
	return true
}

// matchPendingLocked finds the oldest unmatched pending entry with the same
// sender identity and identical content created within the tolerance window.
// Heuristic by necessity: no canonical id is known yet.
func (t *Timeline) matchPendingLocked(msg models.Message) *Entry {
	if msg.FromID != t.selfID {
		return nil
	}
	now := t.now()
	for _, entry := range t.entries {
		if entry.State != StatePending {
			continue
		}
		if entry.Content != msg.Content || entry.MessageType != msg.MessageType {
			continue
		}
		if entry.ConversationID != "" && entry.ConversationID != msg.ConversationID {
			continue
		}
		age := now.Sub(entry.LocalCreatedAt)
		if age < 0 {
			age = -age
		}
		if age > t.window {
			continue
		}
		return entry
	}
	return nil
}

// MarkFailed transitions the pending entry to failed with the given code.
// The entry stays visible for retry or removal.
func (t *Timeline) MarkFailed(localID, code string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.byLocalID[localID]
	if !ok || entry.State != StatePending {
		return false
	}
	entry.State = StateFailed
	entry.FailureCode = code
	return true
}

// Remove drops a pending or failed entry from the view, e.g. after the user
// dismisses a failed send. Confirmed entries are not removable here.
func (t *Timeline) Remove(localID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.byLocalID[localID]
	if !ok || entry.State == StateConfirmed {
		return false
	}
	delete(t.byLocalID, localID)
	for i, e := range t.entries {
		if e == entry {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			break
		}
	}
	return true
}

// ApplyEvent routes one server event into the timeline.
func (t *Timeline) ApplyEvent(event models.ChatEvent) {
	switch event.Type {
	case models.EventNewMessage:
		if event.Message != nil {
			t.ApplyCanonical(*event.Message)
		}
	case models.EventMessageRead:
		t.markRead(event.ConversationID, event.UserID)
	case models.EventMessageDeleted:
		t.removeCanonical(event.MessageID)
	case models.EventSendError:
		if event.LocalID != "" {
			t.MarkFailed(event.LocalID, event.Code)
		}
	}
}

// markRead flags the entries the reader has now seen: everything in the
// conversation sent by someone else than the reader.
func (t *Timeline) markRead(conversationID, readerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, entry := range t.entries {
		if entry.State != StateConfirmed || entry.ConversationID != conversationID {
			continue
		}
		if entry.SenderID != readerID {
			entry.IsRead = true
		}
	}
}

// removeCanonical drops a soft-deleted message from the view. The confirmed
// id stays recorded so a late redelivery is still discarded.
func (t *Timeline) removeCanonical(canonicalID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, entry := range t.entries {
		if entry.State == StateConfirmed && entry.CanonicalID == canonicalID {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

// Messages returns the display-ordered snapshot: ascending by canonical
// timestamp with canonical ids breaking ties; pending entries sort by their
// local creation time and are expected to be superseded quickly.
func (t *Timeline) Messages() []Entry {
	t.mu.Lock()
	snapshot := make([]Entry, 0, len(t.entries))
	for _, entry := range t.entries {
		snapshot = append(snapshot, *entry)
	}
	t.mu.Unlock()

	sortEntries(snapshot)
	return snapshot
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
}

func entryLess(a, b Entry) bool {
	at, bt := a.sortTime(), b.sortTime()
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	if a.CanonicalID != b.CanonicalID {
		return a.CanonicalID < b.CanonicalID
	}
	return a.ID < b.ID
}

func (e Entry) sortTime() time.Time {
	if e.State == StateConfirmed {
		return e.CreatedAt
	}
	return e.LocalCreatedAt
}
