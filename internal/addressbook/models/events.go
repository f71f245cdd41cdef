package models

import "time"

// ChangeEvent is the wire form of a collection change published to subscribers
// outside the process.
type ChangeEvent struct {
	Kind       ChangeKind `json:"kind"`
	EntryID    string     `json:"entry_id,omitempty"`
	Entry      *Address   `json:"entry,omitempty"`
	TotalCount int        `json:"total_count"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewChangeEvent builds the wire event for a change.
func NewChangeEvent(c Change, now time.Time) ChangeEvent {
	ev := ChangeEvent{
		Kind:       c.Kind,
		Entry:      c.Entry,
		TotalCount: len(c.Snapshot),
		OccurredAt: now,
	}
	if c.Entry != nil {
		ev.EntryID = c.Entry.ID
	}
	return ev
}
