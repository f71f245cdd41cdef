// Package collection owns the in-memory address book and its invariants.
package collection

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"addressbook/internal/addressbook/models"
)

var (
	// ErrDuplicate rejects an entry equal to an existing one under the duplicate rule.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrMissingPerson rejects an entry without both name fields.
	ErrMissingPerson = errors.New("entry has no person attached")
	// ErrIDTaken rejects an entry whose id is already in use.
	ErrIDTaken = errors.New("entry id already in use")
)

// AddResult reports the outcome of Add. Reason is set when Accepted is false.
// PersonExists is informational: the same person already has another address.
type AddResult struct {
	Accepted     bool
	Reason       error
	PersonExists bool
	Existing     *models.Address
}

// Listener is notified after every mutation, outside the data lock and in
// mutation order. Listeners may read the collection but must not mutate it.
type Listener func(models.Change)

// Collection is the ordered set of address book entries. Insertion order is
// kept for display only; identity is governed by the duplicate rule.
type Collection struct {
	// writeMu serializes mutation plus notification so listeners observe
	// changes in order.
	writeMu   sync.Mutex
	mu        sync.RWMutex
	entries   []models.Address
	listeners map[int]Listener
	nextSub   int
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{listeners: make(map[int]Listener)}
}

// Add appends addr unless it is a duplicate, has no person or reuses an id.
// A rejected add leaves the collection untouched.
func (c *Collection) Add(addr models.Address) AddResult {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	if !addr.HasPerson() {
		c.mu.Unlock()
		return AddResult{Reason: ErrMissingPerson}
	}

	dup := Check(c.entries, addr)
	if dup.IsDuplicate {
		c.mu.Unlock()
		return AddResult{Reason: ErrDuplicate, PersonExists: true, Existing: dup.ExistingMatch}
	}
	if c.indexOf(addr.ID) >= 0 {
		c.mu.Unlock()
		return AddResult{Reason: ErrIDTaken, PersonExists: dup.PersonExists}
	}

	c.entries = append(c.entries, addr)
	change := models.Change{Kind: models.ChangeAdded, Entry: &addr, Snapshot: c.snapshot()}
	listeners := c.listenerList()
	c.mu.Unlock()

	notify(listeners, change)
	return AddResult{Accepted: true, PersonExists: dup.PersonExists}
}

// Remove deletes the entry with id. Removing an unknown id is a no-op and
// reports false.
func (c *Collection) Remove(id string) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	removed := c.entries[i]
	c.entries = slices.Delete(c.entries, i, i+1)
	change := models.Change{Kind: models.ChangeRemoved, Entry: &removed, Snapshot: c.snapshot()}
	listeners := c.listenerList()
	c.mu.Unlock()

	notify(listeners, change)
	return true
}

// ReplaceAll swaps the whole content, used when loading persisted state. The
// entries are trusted and not duplicate-checked.
func (c *Collection) ReplaceAll(addrs []models.Address) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.entries = append([]models.Address{}, addrs...)
	change := models.Change{Kind: models.ChangeReplaced, Snapshot: c.snapshot()}
	listeners := c.listenerList()
	c.mu.Unlock()

	notify(listeners, change)
}

// All returns a copy of the entries in insertion order.
func (c *Collection) All() []models.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot()
}

// Get returns the entry with id.
func (c *Collection) Get(id string) (models.Address, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.entries[i], true
	}
	return models.Address{}, false
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Check runs the duplicate rule against the current entries without mutating.
func (c *Collection) Check(candidate models.Address) models.DuplicateResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Check(c.entries, candidate)
}

// GroupedByPerson partitions entries by normalized name. Groups appear in the
// order their person was first seen and take the display casing of that first
// entry; each group's addresses are sorted by street ascending.
func (c *Collection) GroupedByPerson() []models.PersonGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Group(c.entries)
}

// Group is the pure projection behind GroupedByPerson.
func Group(entries []models.Address) []models.PersonGroup {
	groups := make([]models.PersonGroup, 0)
	index := make(map[string]int)
	for _, e := range entries {
		key := personKey(e)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.PersonGroup{FirstName: e.FirstName, LastName: e.LastName})
		}
		groups[i].Addresses = append(groups[i].Addresses, e)
	}
	for i := range groups {
		slices.SortStableFunc(groups[i].Addresses, func(a, b models.Address) int {
			return strings.Compare(a.Street, b.Street)
		})
	}
	return groups
}

// Subscribe registers fn for change notifications and returns its cancel func.
func (c *Collection) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.listeners, id)
		})
	}
}

func (c *Collection) indexOf(id string) int {
	return slices.IndexFunc(c.entries, func(a models.Address) bool { return a.ID == id })
}

func (c *Collection) snapshot() []models.Address {
	return append([]models.Address{}, c.entries...)
}

func (c *Collection) listenerList() []Listener {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.listeners[id])
	}
	return out
}

func notify(listeners []Listener, change models.Change) {
	for _, fn := range listeners {
		fn(change)
	}
}
