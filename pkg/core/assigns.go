package core

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/goccy/go-json"
)

// Assigns is a thread-safe store for component view state.
// It tracks changes so the router can skip renders that would produce
// nothing new.
type Assigns struct {
	data    map[string]any
	tracker *ChangeTracker
	mu      sync.RWMutex
}

// NewAssigns creates a new assigns store.
func NewAssigns() *Assigns {
	return &Assigns{
		data:    make(map[string]any),
		tracker: NewChangeTracker(),
	}
}

// Get retrieves a value from the store.
func (a *Assigns) Get(key string) any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.data[key]
}

// GetString retrieves a string value.
func (a *Assigns) GetString(key string) string {
	if v, ok := a.Get(key).(string); ok {
		return v
	}
	return ""
}

// GetInt retrieves an int value.
func (a *Assigns) GetInt(key string) int {
	if v, ok := a.Get(key).(int); ok {
		return v
	}
	return 0
}

// GetBool retrieves a bool value.
func (a *Assigns) GetBool(key string) bool {
	if v, ok := a.Get(key).(bool); ok {
		return v
	}
	return false
}

// Set stores a value and tracks the change.
func (a *Assigns) Set(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.data[key] = value
	a.tracker.Track(key, value)
}

// SetAll sets multiple values at once.
func (a *Assigns) SetAll(values map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, value := range values {
		a.data[key] = value
		a.tracker.Track(key, value)
	}
}

// Delete removes a value from the store.
func (a *Assigns) Delete(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.data, key)
	a.tracker.Track(key, nil)
}

// Data returns a copy of all data.
func (a *Assigns) Data() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make(map[string]any, len(a.data))
	for k, v := range a.data {
		result[k] = v
	}
	return result
}

// Tracker returns the change tracker.
func (a *Assigns) Tracker() *ChangeTracker {
	return a.tracker
}

// MarkChanged manually marks a field as changed.
func (a *Assigns) MarkChanged(key string) {
	a.tracker.Force(key)
}

// ChangeTracker tracks changes in assigns between renders.
type ChangeTracker struct {
	// last hash seen for each field
	previous map[string]uint64
	// fields modified since the last GetChanged
	changed map[string]bool
	version uint64
	mu      sync.RWMutex
}

// NewChangeTracker creates a new change tracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{
		previous: make(map[string]uint64),
		changed:  make(map[string]bool),
	}
}

// Track registers a write to a field. Writing an equal value is not a change.
func (ct *ChangeTracker) Track(field string, value any) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	newHash := hashValue(value)
	if prev, ok := ct.previous[field]; !ok || prev != newHash {
		ct.changed[field] = true
	}
	ct.previous[field] = newHash
}

// Force marks a field changed regardless of its value.
func (ct *ChangeTracker) Force(field string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.changed[field] = true
}

// GetChanged returns fields that changed, sorted, and clears tracking.
func (ct *ChangeTracker) GetChanged() []string {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	changed := make([]string, 0, len(ct.changed))
	for field := range ct.changed {
		changed = append(changed, field)
	}
	sort.Strings(changed)

	ct.changed = make(map[string]bool)
	ct.version++

	return changed
}

// HasChanges returns true if there are pending changes.
func (ct *ChangeTracker) HasChanges() bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.changed) > 0
}

// Version returns how many times changes have been collected.
func (ct *ChangeTracker) Version() uint64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.version
}

// Reset clears all tracking state.
func (ct *ChangeTracker) Reset() {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.previous = make(map[string]uint64)
	ct.changed = make(map[string]bool)
	ct.version = 0
}

// hashValue calculates a fast hash of any value.
func hashValue(v any) uint64 {
	h := fnv.New64a()

	switch val := v.(type) {
	case nil:
		h.Write([]byte{0})
	case string:
		h.Write([]byte(val))
	case int:
		binary.Write(h, binary.LittleEndian, int64(val))
	case int64:
		binary.Write(h, binary.LittleEndian, val)
	case float64:
		binary.Write(h, binary.LittleEndian, val)
	case bool:
		if val {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case []any:
		for _, item := range val {
			binary.Write(h, binary.LittleEndian, hashValue(item))
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			binary.Write(h, binary.LittleEndian, hashValue(val[k]))
		}
	default:
		// structs and other composites
		data, _ := json.Marshal(val)
		h.Write(data)
	}

	return h.Sum64()
}
