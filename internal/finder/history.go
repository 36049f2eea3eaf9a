package finder

import (
	"net/url"
	"sync"

	"github.com/reedge/reedge-services/api/internal/selection"
)

// History is an in-memory address bar with back/forward. Pushing a new
// address drops every forward entry, like a browser.
type History struct {
	mu      sync.Mutex
	entries []url.Values
	index   int
}

var _ selection.Navigator = (*History)(nil)

// NewHistory starts with initial as the only entry.
func NewHistory(initial url.Values) *History {
	return &History{entries: []url.Values{cloneValues(initial)}}
}

// Navigate pushes values as the newest entry.
func (h *History) Navigate(values url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.index+1], cloneValues(values))
	h.index = len(h.entries) - 1
}

// Back moves one entry back and returns it.
func (h *History) Back() (url.Values, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == 0 {
		return nil, false
	}
	h.index--
	return cloneValues(h.entries[h.index]), true
}

// Forward moves one entry forward and returns it.
func (h *History) Forward() (url.Values, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index >= len(h.entries)-1 {
		return nil, false
	}
	h.index++
	return cloneValues(h.entries[h.index]), true
}

// Current returns the address currently shown.
func (h *History) Current() url.Values {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneValues(h.entries[h.index])
}

// Len is the number of entries, including forward ones.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
