package selection

import (
	"net/url"
	"sync"
	"time"

	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// Navigator writes the address. It is called with the controller lock held
// and must not call back into the controller.
type Navigator interface {
	Navigate(values url.Values)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url.Values)

func (f NavigatorFunc) Navigate(values url.Values) { f(values) }

// Listener is notified after every state change, including debounced commits
// fired from a timer goroutine. text is the local search text.
type Listener func(state State, text string)

// Option customises a Controller.
type Option func(*Controller)

// WithQuietPeriod overrides DefaultQuietPeriod.
func WithQuietPeriod(d time.Duration) Option {
	return func(c *Controller) { c.debounce = NewDebouncer(d) }
}

// WithListener registers a change listener.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listener = l }
}

// Controller is the single owner of the browse state for one session.
// URL writes flow state -> Navigator only; URLChanged flows URL -> state only.
type Controller struct {
	mu       sync.Mutex
	state    State
	text     string
	editing  bool
	nav      Navigator
	debounce *Debouncer
	listener Listener
}

// NewController starts from the initial URL in list view.
func NewController(initial url.Values, nav Navigator, opts ...Option) *Controller {
	state := FromQuery(initial)
	c := &Controller{
		state: state,
		text:  state.Search,
		nav:   nav,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.debounce == nil {
		c.debounce = NewDebouncer(DefaultQuietPeriod)
	}
	if c.nav == nil {
		c.nav = NavigatorFunc(func(url.Values) {})
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns the local search text, which may be ahead of State().Search.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// SearchPending reports whether the local text holds an edit that has not
// been committed yet.
func (c *Controller) SearchPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// SelectShop selects slug, optionally switching back to the list.
func (c *Controller) SelectShop(slug string, switchToList bool) {
	c.apply(func(s State) State { return s.Select(slug, switchToList) })
}

// ClearSelection drops the selection without touching the view mode.
func (c *Controller) ClearSelection() {
	c.apply(State.Clear)
}

// ToggleView flips LIST and MAP; leaving the map clears the selection.
func (c *Controller) ToggleView() {
	c.apply(State.ToggleView)
}

// SelectRegion commits the region immediately. RegionAll removes the parameter.
func (c *Controller) SelectRegion(region domain.Region) {
	c.apply(func(s State) State { return s.WithRegion(region) })
}

// ResetFilters clears search text and region in a single URL write.
func (c *Controller) ResetFilters() {
	c.debounce.Cancel()
	c.mu.Lock()
	c.text = ""
	c.editing = false
	c.mu.Unlock()
	c.apply(State.ResetFilters)
}

// TypeSearch updates the local text now and commits it after the quiet period.
func (c *Controller) TypeSearch(text string) {
	c.mu.Lock()
	c.text = text
	c.editing = application.NormalizeSearch(text) != c.state.Search
	if c.editing {
		c.debounce.Trigger(func() { c.commitSearch(text) })
	} else {
		c.debounce.Cancel()
	}
	state, local := c.state, c.text
	c.mu.Unlock()
	c.notify(state, local)
}

// SubmitSearch commits the local text immediately (Enter or the search icon).
func (c *Controller) SubmitSearch() {
	c.debounce.Cancel()
	c.commitSearch(c.Text())
}

// ClearSearch empties the field and commits at once.
func (c *Controller) ClearSearch() {
	c.debounce.Cancel()
	c.mu.Lock()
	c.text = ""
	c.mu.Unlock()
	c.commitSearch("")
}

// URLChanged applies an external navigation (back/forward). It never writes
// the URL. Local text follows the URL only while no edit is pending; a pending
// edit is committed on top of the new state when its timer fires.
func (c *Controller) URLChanged(values url.Values) {
	next := FromQuery(values)

	c.mu.Lock()
	next.View = c.state.View
	c.state = next
	if !c.editing {
		c.text = next.Search
	}
	state, local := c.state, c.text
	c.mu.Unlock()
	c.notify(state, local)
}

// Close cancels any pending commit.
func (c *Controller) Close() {
	c.debounce.Cancel()
}

func (c *Controller) commitSearch(text string) {
	c.mu.Lock()
	// A newer keystroke owns the commit.
	if text != c.text {
		c.mu.Unlock()
		return
	}
	c.editing = false
	q := application.NormalizeSearch(text)
	if q == c.state.Search {
		c.mu.Unlock()
		return
	}
	c.state = c.state.WithSearch(q)
	c.nav.Navigate(c.state.Query())
	state, local := c.state, c.text
	c.mu.Unlock()
	c.notify(state, local)
}

func (c *Controller) apply(transition func(State) State) {
	c.mu.Lock()
	prev := c.state
	c.state = transition(prev)
	if c.state.Query().Encode() != prev.Query().Encode() {
		c.nav.Navigate(c.state.Query())
	}
	state, local := c.state, c.text
	c.mu.Unlock()
	if state != prev {
		c.notify(state, local)
	}
}

func (c *Controller) notify(state State, text string) {
	if c.listener != nil {
		c.listener(state, text)
	}
}
