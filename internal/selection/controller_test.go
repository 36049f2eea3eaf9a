package selection

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

type recorder struct {
	mu     sync.Mutex
	writes []url.Values
}

func (r *recorder) Navigate(values url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, values)
}

func (r *recorder) all() []url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]url.Values, len(r.writes))
	copy(out, r.writes)
	return out
}

func (r *recorder) last() url.Values {
	all := r.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

const quiet = 40 * time.Millisecond

func newTestController(t *testing.T, initial string) (*Controller, *recorder) {
	t.Helper()
	values, err := url.ParseQuery(initial)
	require.NoError(t, err)
	rec := &recorder{}
	c := NewController(values, rec, WithQuietPeriod(quiet))
	t.Cleanup(c.Close)
	return c, rec
}

func TestControllerInitialStateFromURL(t *testing.T) {
	c, rec := newTestController(t, "shop=shumaster")
	assert.Equal(t, "shumaster", c.State().Selected)
	assert.Equal(t, ViewList, c.State().View)
	assert.Empty(t, rec.all(), "mounting must not write the URL")
}

func TestControllerSelectWritesURL(t *testing.T) {
	c, rec := newTestController(t, "")
	c.SelectShop("shumaster", false)
	assert.Equal(t, "shumaster", rec.last().Get(ParamShop))

	c.ClearSelection()
	assert.Empty(t, rec.last().Get(ParamShop))
	assert.Len(t, rec.all(), 2)
}

func TestControllerDebounceCommitsOnce(t *testing.T) {
	c, rec := newTestController(t, "")

	c.TypeSearch("a")
	c.TypeSearch("ab")
	c.TypeSearch("abc")
	assert.Equal(t, "abc", c.Text(), "local text updates immediately")
	assert.Empty(t, c.State().Search)

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * quiet)

	writes := rec.all()
	require.Len(t, writes, 1)
	assert.Equal(t, "abc", writes[0].Get(ParamSearch))
	assert.Equal(t, "abc", c.State().Search)
}

func TestControllerSubmitBypassesDebounce(t *testing.T) {
	c, rec := newTestController(t, "")
	c.TypeSearch("슈마")
	c.SubmitSearch()

	require.Len(t, rec.all(), 1)
	assert.Equal(t, "슈마", rec.last().Get(ParamSearch))
	assert.False(t, c.SearchPending())

	time.Sleep(3 * quiet)
	assert.Len(t, rec.all(), 1, "cancelled timer must not commit again")
}

func TestControllerClearSearchCommitsImmediately(t *testing.T) {
	c, rec := newTestController(t, "q=abc")
	c.TypeSearch("abcd")
	c.ClearSearch()

	require.Len(t, rec.all(), 1)
	assert.Empty(t, rec.last().Get(ParamSearch))
	assert.Empty(t, c.Text())
}

func TestControllerTypingBackToCommittedValueCancels(t *testing.T) {
	c, rec := newTestController(t, "q=abc")
	c.TypeSearch("abcd")
	c.TypeSearch("abc")
	assert.False(t, c.SearchPending())

	time.Sleep(3 * quiet)
	assert.Empty(t, rec.all())
}

func TestControllerURLChangedDoesNotWrite(t *testing.T) {
	c, rec := newTestController(t, "q=abc")
	c.URLChanged(url.Values{ParamSearch: {"xyz"}, ParamShop: {"shumaster"}})

	assert.Equal(t, "xyz", c.Text())
	assert.Equal(t, "xyz", c.State().Search)
	assert.Equal(t, "shumaster", c.State().Selected)

	time.Sleep(3 * quiet)
	assert.Empty(t, rec.all(), "resynchronisation must not schedule a commit")
}

func TestControllerURLChangedKeepsPendingEdit(t *testing.T) {
	c, rec := newTestController(t, "")
	c.TypeSearch("draft")
	c.URLChanged(url.Values{ParamSearch: {"older"}})
	assert.Equal(t, "draft", c.Text())

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "draft", rec.last().Get(ParamSearch))
}

func TestControllerURLChangedAfterCommitFollowsURL(t *testing.T) {
	c, rec := newTestController(t, "")
	c.TypeSearch("draft")
	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, c.SearchPending())

	c.URLChanged(url.Values{ParamSearch: {"older"}})
	assert.Equal(t, "older", c.Text())
	assert.Equal(t, "older", c.State().Search)
}

func TestControllerURLChangedRacingCommitStaysInSync(t *testing.T) {
	for i := 0; i < 50; i++ {
		rec := &recorder{}
		c := NewController(url.Values{}, rec, WithQuietPeriod(time.Millisecond))

		c.TypeSearch("draft")
		time.Sleep(time.Millisecond)
		c.URLChanged(url.Values{ParamSearch: {"older"}})

		require.Eventually(t, func() bool { return !c.SearchPending() }, time.Second, time.Millisecond)
		time.Sleep(5 * time.Millisecond)
		assert.Equal(t, c.State().Search, c.Text(), "iteration %d", i)
		c.Close()
	}
}

func TestControllerToggleView(t *testing.T) {
	c, rec := newTestController(t, "shop=shumaster")

	c.ToggleView()
	assert.Equal(t, ViewMap, c.State().View)
	assert.Equal(t, "shumaster", c.State().Selected)
	assert.Empty(t, rec.all(), "LIST to MAP does not touch the URL")

	c.ClearSelection()
	assert.Equal(t, ViewMap, c.State().View, "closing the detail stays on the map")

	c.SelectShop("climbfix", false)
	c.ToggleView()
	assert.Equal(t, ViewList, c.State().View)
	assert.Empty(t, c.State().Selected)
	assert.Empty(t, rec.last().Get(ParamShop))
}

func TestControllerRegionAndReset(t *testing.T) {
	c, rec := newTestController(t, "")

	c.SelectRegion("부산")
	assert.Equal(t, "부산", rec.last().Get(ParamRegion))

	c.SelectRegion(domain.RegionAll)
	_, present := rec.last()[ParamRegion]
	assert.False(t, present, "all removes the parameter")

	c.SelectRegion("제주")
	c.TypeSearch("솔")
	c.SubmitSearch()
	before := len(rec.all())

	c.ResetFilters()
	writes := rec.all()
	require.Len(t, writes, before+1, "reset is a single write")
	assert.Empty(t, writes[len(writes)-1])
	assert.False(t, c.State().Filtered())
}

func TestControllerListener(t *testing.T) {
	var mu sync.Mutex
	var seen []State
	values := url.Values{}
	c := NewController(values, nil, WithQuietPeriod(quiet), WithListener(func(s State, _ string) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))
	defer c.Close()

	c.SelectShop("shumaster", false)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, "shumaster", seen[0].Selected)
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(quiet)
	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	assert.True(t, d.Pending())
	d.Cancel()
	assert.False(t, d.Pending())

	select {
	case <-fired:
		t.Fatal("cancelled function ran")
	case <-time.After(3 * quiet):
	}
}
