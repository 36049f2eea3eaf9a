package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelease(t *testing.T) {
	tests := []struct {
		name  string
		start int
		dy    int
		want  int
	}{
		{name: "small upward drag holds", start: 0, dy: -99, want: 0},
		{name: "threshold upward drag opens", start: 0, dy: -100, want: 1},
		{name: "long drag moves one step", start: 0, dy: -900, want: 1},
		{name: "downward drag collapses", start: 2, dy: 150, want: 1},
		{name: "small downward drag holds", start: 1, dy: 40, want: 1},
		{name: "clamped at top", start: 2, dy: -300, want: 2},
		{name: "clamped at bottom", start: 0, dy: 300, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(120, 420, 720)
			s.Index = tt.start
			assert.Equal(t, tt.want, s.Release(tt.dy))
		})
	}
}

func TestOffsetAndExpanded(t *testing.T) {
	s := New(120, 720)
	assert.Equal(t, 120, s.Offset())
	assert.False(t, s.Expanded())

	s.Release(-DefaultThreshold)
	assert.Equal(t, 720, s.Offset())
	assert.True(t, s.Expanded())

	empty := New()
	assert.Zero(t, empty.Offset())
	assert.Zero(t, empty.Release(-500))
}

func TestCustomThreshold(t *testing.T) {
	s := &Sheet{Points: []int{0, 10, 20}, Threshold: 3}
	assert.Equal(t, 1, s.Release(-3))
	assert.Equal(t, 1, s.Release(-2))
}
