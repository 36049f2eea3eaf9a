// Package sheet decides where a dragged bottom sheet comes to rest.
package sheet

// DefaultThreshold is the drag distance, in pixels, needed to leave a snap point.
const DefaultThreshold = 100

// Sheet is a bottom sheet with snap offsets ordered from most collapsed to
// most open. Index is the current snap point.
type Sheet struct {
	Points    []int
	Index     int
	Threshold int
}

// New returns a sheet resting on the first point.
func New(points ...int) *Sheet {
	return &Sheet{Points: points, Threshold: DefaultThreshold}
}

// Offset returns the current snap offset, or 0 for a sheet without points.
func (s *Sheet) Offset() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[s.clamp(s.Index)]
}

// Release settles a drag of dy (negative is upward, towards more open) and
// returns the new index. Only the adjacent point is ever chosen.
func (s *Sheet) Release(dy int) int {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	switch {
	case dy <= -threshold:
		s.Index = s.clamp(s.Index + 1)
	case dy >= threshold:
		s.Index = s.clamp(s.Index - 1)
	default:
		s.Index = s.clamp(s.Index)
	}
	return s.Index
}

// Expanded reports whether the sheet is at its most open point.
func (s *Sheet) Expanded() bool {
	return len(s.Points) > 0 && s.Index == len(s.Points)-1
}

func (s *Sheet) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if n := len(s.Points); n > 0 && i >= n {
		return n - 1
	}
	return i
}
