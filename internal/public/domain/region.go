package domain

import "strings"

// Region is one of the fixed administrative regions a shop can belong to.
// The zero value means "all regions".
type Region string

// RegionAll is the implicit "no filter" choice.
const RegionAll Region = ""

// Regions lists every selectable region in display order.
var Regions = []Region{
	"서울", "경기", "인천", "부산", "대구", "광주", "대전", "울산", "세종",
	"강원", "충북", "충남", "전북", "전남", "경북", "경남", "제주",
}

var regionSet = func() map[Region]struct{} {
	set := make(map[Region]struct{}, len(Regions))
	for _, r := range Regions {
		set[r] = struct{}{}
	}
	return set
}()

// ParseRegion returns the region for input, or RegionAll with ok=false when
// input is empty or not part of the enumeration.
func ParseRegion(input string) (Region, bool) {
	r := Region(strings.TrimSpace(input))
	if r == RegionAll {
		return RegionAll, false
	}
	if _, ok := regionSet[r]; !ok {
		return RegionAll, false
	}
	return r, true
}

// Valid reports whether r is a concrete region from the enumeration.
func (r Region) Valid() bool {
	_, ok := regionSet[r]
	return ok
}

// String implements fmt.Stringer.
func (r Region) String() string {
	return string(r)
}
