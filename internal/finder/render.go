package finder

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/reedge/reedge-services/api/internal/public/application"
	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// NewRenderer builds the markdown renderer for the detail sheet.
func NewRenderer(width int) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}

// detailMarkdown lays out one shop. Missing groups use the fallback table.
func detailMarkdown(shop domain.Shop) string {
	var b strings.Builder

	title := shop.Name
	if shop.Verified {
		title += " ✔"
	}
	fmt.Fprintf(&b, "## %s\n\n", title)
	if shop.Address != "" {
		fmt.Fprintf(&b, "%s\n\n", shop.Address)
	}
	fmt.Fprintf(&b, "**전화** %s\n\n", domain.OrFallback(domain.FieldPhone, shop.Phone))
	if shop.Notice != "" {
		fmt.Fprintf(&b, "> %s\n\n", shop.Notice)
	}
	if len(shop.Tags) > 0 {
		fmt.Fprintf(&b, "#%s\n\n", strings.Join(shop.Tags, " #"))
	}

	b.WriteString("### 가격\n\n")
	if shop.HasPrices() {
		for _, p := range shop.Prices {
			fmt.Fprintf(&b, "- %s: %s", p.Service, p.Price)
			if p.Description != "" {
				fmt.Fprintf(&b, " (%s)", p.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "%s\n\n", domain.Fallback(domain.FieldPrices))
	}

	b.WriteString("### 소요 기간\n\n")
	if t := shop.Turnaround; t != nil && t.Text != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Text)
	} else {
		fmt.Fprintf(&b, "%s\n\n", domain.Fallback(domain.FieldTurnaround))
	}

	b.WriteString("### 수선 과정\n\n")
	if p := shop.Process; p != nil && len(p.Steps) > 0 {
		for i, step := range p.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "%s\n\n", domain.Fallback(domain.FieldProcess))
	}

	b.WriteString("### 영업 시간\n\n")
	if h := shop.Hours; h != nil && h.Text != "" {
		b.WriteString(h.Text)
		if h.Break != "" {
			fmt.Fprintf(&b, " (휴게 %s)", h.Break)
		}
		b.WriteString("\n\n")
		for _, line := range strings.Split(h.Details, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				fmt.Fprintf(&b, "- %s\n", line)
			}
		}
	} else {
		fmt.Fprintf(&b, "%s\n\n", domain.Fallback(domain.FieldHours))
	}

	links := []struct{ label, href string }{
		{"홈페이지", shop.Social.Website},
		{"Instagram", shop.Social.Instagram},
		{"블로그", shop.Social.Blog},
		{"네이버", shop.Social.Naver},
		{"카카오", shop.Social.Kakao},
	}
	for _, l := range links {
		if l.href != "" {
			fmt.Fprintf(&b, "\n[%s](%s)", l.label, l.href)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// plotMarkers draws markers on a width x height character grid. The selected
// marker is drawn as '@', others as '*'. The grid is fitted to the markers,
// falling back to the view center when there is nothing to draw.
func plotMarkers(view application.MapView, selected string, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(".", width))
	}

	minLat, maxLat := view.Center.Lat, view.Center.Lat
	minLng, maxLng := view.Center.Lng, view.Center.Lng
	for _, m := range view.Markers {
		minLat, maxLat = math.Min(minLat, m.Lat), math.Max(maxLat, m.Lat)
		minLng, maxLng = math.Min(minLng, m.Lng), math.Max(maxLng, m.Lng)
	}
	spanLat := math.Max(maxLat-minLat, 1e-6)
	spanLng := math.Max(maxLng-minLng, 1e-6)

	place := func(lat, lng float64, mark rune) {
		x := int(math.Round((lng - minLng) / spanLng * float64(width-1)))
		y := int(math.Round((maxLat - lat) / spanLat * float64(height-1)))
		if x >= 0 && x < width && y >= 0 && y < height {
			grid[y][x] = mark
		}
	}
	for _, m := range view.Markers {
		if m.Slug != selected {
			place(m.Lat, m.Lng, '*')
		}
	}
	for _, m := range view.Markers {
		if m.Slug == selected {
			place(m.Lat, m.Lng, '@')
		}
	}

	out := make([]string, height)
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}
