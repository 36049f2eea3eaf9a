package domain

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s)\]]+`)

// SplitSourceURL pulls the first URL out of a free-text description.
// Shops often paste the page they copied prices from into the description;
// the link is rendered separately and the remaining text is trimmed.
func SplitSourceURL(description string) (text, sourceURL string) {
	loc := urlPattern.FindStringIndex(description)
	if loc == nil {
		return strings.TrimSpace(description), ""
	}
	sourceURL = description[loc[0]:loc[1]]
	text = description[:loc[0]] + description[loc[1]:]
	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "()[]:-"))
	return text, sourceURL
}

// NewPriceItem builds a price line, extracting an embedded source URL.
func NewPriceItem(service, price, description string) PriceItem {
	text, src := SplitSourceURL(description)
	return PriceItem{
		Service:     strings.TrimSpace(service),
		Price:       strings.TrimSpace(price),
		Description: text,
		SourceURL:   src,
	}
}
