package application

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// bannerQueryService implements BannerQueryService.
type bannerQueryService struct {
	repo   BannerRepository
	logger *zap.SugaredLogger
}

// NewBannerQueryService creates a new BannerQueryService.
func NewBannerQueryService(repo BannerRepository, logger *zap.SugaredLogger) BannerQueryService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &bannerQueryService{repo: repo, logger: logger}
}

func (s *bannerQueryService) Placement(ctx context.Context, placement string) (domain.Banner, bool) {
	markup, err := s.repo.FindMarkup(ctx, placement)
	if err != nil {
		if !errors.Is(err, ErrBannerNotFound) {
			s.logger.Warnw("banner fetch failed", "placement", placement, "error", err)
		}
		return domain.Banner{}, false
	}
	banner, err := ParseBanner(placement, markup)
	if err != nil {
		s.logger.Warnw("banner markup rejected", "placement", placement, "error", err)
		return domain.Banner{}, false
	}
	return banner, true
}

// ParseBanner extracts the first anchor href and image src from affiliate
// markup. Only http(s) URLs are accepted so the markup itself is never rendered.
func ParseBanner(placement, markup string) (domain.Banner, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return domain.Banner{}, err
	}
	banner := domain.Banner{Placement: placement, Markup: markup}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.A:
				if banner.LinkURL == "" {
					banner.LinkURL = safeURL(attr(n, "href"))
				}
			case atom.Img:
				if banner.ImageURL == "" {
					banner.ImageURL = safeURL(attr(n, "src"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if banner.IsZero() {
		return domain.Banner{}, errors.New("banner markup has no usable link and image")
	}
	return banner, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func safeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
