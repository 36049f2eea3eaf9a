package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBannerRepo map[string]string

func (f fakeBannerRepo) FindMarkup(_ context.Context, placement string) (string, error) {
	markup, ok := f[placement]
	if !ok {
		return "", ErrBannerNotFound
	}
	return markup, nil
}

func TestParseBanner(t *testing.T) {
	markup := `<a href="https://link.coupang.com/a/abc" target="_blank"><img src="https://img.example.com/b.png" alt=""></a><script>alert(1)</script>`
	banner, err := ParseBanner("sidebar", markup)
	require.NoError(t, err)
	assert.Equal(t, "https://link.coupang.com/a/abc", banner.LinkURL)
	assert.Equal(t, "https://img.example.com/b.png", banner.ImageURL)
	assert.Equal(t, "sidebar", banner.Placement)
}

func TestParseBannerRejectsUnsafeURLs(t *testing.T) {
	_, err := ParseBanner("body", `<a href="javascript:alert(1)"><img src="https://img.example.com/b.png"></a>`)
	assert.Error(t, err)

	_, err = ParseBanner("body", `<p>no banner here</p>`)
	assert.Error(t, err)
}

func TestBannerQueryService(t *testing.T) {
	svc := NewBannerQueryService(fakeBannerRepo{
		"sidebar": `<a href="https://a.example.com"><img src="https://a.example.com/i.png"></a>`,
		"body":    `<div>broken</div>`,
	}, nil)

	banner, ok := svc.Placement(context.Background(), "sidebar")
	assert.True(t, ok)
	assert.Equal(t, "https://a.example.com", banner.LinkURL)

	_, ok = svc.Placement(context.Background(), "body")
	assert.False(t, ok)

	_, ok = svc.Placement(context.Background(), "missing")
	assert.False(t, ok)
}
