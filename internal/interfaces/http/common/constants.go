package common

const (
	// CatalogMaxAge is the Cache-Control max-age, in seconds, for catalog reads.
	CatalogMaxAge = 60
	// ReviewMaxAge is the Cache-Control max-age, in seconds, for review lists.
	ReviewMaxAge = 300
	// BannerMaxAge is the Cache-Control max-age, in seconds, for affiliate banners.
	BannerMaxAge = 3600
)
