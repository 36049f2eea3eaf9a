package mongo

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// GeoPointDocument は GeoJSON Point。座標は [経度, 緯度] の順。
type GeoPointDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a coordinate.
func NewGeoPoint(loc domain.LatLng) GeoPointDocument {
	return GeoPointDocument{Type: "Point", Coordinates: []float64{loc.Lng, loc.Lat}}
}

// LatLng converts back to a coordinate; malformed points yield the zero value.
func (g GeoPointDocument) LatLng() domain.LatLng {
	if len(g.Coordinates) != 2 {
		return domain.LatLng{}
	}
	return domain.LatLng{Lat: g.Coordinates[1], Lng: g.Coordinates[0]}
}

// ShopDocument は MongoDB 上での店舗スキーマを Go 構造体として表現したもの。
type ShopDocument struct {
	ID             primitive.ObjectID  `bson:"_id" yaml:"-"`
	Slug           string              `bson:"slug" yaml:"slug"`
	Name           string              `bson:"name" yaml:"name"`
	Address        string              `bson:"address,omitempty" yaml:"address"`
	Phone          string              `bson:"phone,omitempty" yaml:"phone"`
	Region         string              `bson:"region,omitempty" yaml:"region"`
	Location       GeoPointDocument    `bson:"location" yaml:"-"`
	Images         []string            `bson:"images,omitempty" yaml:"images"`
	Tags           []string            `bson:"tags,omitempty" yaml:"tags"`
	Verified       bool                `bson:"verified" yaml:"verified"`
	LastVerifiedAt *time.Time          `bson:"lastVerifiedAt,omitempty" yaml:"lastVerifiedAt"`
	Notice         string              `bson:"notice,omitempty" yaml:"notice"`
	Turnaround     *TurnaroundDocument `bson:"turnaround,omitempty" yaml:"turnaround"`
	Process        *ProcessDocument    `bson:"process,omitempty" yaml:"process"`
	Hours          *HoursDocument      `bson:"hours,omitempty" yaml:"hours"`
	Social         SocialDocument      `bson:"social,omitempty" yaml:"social"`
	SortOrder      int                 `bson:"sortOrder" yaml:"-"`
	CreatedAt      time.Time           `bson:"createdAt" yaml:"-"`
	UpdatedAt      time.Time           `bson:"updatedAt" yaml:"-"`
}

// TurnaroundDocument は所要期間の埋め込みドキュメント。
type TurnaroundDocument struct {
	Text      string `bson:"text" yaml:"text"`
	SourceURL string `bson:"sourceUrl,omitempty" yaml:"sourceUrl"`
}

// ProcessDocument は修理工程の埋め込みドキュメント。
type ProcessDocument struct {
	Steps     []string `bson:"steps" yaml:"steps"`
	SourceURL string   `bson:"sourceUrl,omitempty" yaml:"sourceUrl"`
}

// HoursDocument は営業時間の埋め込みドキュメント。
type HoursDocument struct {
	Text    string `bson:"text" yaml:"text"`
	Break   string `bson:"break,omitempty" yaml:"break"`
	Details string `bson:"details,omitempty" yaml:"details"`
	Link    string `bson:"link,omitempty" yaml:"link"`
}

// SocialDocument は SNS リンクを保持する埋め込みドキュメント。
type SocialDocument struct {
	Website   string `bson:"website,omitempty" yaml:"website"`
	Instagram string `bson:"instagram,omitempty" yaml:"instagram"`
	Blog      string `bson:"blog,omitempty" yaml:"blog"`
	Naver     string `bson:"naver,omitempty" yaml:"naver"`
	Kakao     string `bson:"kakao,omitempty" yaml:"kakao"`
}

// PriceDocument is one row of shop_prices.
type PriceDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	ShopID      primitive.ObjectID `bson:"shopId"`
	Service     string             `bson:"service"`
	Price       string             `bson:"price"`
	Description string             `bson:"description,omitempty"`
	Position    int                `bson:"position"`
}

// ReviewDocument is one row of shop_reviews.
type ReviewDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	ShopID    primitive.ObjectID `bson:"shopId"`
	Title     string             `bson:"title"`
	Author    string             `bson:"author,omitempty"`
	Source    string             `bson:"source,omitempty"`
	URL       string             `bson:"url"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// BannerDocument is one row of affiliate_products.
type BannerDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Placement string             `bson:"placement"`
	HTML      string             `bson:"html"`
	Active    bool               `bson:"active"`
}

func mapShopDocument(doc ShopDocument) domain.Shop {
	shop := domain.Shop{
		ID:             doc.ID.Hex(),
		Slug:           strings.TrimSpace(doc.Slug),
		Name:           strings.TrimSpace(doc.Name),
		Address:        strings.TrimSpace(doc.Address),
		Phone:          strings.TrimSpace(doc.Phone),
		Location:       doc.Location.LatLng(),
		Images:         append([]string(nil), doc.Images...),
		Tags:           append([]string(nil), doc.Tags...),
		Verified:       doc.Verified,
		LastVerifiedAt: doc.LastVerifiedAt,
		Notice:         strings.TrimSpace(doc.Notice),
		Social:         domain.SocialLinks(doc.Social),
	}
	if t := doc.Turnaround; t != nil && strings.TrimSpace(t.Text) != "" {
		shop.Turnaround = &domain.Turnaround{Text: strings.TrimSpace(t.Text), SourceURL: t.SourceURL}
	}
	if p := doc.Process; p != nil && len(p.Steps) > 0 {
		shop.Process = &domain.Process{Steps: append([]string(nil), p.Steps...), SourceURL: p.SourceURL}
	}
	if h := doc.Hours; h != nil && strings.TrimSpace(h.Text) != "" {
		hours := domain.BusinessHours(*h)
		shop.Hours = &hours
	}
	return shop
}

func mapReviewDocument(doc ReviewDocument) domain.Review {
	return domain.Review{
		ShopID:    doc.ShopID.Hex(),
		Title:     doc.Title,
		Author:    doc.Author,
		Source:    doc.Source,
		URL:       doc.URL,
		CreatedAt: doc.CreatedAt,
	}
}
