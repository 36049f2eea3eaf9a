package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

func TestGeoPointRoundTrip(t *testing.T) {
	loc := domain.LatLng{Lat: 37.54, Lng: 127.05}
	point := NewGeoPoint(loc)
	assert.Equal(t, []float64{127.05, 37.54}, point.Coordinates)
	assert.Equal(t, loc, point.LatLng())
	assert.Equal(t, domain.LatLng{}, GeoPointDocument{}.LatLng())
}

func TestMapShopDocument(t *testing.T) {
	id := primitive.NewObjectID()
	doc := ShopDocument{
		ID:         id,
		Slug:       " shumaster ",
		Name:       "슈마스터",
		Location:   NewGeoPoint(domain.LatLng{Lat: 37.54, Lng: 127.05}),
		Turnaround: &TurnaroundDocument{Text: "  "},
		Process:    &ProcessDocument{Steps: []string{"접수", "발송"}},
		Hours:      &HoursDocument{Text: "10:00-19:00", Break: "13:00-14:00"},
		Social:     SocialDocument{Instagram: "https://instagram.com/shumaster"},
	}

	shop := mapShopDocument(doc)
	assert.Equal(t, id.Hex(), shop.ID)
	assert.Equal(t, "shumaster", shop.Slug)
	assert.Nil(t, shop.Turnaround, "blank groups are absent")
	require.NotNil(t, shop.Process)
	require.NotNil(t, shop.Hours)
	assert.Equal(t, "13:00-14:00", shop.Hours.Break)
	assert.Equal(t, "https://instagram.com/shumaster", shop.Social.Instagram)
	assert.Equal(t, domain.RegionAll, shop.Region, "region is joined separately")
}

func TestShopDocumentBSON(t *testing.T) {
	doc := ShopDocument{ID: primitive.NewObjectID(), Slug: "a", Name: "a", Location: NewGeoPoint(domain.LatLng{Lat: 1, Lng: 2})}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded ShopDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, doc.Location, decoded.Location)
	assert.Nil(t, decoded.Turnaround)
}
