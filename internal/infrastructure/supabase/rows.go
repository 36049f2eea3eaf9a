package supabase

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

var validate = validator.New()

// rowID accepts both numeric and text primary keys.
type rowID string

func (id *rowID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = rowID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = rowID(n.String())
	return nil
}

// shopRow is one element of get_shops_with_coords.
type shopRow struct {
	ID             rowID      `json:"id" validate:"required"`
	Slug           string     `json:"slug" validate:"required"`
	Name           string     `json:"name" validate:"required"`
	Address        string     `json:"address"`
	Phone          string     `json:"phone"`
	Lat            float64    `json:"lat" validate:"gte=-90,lte=90"`
	Lng            float64    `json:"lng" validate:"gte=-180,lte=180"`
	Images         []string   `json:"images"`
	Tags           []string   `json:"tags"`
	Verified       bool       `json:"is_verified"`
	LastVerifiedAt *time.Time `json:"last_verified_at"`
	Notice         string     `json:"notice"`

	Turnaround       string   `json:"turnaround"`
	TurnaroundSource string   `json:"turnaround_source"`
	ProcessSteps     []string `json:"process_steps"`
	ProcessSource    string   `json:"process_source"`
	Hours            string   `json:"business_hours"`
	HoursBreak       string   `json:"break_time"`
	HoursDetails     string   `json:"hours_details"`
	HoursLink        string   `json:"hours_link"`

	Website   string `json:"website_url"`
	Instagram string `json:"instagram_url"`
	Blog      string `json:"blog_url"`
	Naver     string `json:"naver_place_url"`
	Kakao     string `json:"kakao_channel_url"`
}

func (r shopRow) toDomain() domain.Shop {
	shop := domain.Shop{
		ID:             string(r.ID),
		Slug:           strings.TrimSpace(r.Slug),
		Name:           strings.TrimSpace(r.Name),
		Address:        strings.TrimSpace(r.Address),
		Phone:          strings.TrimSpace(r.Phone),
		Location:       domain.LatLng{Lat: r.Lat, Lng: r.Lng},
		Images:         nonEmpty(r.Images),
		Tags:           nonEmpty(r.Tags),
		Verified:       r.Verified,
		LastVerifiedAt: r.LastVerifiedAt,
		Notice:         strings.TrimSpace(r.Notice),
		Social: domain.SocialLinks{
			Website:   strings.TrimSpace(r.Website),
			Instagram: strings.TrimSpace(r.Instagram),
			Blog:      strings.TrimSpace(r.Blog),
			Naver:     strings.TrimSpace(r.Naver),
			Kakao:     strings.TrimSpace(r.Kakao),
		},
	}
	if text, src := domain.SplitSourceURL(r.Turnaround); text != "" {
		if r.TurnaroundSource != "" {
			src = r.TurnaroundSource
		}
		shop.Turnaround = &domain.Turnaround{Text: text, SourceURL: src}
	}
	if steps := nonEmpty(r.ProcessSteps); len(steps) > 0 {
		shop.Process = &domain.Process{Steps: steps, SourceURL: strings.TrimSpace(r.ProcessSource)}
	}
	if hours := strings.TrimSpace(r.Hours); hours != "" {
		shop.Hours = &domain.BusinessHours{
			Text:    hours,
			Break:   strings.TrimSpace(r.HoursBreak),
			Details: strings.TrimSpace(r.HoursDetails),
			Link:    strings.TrimSpace(r.HoursLink),
		}
	}
	return shop
}

type priceRow struct {
	ShopID      rowID  `json:"shop_id" validate:"required"`
	Service     string `json:"service_name" validate:"required"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

type regionRow struct {
	ID     rowID  `json:"id" validate:"required"`
	Region string `json:"region"`
}

type reviewRow struct {
	ShopID    rowID     `json:"shop_id" validate:"required"`
	Title     string    `json:"title" validate:"required"`
	Author    string    `json:"author"`
	Source    string    `json:"source"`
	URL       string    `json:"url" validate:"required,url"`
	CreatedAt time.Time `json:"created_at"`
}

func (r reviewRow) toDomain() domain.Review {
	return domain.Review{
		ShopID:    string(r.ShopID),
		Title:     strings.TrimSpace(r.Title),
		Author:    strings.TrimSpace(r.Author),
		Source:    strings.TrimSpace(r.Source),
		URL:       strings.TrimSpace(r.URL),
		CreatedAt: r.CreatedAt,
	}
}

type bannerRow struct {
	Placement string `json:"placement"`
	HTML      string `json:"html_content"`
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
