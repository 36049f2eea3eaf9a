package domain

// Field names used by the fallback table.
const (
	FieldPrices     = "prices"
	FieldTurnaround = "turnaround"
	FieldProcess    = "process"
	FieldHours      = "hours"
	FieldPhone      = "phone"
	FieldReviews    = "reviews"
)

// inquiry is shown wherever a shop has not published a value.
const inquiry = "별도 문의"

var fallbacks = map[string]string{
	FieldPrices:     inquiry,
	FieldTurnaround: inquiry,
	FieldProcess:    inquiry,
	FieldHours:      inquiry,
	FieldPhone:      inquiry,
	FieldReviews:    "아직 작성된 리뷰가 없습니다.",
}

// Fallback returns the display string used when field is missing.
func Fallback(field string) string {
	if v, ok := fallbacks[field]; ok {
		return v
	}
	return inquiry
}

// OrFallback returns value, or the fallback for field when value is empty.
func OrFallback(field, value string) string {
	if value != "" {
		return value
	}
	return Fallback(field)
}
