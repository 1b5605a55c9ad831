package notion

import (
	"encoding/json"
	"time"

	"github.com/jomei/notionapi"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

// notionapi.Date always encodes a full RFC3339 timestamp. The tables key on
// calendar days, so dates go over the wire as "2006-01-02" instead.

// dateProperty is a date-only page property value.
type dateProperty struct {
	Day string
}

func newDateProperty(t time.Time) dateProperty {
	return dateProperty{Day: domain.Day(t).Format(domain.DateLayout)}
}

func (p dateProperty) GetID() string {
	return ""
}

func (p dateProperty) GetType() notionapi.PropertyType {
	return notionapi.PropertyTypeDate
}

func (p dateProperty) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type notionapi.PropertyType `json:"type"`
		Date struct {
			Start string `json:"start"`
		} `json:"date"`
	}{
		Type: notionapi.PropertyTypeDate,
		Date: struct {
			Start string `json:"start"`
		}{Start: p.Day},
	})
}

// dateEqualsFilter matches one calendar day. Embedding PropertyFilter makes it
// a notionapi.Filter.
type dateEqualsFilter struct {
	notionapi.PropertyFilter
	Day string
}

func newDateEqualsFilter(property string, t time.Time) dateEqualsFilter {
	return dateEqualsFilter{
		PropertyFilter: notionapi.PropertyFilter{Property: property},
		Day:            domain.Day(t).Format(domain.DateLayout),
	}
}

func (f dateEqualsFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Property string `json:"property"`
		Date     struct {
			Equals string `json:"equals"`
		} `json:"date"`
	}{
		Property: f.Property,
		Date: struct {
			Equals string `json:"equals"`
		}{Equals: f.Day},
	})
}
