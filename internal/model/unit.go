package model

import "time"

// Unit is a bookable cabin.  Rates are stored in cents and are the only
// fields staff change day to day; identity (ID, Number) never changes once
// seeded.
//
// Fields:
//
//	ID                 – primary key identifier.
//	Name               – display name shown to guests.
//	Number             – unique cabin number used on signage.
//	Description        – free text for the marketing site.
//	Capacity           – maximum guests (adults + children).
//	AllowsChildren     – when false, child counts are forced to zero.
//	WeekdayRateCents   – nightly rate Sunday–Thursday nights.
//	WeekendRateCents   – nightly rate Friday and Saturday nights.
//	IncludedAdults     – adults covered by the nightly rate (0 = all).
//	ExtraAdultFeeCents – nightly surcharge per adult above IncludedAdults.
//	ICalURL            – external channel calendar feed, empty when none.
type Unit struct {
	ID                 uint64    `json:"id"`                    // units.id
	Name               string    `json:"name"`                  // units.name
	Number             int       `json:"number"`                // units.number
	Description        string    `json:"description,omitempty"` // units.description
	Capacity           int       `json:"capacity"`              // units.capacity
	AllowsChildren     bool      `json:"allows_children"`       // units.allows_children
	WeekdayRateCents   int64     `json:"weekday_rate_cents"`    // units.weekday_rate_cents
	WeekendRateCents   int64     `json:"weekend_rate_cents"`    // units.weekend_rate_cents
	IncludedAdults     int       `json:"included_adults"`       // units.included_adults
	ExtraAdultFeeCents int64     `json:"extra_adult_fee_cents"` // units.extra_adult_fee_cents
	ICalURL            string    `json:"ical_url,omitempty"`    // units.ical_url
	CreatedAt          time.Time `json:"created_at"`            // units.created_at
	UpdatedAt          time.Time `json:"updated_at"`            // units.updated_at
}
