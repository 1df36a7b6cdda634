package booking

import (
	"time"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// NightPrice is the price of one night of a quote.
type NightPrice struct {
	Date       time.Time `json:"date"`
	Weekend    bool      `json:"weekend"`
	PriceCents int64     `json:"price_cents"`
}

// Quote is the price of a candidate stay.  It is never persisted.
type Quote struct {
	UnitID       uint64       `json:"unit_id"`
	CheckIn      time.Time    `json:"check_in"`
	CheckOut     time.Time    `json:"check_out"`
	Adults       int          `json:"adults"`
	Children     int          `json:"children"`
	Nights       []NightPrice `json:"nights"`
	TotalCents   int64        `json:"total_cents"`
	DepositCents int64        `json:"deposit_cents"`
}

// NightCount is the number of billed nights.
func (q Quote) NightCount() int { return len(q.Nights) }

// IsWeekendNight reports whether the night starting on d is billed at the
// weekend rate: Friday and Saturday nights.
func IsWeekendNight(d time.Time) bool {
	wd := Day(d).Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// Deposit returns half of total, rounded half-up to the cent.
func Deposit(totalCents int64) int64 {
	return (totalCents + 1) / 2
}

// Guests validates a guest count against the unit and returns the
// normalised counts.  Units without a child allowance get children = 0.
func Guests(unit model.Unit, adults, children int) (int, int, error) {
	if adults < 1 {
		return 0, 0, &ValidationError{Field: "adults", Reason: "at least one adult is required"}
	}
	if children < 0 {
		return 0, 0, &ValidationError{Field: "children", Reason: "must not be negative"}
	}
	if !unit.AllowsChildren {
		children = 0
	}
	if unit.Capacity > 0 && adults+children > unit.Capacity {
		return 0, 0, &CapacityExceededError{UnitID: unit.ID, Limit: unit.Capacity, Requested: adults + children}
	}
	return adults, children, nil
}

// NightlyRate returns the rate of one night for the given adult count.
func NightlyRate(unit model.Unit, night time.Time, adults int) int64 {
	rate := unit.WeekdayRateCents
	if IsWeekendNight(night) {
		rate = unit.WeekendRateCents
	}
	if unit.IncludedAdults > 0 && adults > unit.IncludedAdults {
		rate += int64(adults-unit.IncludedAdults) * unit.ExtraAdultFeeCents
	}
	return rate
}

// QuoteStay prices [checkIn, checkOut) for the unit.  The result only
// depends on its arguments; availability is checked separately.
func QuoteStay(unit model.Unit, checkIn, checkOut time.Time, adults, children int) (Quote, error) {
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}
	adults, children, err = Guests(unit, adults, children)
	if err != nil {
		return Quote{}, err
	}
	q := Quote{
		UnitID:   unit.ID,
		CheckIn:  Day(checkIn),
		CheckOut: Day(checkOut),
		Adults:   adults,
		Children: children,
		Nights:   make([]NightPrice, 0, len(nights)),
	}
	for _, n := range nights {
		price := NightlyRate(unit, n, adults)
		q.Nights = append(q.Nights, NightPrice{Date: n, Weekend: IsWeekendNight(n), PriceCents: price})
		q.TotalCents += price
	}
	q.DepositCents = Deposit(q.TotalCents)
	return q, nil
}
