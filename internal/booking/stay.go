package booking

import "time"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Day truncates t to its calendar date and returns it as UTC midnight.
// The date is read in t's own location, so 23:30 local stays on the same
// day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &InvalidRangeError{Reason: "bad date " + s}
	}
	return t, nil
}

// NightCount returns the number of nights in [checkIn, checkOut).
func NightCount(checkIn, checkOut time.Time) (int, error) {
	in, out := Day(checkIn), Day(checkOut)
	if !out.After(in) {
		return 0, &InvalidRangeError{CheckIn: in, CheckOut: out}
	}
	return int(out.Unix()/secondsPerDay - in.Unix()/secondsPerDay), nil
}

// Nights lists every occupied night of a stay in order.  The checkout day
// is never included.
func Nights(checkIn, checkOut time.Time) ([]time.Time, error) {
	n, err := NightCount(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	in := Day(checkIn)
	nights := make([]time.Time, n)
	for i := range nights {
		nights[i] = in.AddDate(0, 0, i)
	}
	return nights, nil
}

// Overlaps reports whether two half-open stays share a night.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return Day(aIn).Before(Day(bOut)) && Day(bIn).Before(Day(aOut))
}
