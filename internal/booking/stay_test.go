package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNights(t *testing.T) {
	nights, err := Nights(date("2025-03-13"), date("2025-03-16"))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date("2025-03-13"), date("2025-03-14"), date("2025-03-15")}, nights)
}

func TestNightsLengthMatchesDayDifference(t *testing.T) {
	in := date("2024-12-20")
	for days := 1; days <= 60; days++ {
		out := in.AddDate(0, 0, days)
		nights, err := Nights(in, out)
		require.NoError(t, err)
		assert.Len(t, nights, days)
		assert.NotContains(t, nights, out)
		assert.Equal(t, in, nights[0])
	}
}

func TestNightCountOverCenturies(t *testing.T) {
	n, err := NightCount(date("2026-01-01"), date("2500-01-01"))
	require.NoError(t, err)
	want := 0
	for y := 2026; y < 2500; y++ {
		want += time.Date(y, 12, 31, 0, 0, 0, 0, time.UTC).YearDay()
	}
	assert.Equal(t, want, n)
	assert.Equal(t, 173125, n)
}

func TestNightsIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	in := time.Date(2025, 7, 1, 23, 30, 0, 0, loc)
	out := time.Date(2025, 7, 3, 0, 15, 0, 0, loc)

	n, err := NightCount(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNightsRejectsEmptyOrReversedRange(t *testing.T) {
	cases := map[string][2]string{
		"same day": {"2025-05-10", "2025-05-10"},
		"reversed": {"2025-05-10", "2025-05-08"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Nights(date(c[0]), date(c[1]))
			var rangeErr *InvalidRangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Contains(t, err.Error(), "must be after")
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("28/02/2025")
	var rangeErr *InvalidRangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(date("2025-01-01"), date("2025-01-05"), date("2025-01-04"), date("2025-01-06")))
	assert.True(t, Overlaps(date("2025-01-01"), date("2025-01-05"), date("2025-01-02"), date("2025-01-03")))
	// back-to-back stays share the changeover day only
	assert.False(t, Overlaps(date("2025-01-01"), date("2025-01-05"), date("2025-01-05"), date("2025-01-07")))
	assert.False(t, Overlaps(date("2025-01-05"), date("2025-01-07"), date("2025-01-01"), date("2025-01-05")))
}
