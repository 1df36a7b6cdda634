package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cabin-booking/internal/booking"
)

func day(s string) time.Time {
	t, err := booking.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOccupancy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/units/3/occupancy", r.URL.Path)
		_, _ = w.Write([]byte(`{"unit_id":3,"today":"2025-03-10","blocked":["2025-03-13","2025-03-14"]}`))
	}))
	defer srv.Close()

	occ, err := New(srv.URL+"/", nil).Occupancy(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, day("2025-03-10"), occ.Today)
	assert.Equal(t, []time.Time{day("2025-03-13"), day("2025-03-14")}, occ.Blocked)

	set := occ.DateSet()
	assert.True(t, set.Contains(day("2025-03-01")))
	assert.True(t, set.Contains(day("2025-03-14")))
	assert.False(t, set.Contains(day("2025-03-15")))
}

func TestQuoteSendsSelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("unit_id"))
		assert.Equal(t, "2025-03-13", q.Get("checkin"))
		assert.Equal(t, "2025-03-16", q.Get("checkout"))
		assert.Equal(t, "2", q.Get("adults"))
		assert.Equal(t, "1", q.Get("children"))
		_, _ = w.Write([]byte(`{"unit_id":1,"total_cents":187000,"deposit_cents":93500,"nights":[{},{},{}]}`))
	}))
	defer srv.Close()

	q, err := New(srv.URL, nil).Quote(context.Background(), QuoteParams{
		UnitID: 1, CheckIn: day("2025-03-13"), CheckOut: day("2025-03-16"), Adults: 2, Children: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(187000), q.TotalCents)
	assert.Equal(t, 3, q.NightCount())
}

func TestCreateReservationConflictIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ReservationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ana", req.Name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"unit 1 is not available on 2025-03-14","code":"unavailable","night":"2025-03-14","conflict_id":7}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).CreateReservation(context.Background(), ReservationRequest{UnitID: 1, Name: "Ana"})
	var unavailable *booking.UnavailableRangeError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, day("2025-03-14"), unavailable.Night)
	assert.Equal(t, uint64(7), unavailable.ConflictID)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{http.StatusUnprocessableEntity, `{"error":"too many","code":"capacity_exceeded","limit":5}`, func(t *testing.T, err error) {
			var e *booking.CapacityExceededError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, 5, e.Limit)
		}},
		{http.StatusBadRequest, `{"error":"phone: is required","code":"validation","field":"phone"}`, func(t *testing.T, err error) {
			var e *booking.ValidationError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "phone", e.Field)
			assert.Equal(t, "is required", e.Reason)
		}},
		{http.StatusConflict, `not json`, func(t *testing.T, err error) {
			var e *booking.UnavailableRangeError
			assert.ErrorAs(t, err, &e)
		}},
		{http.StatusBadGateway, ``, func(t *testing.T, err error) {
			var e *APIError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, http.StatusBadGateway, e.Status)
		}},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		_, err := New(srv.URL, nil).Units(context.Background())
		tc.check(t, err)
		srv.Close()
	}
}
