// Package apiclient talks to the public booking API.  Error responses are
// turned back into the booking error types, so a conflict reported by the
// server looks exactly like one found before submitting.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/model"
)

// Client is safe for concurrent use.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for the API at baseURL, e.g. "https://cabins.example".
// A nil httpClient gets a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// APIError is a failure the booking error types do not cover.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Occupancy is the blocked-date list of a unit.
type Occupancy struct {
	UnitID  uint64
	Today   time.Time
	Blocked []time.Time
}

// DateSet returns the occupancy as a booking.DateSet.
func (o Occupancy) DateSet() booking.DateSet { return booking.NewDateSet(o.Today, o.Blocked) }

// QuoteParams selects a stay to price.
type QuoteParams struct {
	UnitID   uint64
	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Children int
}

// ReservationRequest is the body of POST /v1/reservations.
type ReservationRequest struct {
	UnitID   uint64 `json:"unit_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (c *Client) Units(ctx context.Context) ([]model.Unit, error) {
	var out []model.Unit
	if err := c.do(ctx, http.MethodGet, "/v1/units", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Occupancy(ctx context.Context, unitID uint64) (Occupancy, error) {
	var raw struct {
		UnitID  uint64   `json:"unit_id"`
		Today   string   `json:"today"`
		Blocked []string `json:"blocked"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/units/%d/occupancy", unitID), nil, &raw); err != nil {
		return Occupancy{}, err
	}
	occ := Occupancy{UnitID: raw.UnitID, Blocked: make([]time.Time, 0, len(raw.Blocked))}
	var err error
	if raw.Today != "" {
		if occ.Today, err = booking.ParseDate(raw.Today); err != nil {
			return Occupancy{}, fmt.Errorf("occupancy: %w", err)
		}
	}
	for _, s := range raw.Blocked {
		d, err := booking.ParseDate(s)
		if err != nil {
			return Occupancy{}, fmt.Errorf("occupancy: %w", err)
		}
		occ.Blocked = append(occ.Blocked, d)
	}
	return occ, nil
}

func (c *Client) Quote(ctx context.Context, p QuoteParams) (booking.Quote, error) {
	q := url.Values{}
	q.Set("unit_id", strconv.FormatUint(p.UnitID, 10))
	q.Set("checkin", p.CheckIn.Format(booking.DateLayout))
	q.Set("checkout", p.CheckOut.Format(booking.DateLayout))
	q.Set("adults", strconv.Itoa(p.Adults))
	q.Set("children", strconv.Itoa(p.Children))
	var out booking.Quote
	if err := c.do(ctx, http.MethodGet, "/v1/quote?"+q.Encode(), nil, &out); err != nil {
		return booking.Quote{}, err
	}
	return out, nil
}

// CreateReservation submits a booking request.  The server answers with
// a pending reservation.
func (c *Client) CreateReservation(ctx context.Context, req ReservationRequest) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.do(ctx, http.MethodPost, "/v1/reservations", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// errorBody is what handler.writeError produces.
type errorBody struct {
	Error      string `json:"error"`
	Code       string `json:"code"`
	Field      string `json:"field"`
	Night      string `json:"night"`
	ConflictID uint64 `json:"conflict_id"`
	Limit      int    `json:"limit"`
}

func decodeError(resp *http.Response) error {
	var b errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&b)

	switch b.Code {
	case "unavailable":
		e := &booking.UnavailableRangeError{ConflictID: b.ConflictID}
		if b.Night != "" {
			e.Night, _ = booking.ParseDate(b.Night)
		}
		return e
	case "capacity_exceeded":
		return &booking.CapacityExceededError{Limit: b.Limit}
	case "invalid_range":
		return &booking.InvalidRangeError{Reason: b.Error}
	case "validation":
		return &booking.ValidationError{Field: b.Field, Reason: strings.TrimPrefix(b.Error, b.Field+": ")}
	}
	if resp.StatusCode == http.StatusConflict {
		return &booking.UnavailableRangeError{}
	}
	return &APIError{Status: resp.StatusCode, Code: b.Code, Message: b.Error}
}
