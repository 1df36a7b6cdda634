package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fiam/gounidecode/unidecode"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// ClientRepo stores guests.  Phone numbers are unique.
type ClientRepo struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

// SearchKey folds a name for accent and case insensitive matching, so
// "João" and "joao" find the same client.
func SearchKey(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// NormalizePhone keeps only the digits, so "+55 (11) 99999-0000" and
// "5511999990000" are the same contact.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

const clientColumns = `id, name, phone, email, created_at, updated_at`

func scanClient(s scanner) (model.Client, error) {
	var c model.Client
	var email sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &c.Phone, &email, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	if email.Valid && email.String != "" {
		e := email.String
		c.Email = &e
	}
	return c, nil
}

// Create inserts the client and fills in its ID.  A duplicate phone
// returns ErrConflict.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
	c.Phone = NormalizePhone(c.Phone)
	const q = `INSERT INTO clients (name, name_key, phone, email) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, SearchKey(c.Name), c.Phone, c.Email)
	if err != nil {
		if isMySQLError(err, errDupEntry) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID returns ErrNotFound when the client does not exist.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
}

// GetByPhone looks a client up by normalised phone.
func (r *ClientRepo) GetByPhone(ctx context.Context, phone string) (*model.Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE phone = ?`, NormalizePhone(phone))
}

func (r *ClientRepo) getOne(ctx context.Context, q string, arg any) (*model.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindOrCreate returns the client owning c.Phone, or inserts c when the
// phone is new.  Name and email of an existing client are left alone.
func (r *ClientRepo) FindOrCreate(ctx context.Context, c *model.Client) (*model.Client, error) {
	existing, err := r.GetByPhone(ctx, c.Phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := r.Create(ctx, c); err != nil {
		if errors.Is(err, ErrConflict) {
			// lost a race with a concurrent request for the same phone
			return r.GetByPhone(ctx, c.Phone)
		}
		return nil, err
	}
	return c, nil
}

// Search matches q against the folded name or the phone.  An empty query
// lists all clients.  Results are ordered by name.
func (r *ClientRepo) Search(ctx context.Context, q string, limit int) ([]model.Client, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT ` + clientColumns + ` FROM clients`
	args := []any{}
	if q = strings.TrimSpace(q); q != "" {
		query += ` WHERE name_key LIKE ?`
		args = append(args, "%"+SearchKey(q)+"%")
		if phone := NormalizePhone(q); phone != "" {
			query += ` OR phone LIKE ?`
			args = append(args, "%"+phone+"%")
		}
	}
	query += ` ORDER BY name_key, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites name, phone and email.
func (r *ClientRepo) Update(ctx context.Context, c *model.Client) error {
	c.Phone = NormalizePhone(c.Phone)
	const q = `UPDATE clients SET name = ?, name_key = ?, phone = ?, email = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Name, SearchKey(c.Name), c.Phone, c.Email, c.ID)
	if err != nil {
		if isMySQLError(err, errDupEntry) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = r.GetByID(ctx, c.ID)
		return err
	}
	return nil
}

// Delete removes a client without reservations.  Clients referenced by a
// reservation return ErrConflict.
func (r *ClientRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		if isMySQLError(err, errRowIsReferenced) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
