package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS offers (
	id         TEXT PRIMARY KEY,
	profile    TEXT NOT NULL DEFAULT '',
	number     TEXT NOT NULL DEFAULT '',
	buyer      TEXT NOT NULL DEFAULT '',
	products   INTEGER NOT NULL DEFAULT 0,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// Postgres stores offers in a PostgreSQL table
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

// OpenPostgres connects to dsn and creates the offers table when missing
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database URL must be provided for the postgres store")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create offers table: %w", err)
	}
	return &Postgres{db: db, now: time.Now}, nil
}

func (p *Postgres) Put(ctx context.Context, rec Record) (Record, error) {
	rec = prepare(rec, p.now())
	payload, err := json.Marshal(rec.Request)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode offer: %w", err)
	}
	s := summarize(rec)
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO offers (id, profile, number, buyer, products, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			profile = EXCLUDED.profile,
			number = EXCLUDED.number,
			buyer = EXCLUDED.buyer,
			products = EXCLUDED.products,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
		s.ID, s.Profile, s.Number, s.Buyer, s.Products, payload, s.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("failed to save offer %s: %w", rec.ID, err)
	}
	return rec, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (Record, error) {
	rec := Record{ID: id}
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT profile, payload, updated_at FROM offers WHERE id = $1`, id).
		Scan(&rec.Profile, &payload, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load offer %s: %w", id, err)
	}
	if err := json.Unmarshal(payload, &rec.Request); err != nil {
		return Record{}, fmt.Errorf("failed to decode offer %s: %w", id, err)
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context, profile string) ([]Summary, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, profile, number, buyer, products, updated_at FROM offers
		WHERE $1 = '' OR profile = $1
		ORDER BY updated_at DESC, id`, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Profile, &s.Number, &s.Buyer, &s.Products, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete offer %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
