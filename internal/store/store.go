// Package store persists offer requests so they can be listed, reloaded and
// rendered again later.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gompdf/offerpdf/internal/document"
)

// ErrNotFound is returned when no offer has the requested ID
var ErrNotFound = errors.New("offer not found")

// Record is a stored offer
type Record struct {
	ID        string           `json:"id"`
	Profile   string           `json:"profile,omitempty"`
	Request   document.Request `json:"request"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Summary is the listing view of a stored offer
type Summary struct {
	ID        string    `json:"id"`
	Profile   string    `json:"profile,omitempty"`
	Number    string    `json:"number"`
	Buyer     string    `json:"buyer"`
	Products  int       `json:"products"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a key-value store of offers
type Store interface {
	// Put inserts or replaces rec. An empty ID is filled by NewID.
	Put(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	// List returns offers of profile, or of every profile when empty,
	// most recently updated first.
	List(ctx context.Context, profile string) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Config selects and configures a store backend
type Config struct {
	// memory, postgres or firestore
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"databaseURL"`
	ProjectID   string `yaml:"projectID"`
	Collection  string `yaml:"collection"`
}

// Open creates the store selected by cfg.Driver
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemory(), nil
	case "postgres":
		s, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "firestore":
		s, err := NewFirestore(ctx, cfg.ProjectID, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewID returns the key an offer is stored under: its explicit ID, else its
// number made key-safe, else a random "offer_<uuid>".
func NewID(req document.Request) string {
	if id := strings.TrimSpace(req.ID); id != "" {
		return id
	}
	if n := strings.Trim(unsafeIDChars.ReplaceAllString(strings.TrimSpace(req.Number), "-"), "-"); n != "" {
		return n
	}
	return "offer_" + uuid.NewString()
}

func prepare(rec Record, now time.Time) Record {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = NewID(rec.Request)
	}
	rec.Request.ID = rec.ID
	rec.UpdatedAt = now.UTC()
	return rec
}

func summarize(rec Record) Summary {
	return Summary{
		ID:        rec.ID,
		Profile:   rec.Profile,
		Number:    rec.Request.Number,
		Buyer:     rec.Request.Buyer.Name,
		Products:  len(rec.Request.Items),
		UpdatedAt: rec.UpdatedAt,
	}
}
