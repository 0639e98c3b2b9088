// Package output stores generated documents in a local directory or a
// Cloud Storage bucket.
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// ErrExists is returned when a document already exists and overwriting is disabled
var ErrExists = errors.New("document already exists")

// Sink stores a finished document under name and reports where it went
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// Config selects and configures a sink
type Config struct {
	// dir or gcs
	Kind      string `yaml:"kind"`
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Overwrite bool   `yaml:"overwrite"`
}

// Open creates the sink selected by cfg.Kind
func Open(ctx context.Context, cfg Config) (Sink, error) {
	switch strings.ToLower(cfg.Kind) {
	case "", "dir":
		return NewDir(cfg.Dir, cfg.Overwrite), nil
	case "gcs":
		s, err := NewGCS(ctx, cfg.Bucket, cfg.Prefix, cfg.Overwrite)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown output kind %q", cfg.Kind)
}

// Dir writes documents into a local directory
type Dir struct {
	Path      string
	Overwrite bool
}

// NewDir creates a directory sink. An empty path means the working directory.
func NewDir(path string, overwrite bool) *Dir {
	if path == "" {
		path = "."
	}
	return &Dir{Path: path, Overwrite: overwrite}
}

// Write stores data atomically through a temporary file in the same directory
func (d *Dir) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	dest := filepath.Join(d.Path, filepath.Base(name))

	tmp, err := os.CreateTemp(d.Path, ".offerpdf-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if d.Overwrite {
		if err := os.Rename(tmp.Name(), dest); err != nil {
			return "", fmt.Errorf("failed to move document into place: %w", err)
		}
	} else if err := os.Link(tmp.Name(), dest); err != nil {
		// fails with EEXIST when dest exists
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, dest)
		}
		return "", fmt.Errorf("failed to move document into place: %w", err)
	}
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}
	return dest, nil
}

// GCS writes documents into a Cloud Storage bucket
type GCS struct {
	client    *storage.Client
	bucket    *storage.BucketHandle
	name      string
	prefix    string
	overwrite bool
}

// NewGCS creates a bucket sink using application default credentials
func NewGCS(ctx context.Context, bucket, prefix string, overwrite bool) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket must be provided for the gcs output")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCS{
		client:    client,
		bucket:    client.Bucket(bucket),
		name:      bucket,
		prefix:    strings.Trim(prefix, "/"),
		overwrite: overwrite,
	}, nil
}

// Write uploads data. Without overwrite the upload is conditional on the
// object not existing yet.
func (g *GCS) Write(ctx context.Context, name string, data []byte) (string, error) {
	object := path.Join(g.prefix, path.Base(name))
	obj := g.bucket.Object(object)
	if !g.overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/pdf"
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		if isPreconditionFailed(err) {
			return "", fmt.Errorf("%w: gs://%s/%s", ErrExists, g.name, object)
		}
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return "", fmt.Errorf("%w: gs://%s/%s", ErrExists, g.name, object)
		}
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", g.name, object), nil
}

// Close releases the storage client
func (g *GCS) Close() error {
	return g.client.Close()
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
