package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MaxImageSize caps how many bytes are read for a single image
const MaxImageSize = 8 << 20

// ErrNotImage is returned when a reference resolves to something that is not an image
var ErrNotImage = errors.New("resource is not an image")

// Image is a loaded product image or logo
type Image struct {
	Ref      string
	Data     []byte
	MimeType string
}

// IsSVG reports whether the image is an SVG document
func (i *Image) IsSVG() bool {
	return i.MimeType == "image/svg+xml"
}

// Reader returns a reader over the image bytes
func (i *Image) Reader() *bytes.Reader {
	return bytes.NewReader(i.Data)
}

// Loader resolves image references: data URLs, local paths and http(s) URLs.
// Loaded images are cached by reference; a Loader is safe for concurrent use.
type Loader struct {
	// Base directory or URL for resolving relative references
	BaseURL string

	cache     map[string]*Image
	cacheLock sync.RWMutex

	searchPaths []string

	client *http.Client
}

// NewLoader creates a new image loader
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL: baseURL,
		cache:   make(map[string]*Image),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// AddSearchPath adds a directory to search for local images
func (l *Loader) AddSearchPath(path string) {
	l.searchPaths = append(l.searchPaths, path)
}

// Load loads the image behind ref
func (l *Loader) Load(ctx context.Context, ref string) (*Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty image reference")
	}

	l.cacheLock.RLock()
	if img, ok := l.cache[ref]; ok {
		l.cacheLock.RUnlock()
		return img, nil
	}
	l.cacheLock.RUnlock()

	var (
		img *Image
		err error
	)
	if strings.HasPrefix(ref, "data:") {
		img, err = parseDataURL(ref)
	} else {
		var resolved string
		resolved, err = l.resolveURL(ref)
		if err != nil {
			return nil, err
		}
		if isRemote(resolved) {
			img, err = l.loadRemote(ctx, resolved)
		} else {
			img, err = l.loadLocal(resolved)
		}
	}
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(img.MimeType, "image/") {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotImage, shorten(ref), img.MimeType)
	}

	l.cacheLock.Lock()
	l.cache[ref] = img
	l.cacheLock.Unlock()
	return img, nil
}

// parseDataURL parses a data URL (RFC 2397).
// Examples:
//
//	data:image/png;base64,<base64>
//	data:image/svg+xml,%3Csvg...
func parseDataURL(u string) (*Image, error) {
	s := strings.TrimPrefix(u, "data:")
	meta, dataPart, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL")
	}

	mime := "application/octet-stream"
	isBase64 := false
	comps := strings.Split(meta, ";")
	if comps[0] != "" {
		mime = strings.ToLower(comps[0])
	}
	for _, c := range comps[1:] {
		if strings.EqualFold(strings.TrimSpace(c), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		d, err := base64.StdEncoding.DecodeString(dataPart)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
		data = d
	} else if d, err := url.PathUnescape(dataPart); err == nil {
		data = []byte(d)
	} else {
		data = []byte(dataPart)
	}

	return &Image{Ref: shorten(u), Data: data, MimeType: mime}, nil
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// resolveURL resolves a reference relative to the base URL
func (l *Loader) resolveURL(ref string) (string, error) {
	if isRemote(ref) || filepath.IsAbs(ref) || l.BaseURL == "" {
		return ref, nil
	}

	if !isRemote(l.BaseURL) {
		return filepath.Join(l.BaseURL, ref), nil
	}

	base, err := url.Parse(l.BaseURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

func (l *Loader) loadRemote(ctx context.Context, u string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP error: %s", u, resp.Status)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "" || mime == "application/octet-stream" {
		mime = determineMimeType(u)
	}
	if mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return &Image{Ref: u, Data: data, MimeType: mime}, nil
}

func (l *Loader) loadLocal(path string) (*Image, error) {
	data, err := readFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l.loadFromSearchPaths(path)
	}
	if err != nil {
		return nil, err
	}
	return &Image{Ref: path, Data: data, MimeType: determineMimeType(path)}, nil
}

func (l *Loader) loadFromSearchPaths(filename string) (*Image, error) {
	base := filepath.Base(filename)
	for _, dir := range l.searchPaths {
		path := filepath.Join(dir, base)
		data, err := readFile(path)
		if err != nil {
			continue
		}
		return &Image{Ref: path, Data: data, MimeType: determineMimeType(path)}, nil
	}
	return nil, fmt.Errorf("image not found: %s", filename)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image larger than %d bytes", MaxImageSize)
	}
	return data, nil
}

// determineMimeType determines the MIME type of a file from its extension
func determineMimeType(path string) string {
	if u, err := url.Parse(path); err == nil && isRemote(path) {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// shorten keeps data URLs out of error messages and logs
func shorten(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
