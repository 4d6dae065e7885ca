package thumbs

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"
)

const (
	// Prefix is the URL prefix thumbnails are served under.
	Prefix = "/thumbs/"

	defaultSize    = 160
	defaultQuality = 70
)

// ErrNotLocal is returned for locators that do not point into the image root.
var ErrNotLocal = errors.New("thumbs: not a local image")

// Service renders and caches square-bounded JPEG thumbnails of local catalog images.
type Service struct {
	root    string
	size    int
	quality int

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]byte
}

// New returns a service resolving locators relative to root.
func New(root string, size int) *Service {
	if size <= 0 {
		size = defaultSize
	}
	return &Service{
		root:    root,
		size:    size,
		quality: defaultQuality,
		cache:   map[string][]byte{},
	}
}

// URL returns the thumbnail URL for src, or src itself when it is remote or absolute
// and cannot be thumbnailed locally.
func URL(src string) string {
	rel, ok := localPath(src)
	if !ok {
		return src
	}
	return Prefix + rel
}

// Thumbnail returns JPEG bytes for the local locator src.
func (s *Service) Thumbnail(src string) ([]byte, error) {
	rel, ok := localPath(src)
	if !ok {
		return nil, ErrNotLocal
	}
	s.mu.RLock()
	data, hit := s.cache[rel]
	s.mu.RUnlock()
	if hit {
		return data, nil
	}
	v, err, _ := s.group.Do(rel, func() (any, error) {
		out, err := s.render(rel)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[rel] = out
		s.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Service) render(rel string) ([]byte, error) {
	img, err := imaging.Open(filepath.Join(s.root, filepath.FromSlash(rel)), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("thumbs: open %s: %w", rel, err)
	}
	thumb := imaging.Fit(img, s.size, s.size, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("thumbs: encode %s: %w", rel, err)
	}
	return buf.Bytes(), nil
}

// ServeHTTP serves GET /thumbs/<locator>.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	src := strings.TrimPrefix(r.URL.Path, Prefix)
	data, err := s.Thumbnail(src)
	if err != nil {
		if errors.Is(err, ErrNotLocal) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "thumbnail unavailable", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=604800")
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(data))
}

// localPath cleans a relative locator and rejects remote, absolute and escaping paths.
func localPath(src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" || strings.Contains(src, "://") || strings.HasPrefix(src, "//") ||
		strings.HasPrefix(src, "/") || strings.HasPrefix(src, "data:") {
		return "", false
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	clean := path.Clean(src)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	switch strings.ToLower(path.Ext(clean)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return clean, true
	}
	return "", false
}
