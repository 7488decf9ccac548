package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/use-agent/filmreview/models"
	"github.com/use-agent/filmreview/scraper"
)

var (
	// ErrInvalidFilename is returned for names that could escape the
	// reviews directory or were not written by the store.
	ErrInvalidFilename = errors.New("invalid review filename")

	// ErrNotFound is returned when the review file does not exist.
	ErrNotFound = errors.New("review not stored")
)

var validFilename = regexp.MustCompile(`^[a-z0-9_-]+\.txt$`)

const rule = "============================================================"

// Store writes extracted reviews as text files, one per film.
type Store struct {
	dir string
	now func() time.Time
}

// New creates a Store rooted at dir. The directory is created on first
// write.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Filename returns the file a film's review is stored under.
func Filename(title string, year int) string {
	return fmt.Sprintf("%s_%d_review.txt", scraper.NormalizeTitle(title), year)
}

// Save writes the review of a successful extraction and returns its path.
// An existing file for the same film is replaced.
func (s *Store) Save(title string, year int, result *models.ExtractionResult) (string, error) {
	if result == nil || !result.Success {
		return "", errors.New("store: only successful extractions are saved")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("store: create dir: %w", err)
	}

	path := filepath.Join(s.dir, Filename(title, year))
	tmp, err := os.CreateTemp(s.dir, ".review-*.tmp")
	if err != nil {
		return "", fmt.Errorf("store: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(s.render(title, year, result)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store: rename: %w", err)
	}
	return path, nil
}

// render formats the header, the review body and the extraction log.
func (s *Store) render(title string, year int, r *models.ExtractionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nRECENSIONE: %s (%d)\n%s\n", rule, title, year, rule)
	fmt.Fprintf(&b, "Titolo: %s\n", deref(r.Review.Title, title))
	fmt.Fprintf(&b, "Autore: %s\n", deref(r.Review.Author, "N/D"))
	fmt.Fprintf(&b, "Data: %s\n", deref(r.Review.Date, "N/D"))
	fmt.Fprintf(&b, "URL: %s\n", r.URL)
	fmt.Fprintf(&b, "%s\n\n%s\n\n%s\n", rule, r.Review.Content, rule)
	b.WriteString("LOG ESTRAZIONE\n")
	fmt.Fprintf(&b, "Metodo: %s\n", r.Metadata.ExtractionMethod)
	fmt.Fprintf(&b, "Caratteri: %d\n", r.Metadata.ContentLength)
	fmt.Fprintf(&b, "Parole: %d\n", r.Metadata.WordCount)
	fmt.Fprintf(&b, "Tempo di elaborazione: %d ms\n", r.Metadata.ProcessingTimeMs)
	fmt.Fprintf(&b, "Estratto il: %s\n", s.now().UTC().Format(time.RFC3339))
	b.WriteString(rule + "\n")
	return b.String()
}

// List returns the stored reviews, most recently written first, without
// their content.
func (s *Store) List() ([]models.StoredReview, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []models.StoredReview{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}

	out := make([]models.StoredReview, 0, len(entries))
	mod := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if e.IsDir() || !validFilename.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mod[e.Name()] = info.ModTime()
		out = append(out, models.StoredReview{
			Filename: e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC().Format(time.RFC3339),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := mod[out[i].Filename], mod[out[j].Filename]
		if mi.Equal(mj) {
			return out[i].Filename < out[j].Filename
		}
		return mi.After(mj)
	})
	return out, nil
}

// Get reads one stored review including its content.
func (s *Store) Get(filename string) (*models.StoredReview, error) {
	if !validFilename.MatchString(filename) {
		return nil, ErrInvalidFilename
	}
	path := filepath.Join(s.dir, filename)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: stat: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read: %w", err)
	}
	return &models.StoredReview{
		Filename: filename,
		Size:     info.Size(),
		Modified: info.ModTime().UTC().Format(time.RFC3339),
		Content:  string(data),
	}, nil
}

// Count returns the number of stored reviews, or 0 if the directory cannot
// be read.
func (s *Store) Count() int {
	list, err := s.List()
	if err != nil {
		return 0
	}
	return len(list)
}

func deref(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}
