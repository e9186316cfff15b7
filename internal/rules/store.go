package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"curator/internal/logging"
)

// exclusionsKey is the reserved category holding filename/extension
// exclusions rather than a destination folder.
const exclusionsKey = "Exclusions"

var labelSanitizer = regexp.MustCompile(`[^\w\s-]`)

var titleCaser = cases.Title(language.English)

// Store is the persisted extension-to-folder rule table plus the exclusion
// list. Every mutation is written back to disk before it returns.
type Store struct {
	path   string
	logger *slog.Logger

	mu         sync.RWMutex
	categories map[string][]string // category -> extensions
	byExt      map[string]string   // extension -> category
	exclusions []string
}

// Load reads the rule table from path, seeding and persisting the default map
// when the file does not exist yet.
func Load(path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rules path required")
	}
	s := &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "rules"),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.reset(defaultMap())
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("seed rule table: %w", err)
		}
		s.logger.Info("seeded default extension map", logging.String("path", path))
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read rule table: %w", err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rule table %s: %w", path, err)
	}
	s.reset(raw)
	s.logger.Debug("loaded extension map",
		logging.Int("categories", len(s.categories)),
		logging.Int("extensions", len(s.byExt)))
	return s, nil
}

// Lookup returns the destination category for an extension.
func (s *Store) Lookup(ext string) (string, bool) {
	ext = normalizeExt(ext)
	if ext == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.byExt[ext]
	return category, ok
}

// Record learns a new extension mapping and persists the table before
// returning. Recording an already-known extension is a no-op, so a mapping is
// learned at most once.
func (s *Store) Record(ext, category string) error {
	ext = normalizeExt(ext)
	if ext == "" {
		return errors.New("extension required")
	}
	category = SanitizeLabel(category)
	if category == "" || category == exclusionsKey {
		return fmt.Errorf("invalid category for %s", ext)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, known := s.byExt[ext]; known {
		return nil
	}
	s.categories[category] = append(s.categories[category], ext)
	s.byExt[ext] = category

	if err := s.save(); err != nil {
		// Roll the in-memory view back so memory and disk stay consistent.
		exts := s.categories[category]
		s.categories[category] = exts[:len(exts)-1]
		if len(s.categories[category]) == 0 {
			delete(s.categories, category)
		}
		delete(s.byExt, ext)
		return fmt.Errorf("persist rule table: %w", err)
	}

	s.logger.Info("learned extension mapping",
		logging.String("extension", ext),
		logging.String("category", category))
	return nil
}

// Excluded reports whether a file should never be touched, matched by exact
// lowercase filename or extension.
func (s *Store) Excluded(name, ext string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	ext = normalizeExt(ext)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.exclusions {
		if entry == name || (ext != "" && entry == ext) {
			return true
		}
	}
	return false
}

// Categories returns the known destination categories in sorted order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.categories))
	for category := range s.categories {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Extensions returns the extensions recorded for a category, sorted.
func (s *Store) Extensions(category string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exts := append([]string(nil), s.categories[category]...)
	sort.Strings(exts)
	return exts
}

// Exclusions returns the exclusion entries.
func (s *Store) Exclusions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.exclusions...)
}

// SetExclusions replaces the exclusion list and persists the table.
func (s *Store) SetExclusions(entries []string) error {
	cleaned := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			cleaned = append(cleaned, entry)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.exclusions
	s.exclusions = cleaned
	if err := s.save(); err != nil {
		s.exclusions = previous
		return fmt.Errorf("persist rule table: %w", err)
	}
	return nil
}

// Path returns the on-disk location backing the store.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) reset(raw map[string][]string) {
	s.categories = make(map[string][]string, len(raw))
	s.byExt = make(map[string]string)
	s.exclusions = nil
	for category, entries := range raw {
		if category == exclusionsKey {
			for _, entry := range entries {
				entry = strings.ToLower(strings.TrimSpace(entry))
				if entry != "" {
					s.exclusions = append(s.exclusions, entry)
				}
			}
			continue
		}
		for _, ext := range entries {
			ext = normalizeExt(ext)
			if ext == "" {
				continue
			}
			if _, dup := s.byExt[ext]; dup {
				continue
			}
			s.categories[category] = append(s.categories[category], ext)
			s.byExt[ext] = category
		}
	}
}

// save writes the table atomically via a temp file. Callers hold the lock.
func (s *Store) save() error {
	raw := make(map[string][]string, len(s.categories)+1)
	for category, exts := range s.categories {
		sorted := append([]string(nil), exts...)
		sort.Strings(sorted)
		raw[category] = sorted
	}
	raw[exclusionsKey] = append([]string(nil), s.exclusions...)

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal rule table: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create rules directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace rule table: %w", err)
	}
	return nil
}

// SanitizeLabel turns a classifier suggestion into a filesystem-safe folder
// label: punctuation stripped, words title-cased, spaces and dashes collapsed
// to underscores.
func SanitizeLabel(label string) string {
	label = labelSanitizer.ReplaceAllString(label, "")
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	if label == strings.ToLower(label) {
		label = titleCaser.String(label)
	}
	label = strings.ReplaceAll(label, " ", "_")
	label = strings.ReplaceAll(label, "-", "_")
	return label
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
