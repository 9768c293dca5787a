package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileBlacklist keeps the disallowed panel domains in memory and rewrites the
// backing JSON file on every mutation, so the on-disk copy never lags the
// in-memory one. The scale is tens of entries; a full rewrite is fine.
type FileBlacklist struct {
	path    string
	mu      sync.Mutex
	domains []string
}

func NewFileBlacklist(path string) (*FileBlacklist, error) {
	bl := &FileBlacklist{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return bl, nil
		}
		return nil, fmt.Errorf("failed to read blacklist file: %w", err)
	}
	if err := json.Unmarshal(data, &bl.domains); err != nil {
		return nil, fmt.Errorf("failed to parse blacklist file %s: %w", path, err)
	}
	for i, domain := range bl.domains {
		bl.domains[i] = NormalizeDomain(domain)
	}
	return bl, nil
}

func (bl *FileBlacklist) List() []string {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	out := make([]string, len(bl.domains))
	copy(out, bl.domains)
	return out
}

func (bl *FileBlacklist) Add(domain string) error {
	normalized := NormalizeDomain(domain)
	if normalized == "" {
		return fmt.Errorf("empty domain")
	}

	bl.mu.Lock()
	defer bl.mu.Unlock()
	for _, existing := range bl.domains {
		if existing == normalized {
			return fmt.Errorf("domain %s is already blacklisted", normalized)
		}
	}
	bl.domains = append(bl.domains, normalized)
	return bl.persist()
}

func (bl *FileBlacklist) Remove(index int) (string, error) {
	bl.mu.Lock()
	defer bl.mu.Unlock()
	if index < 0 || index >= len(bl.domains) {
		return "", fmt.Errorf("blacklist index %d out of range", index)
	}
	removed := bl.domains[index]
	bl.domains = append(bl.domains[:index], bl.domains[index+1:]...)
	if err := bl.persist(); err != nil {
		return "", err
	}
	return removed, nil
}

func (bl *FileBlacklist) Contains(domain string) bool {
	normalized := NormalizeDomain(domain)
	bl.mu.Lock()
	defer bl.mu.Unlock()
	for _, existing := range bl.domains {
		if existing == normalized {
			return true
		}
	}
	return false
}

// persist rewrites the whole file; callers hold the mutex.
func (bl *FileBlacklist) persist() error {
	data, err := json.MarshalIndent(bl.domains, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode blacklist: %w", err)
	}
	if err := os.WriteFile(bl.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blacklist file: %w", err)
	}
	return nil
}

// NormalizeDomain reduces a panel URL or host to a bare lowercase domain:
// scheme, path, port and surrounding whitespace are stripped.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if i := strings.Index(s, "://"); i != -1 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i != -1 {
		s = s[:i]
	}
	// Strip only a numeric ":port" suffix; a bare IPv6 literal like [::1]
	// keeps its colons.
	if i := strings.LastIndex(s, ":"); i != -1 {
		port := s[i+1:]
		if port != "" && strings.Trim(port, "0123456789") == "" {
			s = s[:i]
		}
	}
	return s
}
