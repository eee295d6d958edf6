package sources

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/proveit-app/proveit/app/analytics"
)

// Source is one outlet in the reference registry.
type Source struct {
	Name       string `yaml:"name" json:"name"`
	Bias       string `yaml:"bias" json:"bias"`
	Factuality string `yaml:"factuality" json:"factuality"`
	Trusted    bool   `yaml:"trusted" json:"trusted"`
	URL        string `yaml:"url,omitempty" json:"url,omitempty"`
}

type registryFile struct {
	Sources []Source `yaml:"sources"`
}

// Registry caches the YAML source reference table: per-outlet bias rating,
// factuality label, and trusted flag. Lookups are case-insensitive.
type Registry struct {
	path   string
	mu     sync.RWMutex
	byName map[string]Source
	list   []Source
}

var _ analytics.BiasResolver = (*Registry)(nil)

func NewRegistry(path string) *Registry {
	return &Registry{
		path:   path,
		byName: make(map[string]Source),
	}
}

// Run loads the registry file. A missing file is not an error: the registry
// stays empty and every source resolves to center.
func (r *Registry) Run() error {
	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		slog.Warn("Sources file not found, continuing with empty registry", "path", r.path)
		return nil
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read sources file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse sources file: %w", err)
	}

	byName := make(map[string]Source, len(file.Sources))
	list := make([]Source, 0, len(file.Sources))
	for i, src := range file.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return fmt.Errorf("invalid source at index %d: missing name", i)
		}
		src.Name = DisplayName(src.Name)
		src.Bias = string(analytics.ParseBiasRating(src.Bias))

		byName[strings.ToLower(src.Name)] = src
		list = append(list, src)
	}

	r.mu.Lock()
	r.byName = byName
	r.list = list
	r.mu.Unlock()

	slog.Debug("Source registry loaded", "path", r.path, "sources", len(list))
	return nil
}

// Rating resolves the bias rating for a source name.
func (r *Registry) Rating(source string) (analytics.BiasRating, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.byName[strings.ToLower(strings.TrimSpace(source))]
	if !ok {
		return analytics.BiasCenter, false
	}
	return analytics.ParseBiasRating(src.Bias), true
}

// Lookup returns the full registry entry for a source name.
func (r *Registry) Lookup(source string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.byName[strings.ToLower(strings.TrimSpace(source))]
	return src, ok
}

// All returns a copy of every registered source.
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.list))
	copy(out, r.list)
	return out
}

// Trusted returns the sources flagged as trusted.
func (r *Registry) Trusted() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, 0, len(r.list))
	for _, src := range r.list {
		if src.Trusted {
			out = append(out, src)
		}
	}
	return out
}

// Count reports the number of registered sources.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}
