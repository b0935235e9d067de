package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"planpilot/internal/utils"
)

// table is one immutable generation of the loaded catalog. Lookups resolve
// both canonical names and aliases through the byName index.
type table struct {
	domains []*Domain
	byName  map[string]*Domain
}

// Registry is the injected, read-mostly domain catalog. A Registry loaded
// from a file supports Reload, which re-reads the file and swaps the whole
// table atomically; in-flight turns keep seeing the generation they started
// with.
type Registry struct {
	current atomic.Pointer[table]
	path    string
	logger  utils.ExtendedLogger
}

// registryFile is the on-disk yaml layout.
type registryFile struct {
	Domains []*Domain `yaml:"domains"`
}

// NewFromDomains constructs a Registry from an in-memory domain list. Used by
// tests and by the built-in catalog.
func NewFromDomains(logger utils.ExtendedLogger, domains []*Domain) (*Registry, error) {
	tbl, err := buildTable(domains)
	if err != nil {
		return nil, err
	}
	r := &Registry{logger: logger}
	r.current.Store(tbl)
	return r, nil
}

// LoadFile reads a yaml catalog from disk and returns a Registry bound to
// that path, so Reload and the watcher can re-read it later.
func LoadFile(logger utils.ExtendedLogger, path string) (*Registry, error) {
	tbl, err := readTable(path)
	if err != nil {
		return nil, err
	}
	r := &Registry{path: path, logger: logger}
	r.current.Store(tbl)
	logger.Infof("Loaded domain registry from %s (%d domains)", path, len(tbl.domains))
	return r, nil
}

// Reload re-reads the bound file and atomically swaps in the new table. The
// old table stays valid for callers already holding domains from it. A load
// or validation failure leaves the current table untouched.
func (r *Registry) Reload() error {
	if r.path == "" {
		return fmt.Errorf("registry was not loaded from a file, nothing to reload")
	}
	tbl, err := readTable(r.path)
	if err != nil {
		return fmt.Errorf("registry reload failed: %w", err)
	}
	r.current.Store(tbl)
	r.logger.Infof("🔄 Reloaded domain registry from %s (%d domains)", r.path, len(tbl.domains))
	return nil
}

// Lookup resolves a domain by canonical name or alias, case-insensitively.
func (r *Registry) Lookup(name string) (*Domain, bool) {
	tbl := r.current.Load()
	d, ok := tbl.byName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Domains returns the current generation's domains sorted by name.
func (r *Registry) Domains() []*Domain {
	tbl := r.current.Load()
	out := make([]*Domain, len(tbl.domains))
	copy(out, tbl.domains)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the canonical domain names of the current generation.
func (r *Registry) Names() []string {
	domains := r.Domains()
	names := make([]string, len(domains))
	for i, d := range domains {
		names[i] = d.Name
	}
	return names
}

func readTable(path string) (*table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry yaml: %w", err)
	}
	return buildTable(file.Domains)
}

func buildTable(domains []*Domain) (*table, error) {
	tbl := &table{byName: make(map[string]*Domain)}
	for _, d := range domains {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(d.Name)
		if _, exists := tbl.byName[key]; exists {
			return nil, fmt.Errorf("duplicate domain name %q", d.Name)
		}
		tbl.byName[key] = d
		for _, alias := range d.Aliases {
			aliasKey := strings.ToLower(strings.TrimSpace(alias))
			if other, exists := tbl.byName[aliasKey]; exists && other != d {
				return nil, fmt.Errorf("alias %q of domain %q collides with %q", alias, d.Name, other.Name)
			}
			tbl.byName[aliasKey] = d
		}
		tbl.domains = append(tbl.domains, d)
	}
	return tbl, nil
}
