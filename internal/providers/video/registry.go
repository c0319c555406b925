package video

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider names as they appear in the registry, job rows, and usage counters.
const (
	ProviderShotstack  = "shotstack"
	ProviderBannerbear = "bannerbear"
	ProviderCreatomate = "creatomate"
	ProviderLuma       = "luma"
	ProviderRunway     = "runway"
	ProviderKling      = "kling"
	ProviderAIML       = "aimlapi"
)

// Entry describes one registered video provider: where it lives, how it is
// authenticated, and in which order the chain should try it.
type Entry struct {
	Name       string `yaml:"name"`
	BaseURL    string `yaml:"base_url"`
	ProbePath  string `yaml:"probe_path"`
	AuthHeader string `yaml:"auth_header"`
	AuthPrefix string `yaml:"auth_prefix"`
	Priority   int    `yaml:"priority"`

	// APIKey is never read from the registry file; it comes from the
	// environment or the credential store.
	APIKey string `yaml:"-"`
}

// HasCredentials reports whether the entry can be attempted at all.
func (e Entry) HasCredentials() bool {
	return strings.TrimSpace(e.APIKey) != ""
}

// Registry holds the known providers in chain priority order.
type Registry struct {
	entries []Entry
}

type registryFile struct {
	Providers []Entry `yaml:"providers"`
}

// DefaultEntries returns the compiled-in provider table. Priorities follow the
// chain order the product ships with: template renderers first (cheap,
// reliable), generative models after.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: ProviderShotstack, BaseURL: "https://api.shotstack.io/v1", ProbePath: "/render", AuthHeader: "x-api-key", Priority: 10},
		{Name: ProviderBannerbear, BaseURL: "https://api.bannerbear.com/v2", ProbePath: "/account", AuthHeader: "Authorization", AuthPrefix: "Bearer ", Priority: 20},
		{Name: ProviderCreatomate, BaseURL: "https://api.creatomate.com/v1", ProbePath: "/renders", AuthHeader: "Authorization", AuthPrefix: "Bearer ", Priority: 30},
		{Name: ProviderLuma, BaseURL: "https://api.lumalabs.ai", ProbePath: "/dream-machine/v1/generations?limit=1", AuthHeader: "Authorization", AuthPrefix: "Bearer ", Priority: 40},
		{Name: ProviderRunway, BaseURL: "https://api.dev.runwayml.com", ProbePath: "/v1/tasks", AuthHeader: "Authorization", AuthPrefix: "Bearer ", Priority: 50},
		{Name: ProviderKling, BaseURL: "https://api.klingai.com", ProbePath: "/account/costs", AuthHeader: "Authorization", AuthPrefix: "Bearer ", Priority: 60},
		{Name: ProviderAIML, BaseURL: "https://api.aimlapi.com", ProbePath: "/models", AuthHeader: "Authorization", AuthPrefix: "Bearer ", Priority: 70},
	}
}

// LoadRegistry builds the registry from the compiled-in defaults, optionally
// overridden by a YAML file, with API keys injected from the provided lookup.
// An empty path skips the file entirely.
func LoadRegistry(path string, keys map[string]string) (*Registry, error) {
	byName := make(map[string]Entry)
	order := make([]string, 0, 8)
	for _, e := range DefaultEntries() {
		byName[e.Name] = e
		order = append(order, e.Name)
	}

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("registry: read %s: %w", path, err)
		}
		var file registryFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("registry: parse %s: %w", path, err)
		}
		for _, override := range file.Providers {
			name := strings.ToLower(strings.TrimSpace(override.Name))
			if name == "" {
				return nil, fmt.Errorf("registry: provider entry without name in %s", path)
			}
			base, known := byName[name]
			if !known {
				order = append(order, name)
				base = Entry{Name: name, AuthHeader: "Authorization", AuthPrefix: "Bearer "}
			}
			if override.BaseURL != "" {
				base.BaseURL = strings.TrimRight(override.BaseURL, "/")
			}
			if override.ProbePath != "" {
				base.ProbePath = override.ProbePath
			}
			if override.AuthHeader != "" {
				base.AuthHeader = override.AuthHeader
			}
			if override.AuthPrefix != "" {
				base.AuthPrefix = override.AuthPrefix
			}
			if override.Priority != 0 {
				base.Priority = override.Priority
			}
			byName[name] = base
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, name := range order {
		e := byName[name]
		if keys != nil {
			e.APIKey = strings.TrimSpace(keys[name])
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority < entries[j].Priority
	})

	return &Registry{entries: entries}, nil
}

// Entries returns all providers in chain priority order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// WithCredentials returns only the providers that can be attempted.
func (r *Registry) WithCredentials() []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.HasCredentials() {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds a provider by name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	for _, e := range r.Entries() {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
