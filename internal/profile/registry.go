package profile

import (
	"log/slog"
	"os"
	"strings"

	"github.com/hxabcd/sms-code-sync/internal/config"
)

// Registry maps profile names to profiles. It is built once at startup and
// read-only afterward, so lookups need no locking.
type Registry struct {
	profiles map[string]*Profile
	names    []string
}

// NewRegistry builds a registry from the configured profile definitions.
// Secret resolution prefers the SECRET_<NAME> environment variable
// (uppercased profile name) over the configured value; a profile with no
// resolvable secret is logged and skipped, not fatal.
func NewRegistry(logger *slog.Logger, defs []config.ProfileConfig) *Registry {
	r := &Registry{profiles: make(map[string]*Profile)}

	for _, def := range defs {
		if def.Name == "" {
			logger.Warn("skipping profile with empty name")
			continue
		}

		secret := os.Getenv("SECRET_" + strings.ToUpper(def.Name))
		if secret == "" {
			secret = def.Secret
		}
		if secret == "" {
			logger.Warn("no secret found for profile, skipping", "profile", def.Name)
			continue
		}

		if _, exists := r.profiles[def.Name]; exists {
			logger.Warn("duplicate profile definition, keeping first", "profile", def.Name)
			continue
		}

		r.profiles[def.Name] = New(def.Name, secret, def.Window, def.Maxlen)
		r.names = append(r.names, def.Name)
	}

	return r
}

// Get returns the profile with the given name.
func (r *Registry) Get(name string) (*Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Names returns the profile names in configuration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of loaded profiles.
func (r *Registry) Len() int { return len(r.profiles) }
