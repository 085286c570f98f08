package dialect

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/exprql/internal/template"
)

// Registry maps dialect names to dialects and owns the template cache the
// dialects were parsed through. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	cache    *template.Cache
	dialects map[string]*Dialect
	logger   *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	cacheSize int
	logger    *slog.Logger
	empty     bool
}

// WithCacheSize bounds the registry's template cache.
func WithCacheSize(n int) RegistryOption {
	return func(o *registryOptions) { o.cacheSize = n }
}

// WithLogger sets the logger for registration events.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(o *registryOptions) { o.logger = l }
}

// WithoutBuiltins creates a registry with no dialects registered.
func WithoutBuiltins() RegistryOption {
	return func(o *registryOptions) { o.empty = true }
}

// NewRegistry creates a registry holding the built-in dialects.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	r := &Registry{
		cache:    template.NewCache(o.cacheSize),
		dialects: make(map[string]*Dialect),
		logger:   o.logger,
	}
	if !o.empty {
		for _, d := range builtins(r.cache) {
			r.dialects[d.name] = d
		}
	}
	return r
}

// Cache returns the registry's template cache.
func (r *Registry) Cache() *template.Cache { return r.cache }

// Builder starts a dialect whose templates parse through the registry
// cache.
func (r *Registry) Builder(name string) *Builder {
	return NewBuilder(name, r.cache)
}

// Register adds d, replacing any dialect of the same name.
func (r *Registry) Register(d *Dialect) {
	r.mu.Lock()
	_, replaced := r.dialects[d.name]
	r.dialects[d.name] = d
	r.mu.Unlock()

	r.logger.Debug("dialect registered", "dialect", d.name, "replaced", replaced, "overrides", len(d.templates))
}

// Get returns the named dialect.
func (r *Registry) Get(name string) (*Dialect, error) {
	r.mu.RLock()
	d, ok := r.dialects[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownDialectError{Name: name, Known: r.Names()}
	}
	return d, nil
}

// MustGet is like Get but panics on error.
func (r *Registry) MustGet(name string) *Dialect {
	d, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Names returns the registered dialect names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.dialects))
	for n := range r.dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
