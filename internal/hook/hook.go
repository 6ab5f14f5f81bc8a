// Package hook provides the per-virtual-user hooks that a scenario engine
// runs before a session's requests, most notably the random ClientId
// header.
package hook

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ClientIDHeader is the request header set by SetClientID.
const ClientIDHeader = "ClientId"

// Context is the per-session state a scenario engine hands to a hook.
type Context struct {
	Headers map[string]string
	Vars    map[string]any
}

// NewContext returns an empty context with initialized maps.
func NewContext() *Context {
	return &Context{
		Headers: map[string]string{},
		Vars:    map[string]any{},
	}
}

// Func is a hook. It may mutate the context it is given.
type Func func(c *Context) error

// SetClientID stores a freshly generated random UUID in the ClientId
// header. It never fails.
func SetClientID(c *Context) error {
	if c.Headers == nil {
		c.Headers = map[string]string{}
	}
	c.Headers[ClientIDHeader] = uuid.New().String()
	return nil
}

// Registry maps hook names, as referenced from scenario definitions, to
// their implementations.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hooks: map[string]Func{}}
}

// Default is the registry scenario engines look hooks up in.
var Default = func() *Registry {
	r := NewRegistry()
	r.MustRegister("setClientId", SetClientID)
	return r
}()

// Register adds fn under name. Names must be unique.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("hook name is required")
	}
	if fn == nil {
		return fmt.Errorf("hook %q: nil function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.hooks[name]; exists {
		return fmt.Errorf("hook %q already registered", name)
	}
	r.hooks[name] = fn
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the hook registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.hooks[name]
	return fn, ok
}

// Run invokes the hook registered under name on c.
func (r *Registry) Run(name string, c *Context) error {
	fn, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown hook %q", name)
	}
	return fn(c)
}

// Names returns the registered hook names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
