package hook

import (
	"fmt"
	"net/http"
	"sync"
)

// Transport is an http.RoundTripper for one virtual-user session. The
// hooks run once, on the first request, and the headers they produce are
// added to every request sent through the transport.
type Transport struct {
	// Base performs the actual round trip. http.DefaultTransport if nil.
	Base http.RoundTripper

	// Hooks run in order against the session context.
	Hooks []Func

	once    sync.Once
	ctx     *Context
	hookErr error
}

// NewTransport returns a session transport running the named hooks from
// the registry.
func NewTransport(base http.RoundTripper, reg *Registry, names ...string) (*Transport, error) {
	t := &Transport{Base: base}
	for _, name := range names {
		fn, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown hook %q", name)
		}
		t.Hooks = append(t.Hooks, fn)
	}
	return t, nil
}

// Context returns the session context after the hooks have run.
func (t *Transport) Context() (*Context, error) {
	t.once.Do(t.init)
	return t.ctx, t.hookErr
}

func (t *Transport) init() {
	t.ctx = NewContext()
	for _, fn := range t.Hooks {
		if err := fn(t.ctx); err != nil {
			t.hookErr = err
			return
		}
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	c, err := t.Context()
	if err != nil {
		return nil, fmt.Errorf("session hook failed: %w", err)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	// Hook headers go out with the exact key the hook chose, so
	// "ClientId" is not sent as "Clientid".
	for k, v := range c.Headers {
		out.Header.Del(k)
		out.Header[k] = []string{v}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}
