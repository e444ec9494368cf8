package httpclient

import (
	"fmt"
	"sort"
	"sync"

	"github.com/andyle182810/shippingeasy/signature"
	"github.com/rs/zerolog"
)

// Registry holds one Client per named account (a store API key, a partner
// key, ...). All accounts share the registry's configuration and transport.
type Registry struct {
	clients     map[string]*Client
	mu          sync.RWMutex
	config      Config
	transport   *Transport
	defaultOpts []Option
}

func NewRegistry(cfg Config, logger zerolog.Logger, defaultOpts ...Option) *Registry {
	cfg = cfg.withDefaults()

	return &Registry{
		clients:     make(map[string]*Client),
		mu:          sync.RWMutex{},
		config:      cfg,
		transport:   NewTransport(cfg, nil, logger),
		defaultOpts: append([]Option{WithLogger(logger)}, defaultOpts...),
	}
}

func (r *Registry) Register(name string, creds signature.Credentials, opts ...Option) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	allOpts := make([]Option, 0, len(r.defaultOpts)+len(opts)+2)
	allOpts = append(allOpts, WithTransport(r.transport))
	allOpts = append(allOpts, r.defaultOpts...)
	allOpts = append(allOpts, WithCredentials(creds))
	allOpts = append(allOpts, opts...)

	r.clients[name] = New(r.config, allOpts...)

	return r
}

func (r *Registry) Client(name string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotRegistered, name)
	}

	return client, nil
}

func (r *Registry) MustClient(name string) *Client {
	client, err := r.Client(name)
	if err != nil {
		panic(err)
	}

	return client
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.clients[name]

	return ok
}

func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.clients[name]
	if ok {
		delete(r.clients, name)
	}

	return ok
}

// Names returns the registered account names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
