// Package session resolves the Asana personal access token from the
// platform credential store and turns it into a validated client handle.
package session

import (
	"context"
	"fmt"
	"log"

	"github.com/dy-sh/asana-tracker/internal/asana"
	"github.com/dy-sh/asana-tracker/internal/credential"
)

// credentialKey names the secret within the keyring service.
const credentialKey = "api-key"

// Store abstracts the platform credential store for testing.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// keyringStore backs Store with the system keyring.
type keyringStore struct{}

func (keyringStore) Get(key string) (string, error)   { return credential.Get(key) }
func (keyringStore) Set(key, value string) error      { return credential.Set(key, value) }
func (keyringStore) Delete(key string) error          { return credential.Delete(key) }

// Handle is a validated, ready-to-use API client.
type Handle struct {
	Client *asana.Client

	// User is the authenticated user's display name.
	User string
}

// ClientFactory builds an API client from a token. Injected so tests
// can point the client at a local server.
type ClientFactory func(token string) *asana.Client

// Gate mediates between the credential store and the remote service.
type Gate struct {
	store   Store
	factory ClientFactory
}

// Option configures a Gate.
type Option func(*Gate)

// WithStore overrides the credential store backend.
func WithStore(s Store) Option {
	return func(g *Gate) { g.store = s }
}

// WithClientFactory overrides how API clients are constructed.
func WithClientFactory(f ClientFactory) Option {
	return func(g *Gate) { g.factory = f }
}

// NewGate creates a Gate backed by the system keyring and the public
// Asana API unless overridden.
func NewGate(opts ...Option) *Gate {
	g := &Gate{
		store: keyringStore{},
		factory: func(token string) *asana.Client {
			return asana.NewClient(token)
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Load reads the stored token and validates it against the remote
// service. A missing token is a legitimate first-run state and returns
// (nil, nil); an invalid token returns the validation error.
func (g *Gate) Load(ctx context.Context) (*Handle, error) {
	token, err := g.store.Get(credentialKey)
	if err != nil {
		if credential.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading stored token: %w", err)
	}
	if token == "" {
		return nil, nil
	}

	return g.validate(ctx, token)
}

// Save persists the token and then validates it. The token stays
// persisted even when validation fails, so a transient network failure
// does not force the user to re-enter it; the handle is only returned
// on successful validation.
func (g *Gate) Save(ctx context.Context, token string) (*Handle, error) {
	if err := g.store.Set(credentialKey, token); err != nil {
		return nil, fmt.Errorf("storing token: %w", err)
	}

	return g.validate(ctx, token)
}

// Clear deletes the stored token. Delete failures are logged and
// swallowed; the caller-visible flow never fails.
func (g *Gate) Clear() {
	if err := g.store.Delete(credentialKey); err != nil && !credential.IsNotFound(err) {
		log.Printf("failed to delete stored token: %v", err)
	}
}

// validate performs the lightweight who-am-I call and wraps the client
// in a Handle on success.
func (g *Gate) validate(ctx context.Context, token string) (*Handle, error) {
	client := g.factory(token)
	user, err := client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("validating token: %w", err)
	}

	return &Handle{Client: client, User: user.Name}, nil
}
