package session_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dy-sh/asana-tracker/internal/asana"
	"github.com/dy-sh/asana-tracker/internal/session"
)

// memStore is an in-memory credential store for tests.
type memStore struct {
	values    map[string]string
	setErr    error
	deleteErr error
	deletes   int
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", keyring.ErrKeyNotFound
	}
	return v, nil
}

func (s *memStore) Set(key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.values, key)
	return nil
}

// newTestGate builds a Gate whose clients talk to a local server that
// accepts only the token "good".
func newTestGate(t *testing.T, store session.Store) *session.Gate {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer good" {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"errors":[{"message":"Not Authorized"}]}`)
				return
			}
			fmt.Fprint(w, `{"data":{"gid":"1","name":"Grace Hopper"}}`)
		},
	))
	t.Cleanup(srv.Close)

	return session.NewGate(
		session.WithStore(store),
		session.WithClientFactory(func(token string) *asana.Client {
			return asana.NewClient(token, asana.WithBaseURL(srv.URL))
		}),
	)
}

func TestLoadWithoutStoredTokenReturnsNilHandle(t *testing.T) {
	gate := newTestGate(t, newMemStore())

	handle, err := gate.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, handle)
}

func TestLoadValidatesStoredToken(t *testing.T) {
	store := newMemStore()
	store.values["api-key"] = "good"
	gate := newTestGate(t, store)

	handle, err := gate.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, "Grace Hopper", handle.User)
	assert.NotNil(t, handle.Client)
}

func TestLoadWithInvalidStoredTokenFails(t *testing.T) {
	store := newMemStore()
	store.values["api-key"] = "stale"
	gate := newTestGate(t, store)

	handle, err := gate.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, handle)
	assert.True(t, asana.IsAuthError(err))
}

func TestSaveReturnsHandleOnValidToken(t *testing.T) {
	store := newMemStore()
	gate := newTestGate(t, store)

	handle, err := gate.Save(context.Background(), "good")
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, "Grace Hopper", handle.User)
	assert.Equal(t, "good", store.values["api-key"])
}

func TestSaveKeepsTokenPersistedWhenValidationFails(t *testing.T) {
	store := newMemStore()
	gate := newTestGate(t, store)

	handle, err := gate.Save(context.Background(), "bad")
	require.Error(t, err)
	assert.Nil(t, handle)

	// The rejected token remains in the store so a later retry can
	// revalidate it without re-entry.
	assert.Equal(t, "bad", store.values["api-key"])
}

func TestSaveFailsWhenStoreRejectsWrite(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("keyring locked")
	gate := newTestGate(t, store)

	_, err := gate.Save(context.Background(), "good")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing token")
}

func TestClearSwallowsDeleteErrors(t *testing.T) {
	store := newMemStore()
	store.values["api-key"] = "good"
	store.deleteErr = errors.New("keyring locked")
	gate := newTestGate(t, store)

	gate.Clear()
	assert.Equal(t, 1, store.deletes)
}

func TestClearRemovesToken(t *testing.T) {
	store := newMemStore()
	store.values["api-key"] = "good"
	gate := newTestGate(t, store)

	gate.Clear()
	_, ok := store.values["api-key"]
	assert.False(t, ok)
}
