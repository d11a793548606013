// Package secrets resolves named credentials and keeps their values
// out of logs and run records.
package secrets

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ErrNotFound is returned when a required secret is not configured in
// the store. This is a configuration error, not a test failure, but it
// still fails the step that required the secret.
var ErrNotFound = errors.New("secret not configured")

// Store resolves secret values by name. Implementations are read-only.
type Store interface {
	Lookup(name string) (string, bool)
}

// Static is an in-memory store, used for tests and as the backing type
// for file-based stores.
type Static map[string]string

func (s Static) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// FromFile loads a dotenv-format secret file into a static store.
func FromFile(filename string) (Store, error) {
	values, err := godotenv.Read(filename)
	if err != nil {
		return nil, fmt.Errorf("reading secret file: %w", err)
	}
	return Static(values), nil
}

type envStore struct {
	prefix string
}

// FromEnv returns a store backed by the process environment. A
// non-empty prefix is prepended to every lookup, so a store with
// prefix "CONVEYOR_SECRET_" resolves "LITCHI_LOGIN" from
// CONVEYOR_SECRET_LITCHI_LOGIN.
func FromEnv(prefix string) Store {
	return envStore{prefix: prefix}
}

func (e envStore) Lookup(name string) (string, bool) {
	return os.LookupEnv(e.prefix + name)
}

// Resolve resolves each named secret from the store. It fails on the
// first missing name; the error names the secret but never a value.
func Resolve(store Store, names []string) (map[string]string, error) {
	if len(names) == 0 {
		return nil, nil
	}

	resolved := make(map[string]string, len(names))
	for _, name := range names {
		value, ok := store.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("resolving secret %q: %w", name, ErrNotFound)
		}
		resolved[name] = value
	}
	return resolved, nil
}
