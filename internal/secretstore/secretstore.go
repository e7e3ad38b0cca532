// Package secretstore implements the "secret-store read by name returning
// an optional string" collaborator of spec §6, used by the Built-in AI
// provider to resolve its embedded proxy key without the core
// depending on any particular host application's configuration system.
package secretstore

import (
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Store resolves a named secret, returning ("", false) when it is absent.
// Implementations must never perform network I/O.
type Store interface {
	Lookup(name string) (string, bool)
}

// EnvStore reads secrets from the process environment, upper-cased and
// prefixed, e.g. with Prefix "gatewaycore", Lookup("builtin_proxy_key")
// reads $GATEWAYCORE_BUILTIN_PROXY_KEY.
// An optional .env file (loaded once via godotenv) seeds the environment for
// local development, mirroring how the teacher's CLI shell bootstraps
// secrets before the gateway core is constructed.
type EnvStore struct {
	Prefix string
}

var envFileOnce sync.Once

// LoadDotEnv loads path into the process environment if present. It is a
// no-op (not an error) when the file does not exist, since most deployments
// set real environment variables directly.
func LoadDotEnv(path string) error {
	var err error
	envFileOnce.Do(func() {
		loadErr := godotenv.Load(path)
		if loadErr != nil && !os.IsNotExist(loadErr) {
			err = loadErr
		}
	})
	return err
}

func (s EnvStore) Lookup(name string) (string, bool) {
	key := strings.ToUpper(name)
	if s.Prefix != "" {
		key = strings.ToUpper(s.Prefix) + "_" + key
	}
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// EmbeddedStore resolves secrets from an in-memory, build-time-injected map —
// the "embedded obfuscated blob" option spec §9 calls out. Production builds
// populate this via a linker-injected init() in the host application; it
// starts empty here since the core ships no real embedded secret.
type EmbeddedStore struct {
	values map[string]string
	mu     sync.RWMutex
}

// NewEmbeddedStore builds an EmbeddedStore seeded with an initial map (may be nil).
func NewEmbeddedStore(initial map[string]string) *EmbeddedStore {
	s := &EmbeddedStore{values: make(map[string]string, len(initial))}
	for k, v := range initial {
		s.values[k] = v
	}
	return s
}

func (s *EmbeddedStore) Lookup(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Set injects or overwrites a secret at runtime (used by build tooling or
// tests; never called from request-handling code paths).
func (s *EmbeddedStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Chain tries each Store in order, returning the first hit.
type Chain []Store

func (c Chain) Lookup(name string) (string, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}
