// ABOUTME: Charm KV client wrapper used as the synced remote store.
// ABOUTME: Provides locked access, read-only detection, and automatic cloud sync.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"
)

const (
	DefaultDBName = "makeweight"
	DefaultHost   = "charm.2389.dev"

	ProfileKey      = "profile"
	WeightLogPrefix = "weight_log:"
	TrackingPrefix  = "tracking:"
)

var (
	// ErrReadOnly is returned on writes while another process holds the lock.
	ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")
	// ErrNotFound is returned when no key matches.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousPrefix is returned when an ID prefix matches several keys.
	ErrAmbiguousPrefix = errors.New("ambiguous prefix")
)

// Store is the subset of *kv.KV the client needs.
type Store interface {
	Keys() ([][]byte, error)
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	IsReadOnly() bool
	Sync() error
	Reset() error
	Close() error
}

var _ Store = (*kv.KV)(nil)

// Options configures Open.
type Options struct {
	DBName   string
	Host     string
	AutoSync bool
	Logger   *log.Logger
}

// Client mirrors cut data into Charm KV.
type Client struct {
	kv       Store
	autoSync bool
	logger   *log.Logger
	mu       sync.RWMutex
}

// Open opens the Charm KV database, pulling remote data unless read-only.
func Open(opts Options) (*Client, error) {
	if opts.DBName == "" {
		opts.DBName = DefaultDBName
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}

	// Set server before opening KV
	if err := os.Setenv("CHARM_HOST", opts.Host); err != nil {
		return nil, err
	}

	db, err := kv.OpenWithDefaultsFallback(opts.DBName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	c := New(db, opts)
	// Pull remote data on startup (skip in read-only mode)
	if !db.IsReadOnly() {
		if err := db.Sync(); err != nil {
			c.logger.Warn("initial charm sync failed", "err", err)
		}
	}
	return c, nil
}

// New wraps an already-open store.
func New(store Store, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{kv: store, autoSync: opts.AutoSync, logger: logger}
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// syncIfEnabled calls Sync if autoSync is enabled. Failures are logged, the
// local write already succeeded.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		if err := c.kv.Sync(); err != nil {
			c.logger.Warn("charm sync failed", "err", err)
		}
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// set stores a value with the given key.
func (c *Client) set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}

	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// get returns the value at key or ErrNotFound.
func (c *Client) get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if string(k) == key {
			return c.kv.Get(k)
		}
	}
	return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
}

// delete removes a key. Missing keys are not an error.
func (c *Client) delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}

	if err := c.kv.Delete([]byte(key)); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// listByPrefix returns all values with keys matching the given prefix.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var results [][]byte
	prefixBytes := []byte(prefix)

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	// Filter keys by prefix and retrieve their values
	for _, key := range keys {
		if bytes.HasPrefix(key, prefixBytes) {
			val, err := c.kv.Get(key)
			if err != nil {
				return nil, err
			}
			results = append(results, val)
		}
	}

	return results, nil
}

// resolveKey finds the single key starting with typePrefix+idPrefix.
func (c *Client) resolveKey(typePrefix, idPrefix string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	searchPrefix := []byte(typePrefix + strings.ToLower(idPrefix))

	keys, err := c.kv.Keys()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, key := range keys {
		if bytes.HasPrefix(key, searchPrefix) {
			matches = append(matches, string(key))
			if len(matches) > 1 {
				return "", fmt.Errorf("%w %s: matches multiple records", ErrAmbiguousPrefix, idPrefix)
			}
		}
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%s: %w", idPrefix, ErrNotFound)
	}
	return matches[0], nil
}

// unmarshalJSON is a helper to unmarshal JSON data.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
