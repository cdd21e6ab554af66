package hadoop

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Configuration is the job/cluster key-value configuration. The zero value
// is not usable; call NewConfiguration.
type Configuration struct {
	mu    sync.RWMutex
	props map[string]string
}

// NewConfiguration creates a configuration seeded with props.
func NewConfiguration(props map[string]string) *Configuration {
	c := &Configuration{props: make(map[string]string, len(props))}
	for k, v := range props {
		c.props[k] = v
	}
	return c
}

// Get returns the value for key, or "" when unset.
func (c *Configuration) Get(key string) string {
	v, _ := c.Lookup(key)
	return v
}

// Lookup returns the value for key and whether it was set.
func (c *Configuration) Lookup(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.props[key]
	return v, ok
}

// Set assigns key.
func (c *Configuration) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.props[key] = value
}

// Unset removes key.
func (c *Configuration) Unset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.props, key)
}

// GetInt parses key as an integer, returning def when unset or malformed.
func (c *Configuration) GetInt(key string, def int) int {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// GetBool parses key as a boolean. "yes" is accepted as true for the
// legacy symlink switch.
func (c *Configuration) GetBool(key string, def bool) bool {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true
	case "false", "no", "0":
		return false
	default:
		return def
	}
}

// Keys returns all set keys in sorted order.
func (c *Configuration) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.props))
	for k := range c.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of all properties.
func (c *Configuration) Snapshot() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.props))
	for k, v := range c.props {
		out[k] = v
	}
	return out
}
