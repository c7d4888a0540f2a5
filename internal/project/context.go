// Package project holds the shared project context passed to every task body.
package project

import (
	"sort"
	"sync"
)

// Context is the single mutable configuration store of a build session. It is
// populated from brigadier.yaml defaults and CLI flags before any task runs
// and may be changed by task bodies while they execute.
type Context struct {
	mu     sync.RWMutex
	config map[string]interface{}
	dir    string
}

// NewContext creates a Context for the project rooted at dir.
func NewContext(dir string) *Context {
	return &Context{
		config: make(map[string]interface{}),
		dir:    dir,
	}
}

// Dir returns the project directory.
func (c *Context) Dir() string {
	return c.dir
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.config[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (c *Context) String(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// Bool reports whether key holds a truthy value: true, a non-empty string
// other than "false" or "0", or a nonzero number.
func (c *Context) Bool(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	return Truthy(v)
}

// Set stores value under key.
func (c *Context) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config[key] = value
}

// Delete removes key.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.config, key)
}

// Merge copies every entry of values into the context, replacing existing
// keys.
func (c *Context) Merge(values map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range values {
		c.config[k] = v
	}
}

// Config returns a copy of the configuration.
func (c *Context) Config() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]interface{}, len(c.config))
	for k, v := range c.config {
		out[k] = v
	}
	return out
}

// Keys returns the configured keys in sorted order.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.config))
	for k := range c.config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Truthy applies the loose truth rules used for configuration flags.
func Truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != "" && val != "false" && val != "0"
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}
