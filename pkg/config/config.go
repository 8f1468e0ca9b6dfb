package config

import (
	"strconv"
	"time"
)

// Config is a flat string-keyed properties store. Keys follow the
// files.<filetype>.bucket / files.<filetype>.key / worker.* naming scheme,
// so the key space is dynamic and cannot be bound to struct fields.
type Config struct {
	conf map[string]string
}

func New() *Config {
	return &Config{conf: map[string]string{}}
}

// FromProperties builds a Config from ordered key/value pairs. Later pairs
// overwrite earlier ones.
func FromProperties(properties [][2]string) *Config {
	c := New()
	for _, prop := range properties {
		c.Put(prop[0], prop[1])
	}
	return c
}

// Get returns the raw value for key, or "" when the key is absent.
func (c *Config) Get(key string) string {
	return c.conf[key]
}

func (c *Config) Put(key, value string) {
	c.conf[key] = value
}

// GetInt parses the value for key as an integer. Missing or malformed
// values fall back to the given default.
func (c *Config) GetInt(key string, fallback int) int {
	raw, ok := c.conf[key]
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// GetSeconds interprets the value for key as a whole number of seconds.
func (c *Config) GetSeconds(key string, fallback time.Duration) time.Duration {
	raw, ok := c.conf[key]
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return time.Duration(v) * time.Second
}
