// Package envconfig reads required settings from the environment.
//
// Values may come from the process environment or from .env files, which
// are loaded without overriding variables already set.
package envconfig

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissing is returned when required keys are absent.
var ErrMissing = errors.New("missing configuration")

// Object is a read-only set of configuration values.
type Object struct {
	values map[string]string
}

// New returns an Object holding a copy of values.
func New(values map[string]string) *Object {
	o := &Object{values: make(map[string]string, len(values))}
	for k, v := range values {
		o.values[k] = v
	}
	return o
}

// Get returns the value for key. Unknown keys are an error rather than an
// empty string so typos surface early.
func (o *Object) Get(key string) (string, error) {
	v, ok := o.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissing, key)
	}
	return v, nil
}

// Keys returns the configured keys in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; existing variables win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadFromEnv reads keys from the environment. Every key must be set to a
// non-empty value; the error lists all that are not.
func LoadFromEnv(keys []string) (*Object, error) {
	values := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		v, ok := os.LookupEnv(k)
		if !ok || v == "" {
			missing = append(missing, k)
			continue
		}
		values[k] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return New(values), nil
}
