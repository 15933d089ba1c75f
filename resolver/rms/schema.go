package rms

import (
	"sort"
	"strconv"
	"strings"
)

// FlatSchema is the durable output form: a stringly-typed map of scalar
// values designed to survive round-tripping through a document metadata
// store. Values are string, number or boolean; readers coerce.
type FlatSchema map[string]any

// Clone returns a shallow copy (values are scalars)
func (f FlatSchema) Clone() FlatSchema {
	out := make(FlatSchema, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// GetString coerces the value at key to a string; missing keys yield ""
func (f FlatSchema) GetString(key string) string {
	v, ok := f[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// GetInt coerces the value at key to an int; unparseable values yield 0
func (f FlatSchema) GetInt(key string) int {
	v, ok := f[key]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// GetBool coerces the value at key to a bool; anything but a true-like
// value yields false.
func (f FlatSchema) GetBool(key string) bool {
	v, ok := f[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	}
	return false
}

// Has reports whether the key is present at all
func (f FlatSchema) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// SortedKeys returns all keys in lexical order, for stable iteration
func (f FlatSchema) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
