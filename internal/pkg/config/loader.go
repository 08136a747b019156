// Package config provides fail-open loaders for environment-driven settings.
//
// Every loader returns a usable value. A value that cannot be parsed or does
// not validate is replaced by the supplied default and reported through
// Result.Warning, so a single bad variable never prevents a sync from running.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading one setting.
type Result[T any] struct {
	Value T
	// Set is true when the variable was present and non-empty.
	Set             bool
	Warning         string
	FallbackApplied bool
}

// Validator checks a parsed value.
type Validator[T any] func(T) error

func load[T any](key string, def T, parse func(string) (T, error), validate Validator[T]) Result[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return Result[T]{Value: def}
	}

	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{
			Value:           def,
			Set:             true,
			Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", key, raw, err, def),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: v, Set: true}
}

// LoadEnvString reads key, falling back to def when unset or invalid.
func LoadEnvString(key, def string, validate Validator[string]) Result[string] {
	return load(key, def, func(s string) (string, error) { return s, nil }, validate)
}

// LoadEnvDuration reads a Go duration string such as "90s" or "30m".
func LoadEnvDuration(key string, def time.Duration, validate Validator[time.Duration]) Result[time.Duration] {
	return load(key, def, time.ParseDuration, validate)
}

func LoadEnvInt(key string, def int, validate Validator[int]) Result[int] {
	return load(key, def, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return n, nil
	}, validate)
}

func LoadEnvInt64(key string, def int64, validate Validator[int64]) Result[int64] {
	return load(key, def, func(s string) (int64, error) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return n, nil
	}, validate)
}

// LoadEnvBool accepts the spellings understood by strconv.ParseBool.
func LoadEnvBool(key string, def bool) Result[bool] {
	return load(key, def, func(s string) (bool, error) {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
		}
		return b, nil
	}, nil)
}
