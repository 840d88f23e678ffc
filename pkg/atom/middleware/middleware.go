// Package middleware provides reusable atom middleware: validation guards,
// rate limiting, logging observers and value transforms.
package middleware

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/yndnr/atomstore/pkg/atom"
)

// ErrRateLimited is returned by RateLimit when no token is available.
var ErrRateLimited = errors.New("middleware: rate limit exceeded")

// Validate returns a "set" guard. A non-nil error from fn aborts the set.
func Validate[T any](label string, fn func(T) error) atom.Registration[T] {
	return atom.Registration[T]{
		Label:      label,
		Operations: []atom.Operation{atom.OpSet},
		Callback: func(v T, _ atom.Operation) (atom.Result[T], error) {
			return atom.Deferred[T](), fn(v)
		},
	}
}

// RateLimit returns a "set" guard that takes one token from limiter per
// set and rejects the set with ErrRateLimited when none is available.
func RateLimit[T any](limiter *rate.Limiter) atom.Registration[T] {
	return atom.Registration[T]{
		Label:      "rate-limit",
		Operations: []atom.Operation{atom.OpSet},
		Callback: func(T, atom.Operation) (atom.Result[T], error) {
			if !limiter.Allow() {
				return atom.Deferred[T](), ErrRateLimited
			}
			return atom.Deferred[T](), nil
		},
	}
}

// Log returns a detached observer logging each value flowing through ops
// at debug level. With no ops it observes both operations. Nothing is
// detached while the logger has debug disabled.
func Log[T any](logger *slog.Logger, ops ...atom.Operation) atom.Registration[T] {
	if len(ops) == 0 {
		ops = []atom.Operation{atom.OpGet, atom.OpSet}
	}
	observe := atom.Detached(func(v T, op atom.Operation) {
		logger.Debug("atom value", "op", string(op), "value", v)
	})
	return atom.Registration[T]{
		Label:      "log",
		Operations: ops,
		Callback: func(v T, op atom.Operation) (atom.Result[T], error) {
			if !logger.Enabled(context.Background(), slog.LevelDebug) {
				return atom.Deferred[T](), nil
			}
			return observe(v, op)
		},
	}
}

// Transform returns a synchronous middleware replacing the value with
// fn(value) for op.
func Transform[T any](label string, op atom.Operation, fn func(T) T) atom.Registration[T] {
	return atom.Registration[T]{
		Label:      label,
		Operations: []atom.Operation{op},
		Callback: func(v T, _ atom.Operation) (atom.Result[T], error) {
			return atom.Transformed(fn(v)), nil
		},
	}
}
