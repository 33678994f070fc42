// Package filter provides generic in-memory filtering, sorting and paging
// for dashboard lists. Every call re-scans the whole collection.
package filter

import (
	"strings"
)

// Predicate reports whether an item should be kept. A nil Predicate keeps
// everything.
type Predicate[T any] func(T) bool

// Apply returns a new slice holding the items that match every predicate,
// in their original relative order.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	out := make([]T, 0, len(items))
outer:
	for _, item := range items {
		for _, p := range active {
			if !p(item) {
				continue outer
			}
		}
		out = append(out, item)
	}
	return out
}

// Search matches items where any of the fields contains term, ignoring case.
// An empty or blank term disables the predicate.
func Search[T any](term string, fields func(T) []string) Predicate[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	return func(item T) bool {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), term) {
				return true
			}
		}
		return false
	}
}

// Equals matches items whose field equals value exactly. An empty value
// disables the predicate; so does "all", which list screens use for the
// unfiltered choice.
func Equals[T any](value string, field func(T) string) Predicate[T] {
	if value == "" || value == "all" {
		return nil
	}
	return func(item T) bool {
		return field(item) == value
	}
}

// OneOf matches items whose field is in values. An empty set disables the
// predicate.
func OneOf[T any](values []string, field func(T) string) Predicate[T] {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return func(item T) bool {
		_, ok := set[field(item)]
		return ok
	}
}

// Where wraps an arbitrary condition
func Where[T any](fn func(T) bool) Predicate[T] {
	return fn
}

// SplitList splits a comma-separated query value into its non-empty parts
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
