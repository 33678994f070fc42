package filter

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps any casing of "desc" to Desc and everything else to Asc
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Compare orders two items, returning a negative, zero or positive number
type Compare[T any] func(a, b T) int

// Keys maps sortable field names to comparators
type Keys[T any] map[string]Compare[T]

// Sort returns a stably sorted copy of items. An empty or unknown field keeps
// the input order.
func Sort[T any](items []T, field string, dir Direction, keys Keys[T]) []T {
	out := slices.Clone(items)
	if out == nil {
		out = make([]T, 0)
	}
	cmpFn, ok := keys[field]
	if !ok {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		if dir == Desc {
			return cmpFn(b, a)
		}
		return cmpFn(a, b)
	})
	return out
}

// ByString compares a string field case-insensitively
func ByString[T any](field func(T) string) Compare[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// ByNumber compares an ordered field
func ByNumber[T any, N cmp.Ordered](field func(T) N) Compare[T] {
	return func(a, b T) int {
		return cmp.Compare(field(a), field(b))
	}
}

// ByTime compares a time field
func ByTime[T any](field func(T) time.Time) Compare[T] {
	return func(a, b T) int {
		return field(a).Compare(field(b))
	}
}
