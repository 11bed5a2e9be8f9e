package util

import "strconv"

const DefaultPageSize = 10

// Calculate turns a 1-based page and size into an offset/limit pair,
// clamping size to [1, 100].
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

// ParseIntDefault is a lenient query-param integer parse.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
