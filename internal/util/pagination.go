package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}
	offset = (page - 1) * size
	return offset, size
}

// Window returns the [lo, hi) bounds of a page over n items.
func Window(n, offset, limit int) (lo, hi int) {
	if offset < 0 {
		offset = 0
	}
	lo = min(offset, n)
	hi = min(lo+min(limit, n-lo), n)
	return lo, hi
}
