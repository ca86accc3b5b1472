package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Calculate turns a 1-based page and a page size into an offset and limit.
// Out-of-range sizes fall back to DefaultPageSize.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}
