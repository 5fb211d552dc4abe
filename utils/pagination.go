package utils

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageWindow normalizes optional offset/limit values into a concrete listing
// window. Missing or negative offsets start at zero; missing or non-positive
// limits fall back to the default page size, and the limit is capped so a
// single request cannot pull an unbounded result set.
func PageWindow(offset, limit *int) (int, int) {
	start := 0
	if offset != nil && *offset > 0 {
		start = *offset
	}

	size := defaultPageSize
	if limit != nil && *limit > 0 {
		size = *limit
		if size > maxPageSize {
			size = maxPageSize
		}
	}

	return start, size
}
