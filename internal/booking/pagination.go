package booking

// Page is one page of items plus paging metadata.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	HasNext  bool
	HasPrev  bool
	Total    int
}

const defaultPageSize = 10

// Normalize clamps page/pageSize to usable values. page numbers start at 1.
func Normalize(page, pageSize int) (int, int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	return page, pageSize
}

// Offset returns the SQL offset for a normalized page.
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// NewPage wraps items that were already limited/offset at the query level.
func NewPage[T any](items []T, total int64, page, pageSize int) Page[T] {
	page, pageSize = Normalize(page, pageSize)
	end := Offset(page, pageSize) + len(items)
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < int(total),
		HasPrev:  page > 1,
		Total:    int(total),
	}
}
