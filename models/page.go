package models

// Page is one slice of a sorted, filtered listing.
type Page[T any] struct {
	Content          []T   `json:"content"`
	PageNumber       int   `json:"pageNumber"`
	PageSize         int   `json:"pageSize"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
}

// NewPage cuts items[page*size : page*size+size] out of the full result set.
func NewPage[T any](items []T, page, size int) Page[T] {
	total := len(items)
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}

	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	content := make([]T, end-start)
	copy(content, items[start:end])

	return Page[T]{
		Content:          content,
		PageNumber:       page,
		PageSize:         size,
		TotalElements:    int64(total),
		TotalPages:       totalPages,
		NumberOfElements: len(content),
	}
}
