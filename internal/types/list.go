package types

import "kamwaalay/internal/repositories"

type ListMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
	Total   int64 `json:"total"`
}

// List is the envelope every paginated endpoint responds with.
type List[T any] struct {
	Data []T      `json:"data"`
	Meta ListMeta `json:"meta"`
}

func NewList[T any](items []T, page repositories.Page, total int64) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{
		Data: items,
		Meta: ListMeta{Page: page.Page, PerPage: page.PerPage, Total: total},
	}
}
