package service

import "github.com/spec-kit/phonebook/internal/domain"

// Page is one slice of a search result.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	Total      int
	TotalPages int
}

func newPage[T any](items []T, request domain.PageRequest, total int) *Page[T] {
	request = request.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       request.Page,
		Size:       request.Size,
		Total:      total,
		TotalPages: request.TotalPages(total),
	}
}
