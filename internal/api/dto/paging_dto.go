package dto

// PagingResponse wraps one page of a search.
type PagingResponse[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	TotalPage   int `json:"total_page"`
	Size        int `json:"size"`
	Total       int `json:"total"`
}
