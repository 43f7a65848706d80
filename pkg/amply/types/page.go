package types

// Page is the list envelope used by every collection endpoint.
// Non-paged collections (funds) leave Page and PageSize zero.
type Page[T any] struct {
	Items    []T  `json:"items" yaml:"items"`
	Total    int  `json:"total" yaml:"total"`
	Page     int  `json:"page,omitempty" yaml:"page,omitempty"`
	PageSize int  `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	HasMore  bool `json:"has_more" yaml:"has_more"`
}

// APIErrorBody is the error envelope returned on non-2xx responses.
type APIErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Param   string `json:"param,omitempty"`
	} `json:"error"`
}
