package response

import "math"

// Response represents the standard API envelope
type Response struct {
	Success    bool              `json:"success"`
	Data       interface{}       `json:"data,omitempty"`
	Error      bool              `json:"error,omitempty"`
	Message    string            `json:"message,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"` // field -> message, validation failures only
	Pagination *Pagination       `json:"pagination,omitempty"`
}

// Pagination describes the page returned alongside list data
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Success returns a standard success response wrapping the data
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// Message returns a success response that only carries a message
func Message(msg string) Response {
	return Response{
		Success: true,
		Message: msg,
	}
}

// SuccessWithPagination wraps list data with its page metadata
func SuccessWithPagination(data interface{}, page, limit int, total int64) Response {
	return Response{
		Success:    true,
		Data:       data,
		Pagination: NewPagination(page, limit, total),
	}
}

// Error returns a standard error response wrapping the error message
func Error(msg string) Response {
	return Response{
		Error:   true,
		Message: msg,
	}
}

// ValidationError returns the 422 payload listing every invalid field
func ValidationError(fields map[string]string) Response {
	return Response{
		Error:   true,
		Message: "Validation failed",
		Errors:  fields,
	}
}

// NewPagination computes the page count as ceil(total/limit).
func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}
