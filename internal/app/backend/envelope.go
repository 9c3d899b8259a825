package backend

import (
	json "github.com/goccy/go-json"
)

// Envelope is the uniform response body of the backend.
// Success is a pointer so that an omitted flag is not read as a rejection.
type Envelope[T any] struct {
	Success    *bool  `json:"success,omitempty"`
	StatusCode string `json:"statusCode"`
	Msg        string `json:"msg"`
	Data       []T    `json:"data"`
}

func (e Envelope[T]) rejected() bool {
	return e.Success != nil && !*e.Success
}

// First returns data[0] when present.
func (e Envelope[T]) First() (T, bool) {
	var zero T
	if len(e.Data) == 0 {
		return zero, false
	}
	return e.Data[0], true
}

// statusEnvelope reads only the success indication of a mutation response.
type statusEnvelope struct {
	Success *bool           `json:"success,omitempty"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func (e statusEnvelope) rejected() bool {
	return e.Success != nil && !*e.Success
}
