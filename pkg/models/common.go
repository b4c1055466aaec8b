package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// APIResponse is the envelope the dashboard API answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Envelope is the shape every backend response wraps its payload in.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Page is one page of a listing together with its totals.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// ID is a backend identifier. The backend is not consistent about sending ids
// as strings or numbers, so both decode into the same value.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers so the backend receives what it sent.
func (id ID) MarshalJSON() ([]byte, error) {
	if id != "" {
		if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
			return []byte(id), nil
		}
	}
	return json.Marshal(string(id))
}

// String returns the id as text.
func (id ID) String() string {
	return string(id)
}

// Pagination defaults
const (
	DefaultUserPageSize        = 20
	DefaultListPageSize        = 9
	DefaultTransactionPageSize = 50
)
