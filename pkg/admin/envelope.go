package admin

import (
	"bytes"
	"encoding/json"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/models"
)

// The backend wraps payloads as {data: T}, and some endpoints nest a second
// (or third) {data: ...}. Every response passes through one of the
// normalizers below so callers only ever see the payload.

const maxNesting = 3

// unwrap descends through {data: ...} wrappers until it reaches a value that
// is not an object holding "data".
func unwrap(body []byte) json.RawMessage {
	current := json.RawMessage(bytes.TrimSpace(body))
	for i := 0; i < maxNesting; i++ {
		inner, ok := dataField(current)
		if !ok {
			break
		}
		current = inner
	}
	return current
}

// dataField returns the "data" member of a JSON object
func dataField(raw json.RawMessage) (json.RawMessage, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	inner, ok := fields["data"]
	if !ok {
		return nil, false
	}
	return bytes.TrimSpace(inner), true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// normalizeList accepts [..], {data:[..]}, {data:{data:[..]}} and deeper
func normalizeList[T any](body []byte) ([]T, error) {
	payload := unwrap(body)
	items := []T{}
	if isNull(payload) {
		return items, nil
	}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDecode, "Unexpected list response from the server")
	}
	return items, nil
}

// normalizeObject accepts T, {data:T} and {data:{data:T}}
func normalizeObject[T any](body []byte) (*T, error) {
	payload := unwrap(body)
	if isNull(payload) {
		return nil, nil
	}
	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDecode, "Unexpected response from the server")
	}
	return &value, nil
}

// pageLevel is one object level of a paged response
type pageLevel struct {
	Data          json.RawMessage `json:"data"`
	Content       json.RawMessage `json:"content"`
	TotalPages    *int            `json:"totalPages"`
	TotalItems    *int            `json:"totalItems"`
	TotalElements *int            `json:"totalElements"`
}

// normalizePage accepts {data:{data:[..],totalPages,totalItems}}, the same
// without the outer wrapper, and a bare list (totals computed from it).
func normalizePage[T any](body []byte, page, size int) (*models.Page[T], error) {
	current := json.RawMessage(bytes.TrimSpace(body))

	for i := 0; i <= maxNesting; i++ {
		if len(current) > 0 && current[0] == '[' {
			items, err := normalizeList[T](current)
			if err != nil {
				return nil, err
			}
			return &models.Page[T]{
				Items:      items,
				Page:       page,
				PageSize:   size,
				TotalPages: 1,
				TotalItems: len(items),
			}, nil
		}

		var level pageLevel
		if isNull(current) {
			break
		}
		if err := json.Unmarshal(current, &level); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDecode, "Unexpected page response from the server")
		}

		list := level.Data
		if isNull(list) {
			list = level.Content
		}
		list = bytes.TrimSpace(list)

		if len(list) > 0 && list[0] == '[' {
			items, err := normalizeList[T](list)
			if err != nil {
				return nil, err
			}
			result := &models.Page[T]{
				Items:    items,
				Page:     page,
				PageSize: size,
			}
			switch {
			case level.TotalItems != nil:
				result.TotalItems = *level.TotalItems
			case level.TotalElements != nil:
				result.TotalItems = *level.TotalElements
			default:
				result.TotalItems = len(items)
			}
			if level.TotalPages != nil {
				result.TotalPages = *level.TotalPages
			} else if size > 0 {
				result.TotalPages = (result.TotalItems + size - 1) / size
			}
			return result, nil
		}

		if isNull(list) {
			break
		}
		current = list
	}

	return &models.Page[T]{Items: []T{}, Page: page, PageSize: size}, nil
}

// normalizeUserPage is the users listing normalizer
func normalizeUserPage(body []byte, page, size int) (*models.Page[models.User], error) {
	return normalizePage[models.User](body, page, size)
}
