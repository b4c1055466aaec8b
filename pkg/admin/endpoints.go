package admin

import (
	"strconv"
	"strings"
)

// Endpoints is the backend-version dependent part of the API: path prefixes
// and whether the wire page index starts at 0 or 1.
type Endpoints struct {
	PublicPrefix string
	Prefix       string
	PageBase     int
}

// DefaultEndpoints matches the v2 backend
func DefaultEndpoints() Endpoints {
	return Endpoints{
		PublicPrefix: "/api/public/v2",
		Prefix:       "/api/v2",
		PageBase:     1,
	}
}

func (e Endpoints) public(path string) string {
	return strings.TrimSuffix(e.PublicPrefix, "/") + path
}

func (e Endpoints) api(path string) string {
	return strings.TrimSuffix(e.Prefix, "/") + path
}

// wirePage converts a 1-based page into the backend's numbering
func (e Endpoints) wirePage(page int) int {
	if page < 1 {
		page = 1
	}
	return page - 1 + e.PageBase
}

func (e Endpoints) pageQuery(page, size int) map[string]string {
	return map[string]string{
		"page": strconv.Itoa(e.wirePage(page)),
		"size": strconv.Itoa(size),
	}
}
