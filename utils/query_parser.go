package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ParseIntParam reads an integer query parameter, returning def when it is
// absent.
func ParseIntParam(r *http.Request, name string, def int) (int, error) {
	str := strings.TrimSpace(r.URL.Query().Get(name))
	if str == "" {
		return def, nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", name)
	}
	return n, nil
}

// QueryParam returns the trimmed value of a query parameter.
func QueryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
