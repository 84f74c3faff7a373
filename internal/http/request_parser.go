// Package http provides the JSON API server and its handlers.
//
// This file holds the query-string parsing shared by the handlers.

package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"txdash/internal/core"
	"txdash/internal/services"
)

// MonthParams holds the raw month selector of a request. Year is zero when
// the caller did not send one.
type MonthParams struct {
	Month string
	Year  int
}

// ParseMonthParams reads month and year from the query string. The month is
// resolved later by the query service; only a malformed year fails here.
func ParseMonthParams(query url.Values) (MonthParams, error) {
	params := MonthParams{Month: strings.TrimSpace(query.Get("month"))}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return MonthParams{}, fmt.Errorf("%w: invalid year %q", core.ErrInvalidParameter, v)
		}
		params.Year = y
	}

	return params, nil
}

// ParsePagination reads page and perPage. Missing or non-integer values fall
// back to the defaults; range checks happen in the query service.
func ParsePagination(query url.Values) (page, perPage int) {
	page = intOrDefault(query.Get("page"), core.DefaultPage)
	perPage = intOrDefault(query.Get("perPage"), core.DefaultPageSize)
	return page, perPage
}

func intOrDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return v
	}
	return def
}

// ParseSearchParams extracts everything /transactions accepts.
func ParseSearchParams(query url.Values) (services.SearchParams, error) {
	month, err := ParseMonthParams(query)
	if err != nil {
		return services.SearchParams{}, err
	}
	page, perPage := ParsePagination(query)

	return services.SearchParams{
		Text:    sanitizeInput(query.Get("search")),
		Month:   month.Month,
		Year:    month.Year,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// parseBool treats 1, true, yes and on as true.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// sanitizeInput removes control characters. Surrounding spaces are part
// of a substring search and are kept.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// RequireMethod checks the request method. It returns nil when the method
// is allowed, or a ready 405 response.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for GET-only handlers.
func RequireGET(r *http.Request) *JSONResponseBuilder {
	return RequireMethod(r, http.MethodGet)
}
