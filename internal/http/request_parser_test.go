package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"txdash/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    MonthParams
		wantErr bool
	}{
		{"empty", "", MonthParams{}, false},
		{"month only", "month=March", MonthParams{Month: "March"}, false},
		{"trimmed", "month=+march+&year=+2022+", MonthParams{Month: "march", Year: 2022}, false},
		{"year-month form", "month=2021-11", MonthParams{Month: "2021-11"}, false},
		{"non-integer year", "month=march&year=abc", MonthParams{}, true},
		{"year zero", "month=march&year=0", MonthParams{}, true},
		{"year too large", "year=10000", MonthParams{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseMonthParams(q)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidParameter) {
					t.Fatalf("err = %v, want ErrInvalidParameter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"", 1, 10},
		{"page=3&perPage=25", 3, 25},
		{"page=abc&perPage=", 1, 10},
		{"page=1.5&perPage=x", 1, 10},
		// Out of range values pass through for the service to reject.
		{"page=0&perPage=500", 0, 500},
		{"page=-2", -2, 10},
	}

	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		page, perPage := ParsePagination(q)
		if page != tt.wantPage || perPage != tt.wantPerPage {
			t.Errorf("ParsePagination(%q) = (%d, %d), want (%d, %d)", tt.query, page, perPage, tt.wantPage, tt.wantPerPage)
		}
	}
}

func TestParseSearchParams(t *testing.T) {
	q, _ := url.ParseQuery("search=phone%00&month=3&year=2024&page=2&perPage=5")
	got, err := ParseSearchParams(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "phone" || got.Month != "3" || got.Year != 2024 || got.Page != 2 || got.PerPage != 5 {
		t.Errorf("got %+v", got)
	}

	q, _ = url.ParseQuery("year=x")
	if _, err := ParseSearchParams(q); !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}

	q, _ = url.ParseQuery("search=%20bag%20")
	got, err = ParseSearchParams(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != " bag " {
		t.Errorf("Text = %q, want %q", got.Text, " bag ")
	}
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{
		"true": true, "TRUE": true, "1": true, "yes": true, "on": true,
		"": false, "false": false, "0": false, "maybe": false,
	} {
		if got := parseBool(in); got != want {
			t.Errorf("parseBool(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  normal text  ", "  normal text  "},
		{" \x00bag", " bag"},
		{"text\x00with\x01control", "textwithcontrol"},
		{"keep\ttabs", "keep\ttabs"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	get := httptest.NewRequest(http.MethodGet, "/statistics", nil)
	if resp := RequireGET(get); resp != nil {
		t.Fatalf("GET should be allowed")
	}

	del := httptest.NewRequest(http.MethodDelete, "/statistics", nil)
	resp := RequireMethod(del, http.MethodGet, http.MethodHead)
	if resp == nil {
		t.Fatal("DELETE should be rejected")
	}
	rec := httptest.NewRecorder()
	resp.Write(rec)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "GET, HEAD" {
		t.Errorf("Allow = %q", got)
	}
}
