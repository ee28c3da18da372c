// Package worldbank talks to the World Bank indicator API: it builds requests from
// catalog selections, fetches raw response bodies, and scans those bodies into
// per-year series.
//
// The response format interleaves pagination metadata with the records, so the
// parser locates records by field markers rather than decoding a fixed schema.
package worldbank

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rewired-gh/countrystats/internal/catalog"
)

const (
	defaultBaseURL  = "https://api.worldbank.org/v2"
	defaultLanguage = "en-US"
	defaultPerPage  = 1000
)

// RequestSpec is a fully resolved fetch target.
type RequestSpec struct {
	URL     string
	Headers http.Header
}

// Builder composes RequestSpecs. It performs no I/O.
type Builder struct {
	baseURL  string
	language string
	perPage  int
}

// NewBuilder creates a Builder. Empty or zero arguments fall back to defaults.
func NewBuilder(baseURL, language string, perPage int) *Builder {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if language == "" {
		language = defaultLanguage
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return &Builder{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		perPage:  perPage,
	}
}

// Build returns the request for one country, one indicator and an inclusive
// year range. Selectors must be in catalog bounds.
func (b *Builder) Build(country catalog.CountrySelector, indicator catalog.IndicatorSelector, startYear, endYear int) RequestSpec {
	countryCode := catalog.CountryCode(country)
	indicatorCode := catalog.IndicatorAt(indicator).Code

	params := url.Values{}
	params.Set("date", fmt.Sprintf("%d:%d", startYear, endYear))
	params.Set("format", "json")
	params.Set("per_page", strconv.Itoa(b.perPage))

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	headers.Set("Content-Language", b.language)

	return RequestSpec{
		URL: fmt.Sprintf("%s/country/%s/indicator/%s?%s",
			b.baseURL,
			url.PathEscape(countryCode),
			url.PathEscape(indicatorCode),
			params.Encode()),
		Headers: headers,
	}
}
