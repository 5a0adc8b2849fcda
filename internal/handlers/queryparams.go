package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/prudhvinik1/devicetrack/internal/models"
	"github.com/prudhvinik1/devicetrack/internal/reports"
	"github.com/prudhvinik1/devicetrack/internal/services"
)

// QueryParamParser parses query params and gathers every error in one sweep,
// so all invalid fields are reported at once.
type QueryParamParser struct {
	Errors []services.FieldError
}

func NewQueryParamParser() *QueryParamParser {
	return &QueryParamParser{Errors: []services.FieldError{}}
}

func (p *QueryParamParser) fail(param, format string, args ...any) {
	p.Errors = append(p.Errors, services.FieldError{Field: param, Detail: fmt.Sprintf(format, args...)})
}

// Err returns the gathered errors as a validation error, nil when there are
// none.
func (p *QueryParamParser) Err() error {
	if len(p.Errors) == 0 {
		return nil
	}
	return &services.ValidationError{Message: "Invalid query parameters.", Errors: p.Errors}
}

func (p *QueryParamParser) Int(vals url.Values, def int, param string) int {
	v, err := parseQueryParam(vals, strconv.Atoi, def, param)
	if err != nil {
		p.fail(param, "Query param %q must be a valid integer", param)
		return def
	}
	return v
}

// Int64 returns nil when the param is absent.
func (p *QueryParamParser) Int64(vals url.Values, param string) *int64 {
	v, err := parseQueryParam(vals, func(s string) (*int64, error) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return &n, nil
	}, nil, param)
	if err != nil {
		p.fail(param, "Query param %q must be a valid integer", param)
	}
	return v
}

func (p *QueryParamParser) RequiredInt64(vals url.Values, param string) int64 {
	if !vals.Has(param) || vals.Get(param) == "" {
		p.fail(param, "Query param %q is required", param)
		return 0
	}
	if v := p.Int64(vals, param); v != nil {
		return *v
	}
	return 0
}

func (p *QueryParamParser) Instant(vals url.Values, param string) *time.Time {
	return ParseCustom(p, vals, nil, param, func(s string) (*time.Time, error) {
		t, err := reports.ParseInstant(s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	})
}

func (p *QueryParamParser) Date(vals url.Values, param string) *time.Time {
	return ParseCustom(p, vals, nil, param, func(s string) (*time.Time, error) {
		t, err := reports.ParseDate(s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	})
}

// Page reads page and per_page, defaulting to the first page of 20.
func (p *QueryParamParser) Page(vals url.Values) reports.Page {
	page := reports.Page{
		Number:  p.Int(vals, 1, "page"),
		PerPage: p.Int(vals, reports.DefaultPerPage, "per_page"),
	}
	for _, pe := range reports.PageErrors(page.Validate()) {
		p.fail(pe.Param, "Query param %q %s", pe.Param, pe.Detail)
	}
	return page
}

// Window resolves start and end, falling back to today when either is
// missing.
func (p *QueryParamParser) Window(vals url.Values, now time.Time) reports.Window {
	start := p.Instant(vals, "start")
	end := p.Instant(vals, "end")
	return reports.ResolveWindow(start, end, now)
}

func (p *QueryParamParser) Platform(vals url.Values, param string) *models.Platform {
	return ParseCustom(p, vals, nil, param, func(s string) (*models.Platform, error) {
		pl, err := models.ParsePlatform(s)
		if err != nil {
			return nil, err
		}
		return &pl, nil
	})
}

func (p *QueryParamParser) LogLevel(vals url.Values, param string) *models.LogLevel {
	return ParseCustom(p, vals, nil, param, func(s string) (*models.LogLevel, error) {
		l, err := models.ParseLogLevel(s)
		if err != nil {
			return nil, err
		}
		return &l, nil
	})
}

func (p *QueryParamParser) Order(vals url.Values, param string) reports.DeviceOrder {
	return ParseCustom(p, vals, reports.OrderRecent, param, reports.ParseDeviceOrder)
}

// ParseCustom is a function rather than a method because methods cannot take
// type parameters.
func ParseCustom[T any](p *QueryParamParser, vals url.Values, def T, param string, parse func(string) (T, error)) T {
	v, err := parseQueryParam(vals, parse, def, param)
	if err != nil {
		p.fail(param, "Query param %q has invalid value: %s", param, err.Error())
	}
	return v
}

func parseQueryParam[T any](vals url.Values, parse func(string) (T, error), def T, param string) (T, error) {
	if !vals.Has(param) || vals.Get(param) == "" {
		return def, nil
	}
	return parse(vals.Get(param))
}
