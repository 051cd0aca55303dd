// Package filter parses country-code filters given on the command line.
package filter

import (
	"errors"
	"sort"
	"strings"
)

// ErrNoCountryCodes is returned when a filter was given but names no country.
var ErrNoCountryCodes = errors.New("--countries needs at least one country code")

// Countries is a case-insensitive set of country codes. A nil set matches
// everything; a non-nil empty set matches nothing.
type Countries map[string]struct{}

// ParseCountries parses a comma separated list such as "se, DE,us".
// Blank input yields nil. Input made only of separators yields an empty
// set, so a filter that was asked for never widens to everything.
func ParseCountries(raw string) Countries {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	set := make(Countries)
	for _, part := range strings.Split(raw, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		set[code] = struct{}{}
	}
	return set
}

// Parse is ParseCountries for a command line flag. given reports whether the
// flag was set at all; a given flag without codes is rejected.
func Parse(raw string, given bool) (Countries, error) {
	set := ParseCountries(raw)
	if (given || set != nil) && len(set) == 0 {
		return nil, ErrNoCountryCodes
	}
	return set, nil
}

// Active reports whether the filter restricts anything.
func (c Countries) Active() bool {
	return c != nil
}

// Match reports whether code passes the filter.
func (c Countries) Match(code string) bool {
	if c == nil {
		return true
	}
	_, ok := c[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// Codes returns the sorted codes in the filter.
func (c Countries) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (c Countries) String() string {
	return strings.Join(c.Codes(), ",")
}
