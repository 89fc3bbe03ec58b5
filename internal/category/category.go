// Package category defines the seven NIST AI RMF trustworthiness
// characteristics an audit can cover.
package category

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	dErrors "rmfaudit/pkg/domain-errors"
)

// Category is one of the fixed trustworthiness characteristics. The zero
// value is not a valid category.
type Category string

const (
	PrivacyEnhanced   Category = "Privacy-Enhanced"
	ValidReliable     Category = "Valid & Reliable"
	Safe              Category = "Safe"
	SecureResilient   Category = "Secure & Resilient"
	AccountableTransp Category = "Accountable & Transparent"
	Explainable       Category = "Explainable and Interpretable"
	FairBiasManaged   Category = "Fair – With Harmful Bias Managed"
)

// ErrInvalid is returned for any name outside the enumeration.
var ErrInvalid = dErrors.NewReason(dErrors.CodeValidation, "invalid_category", "invalid category")

var all = []Category{
	PrivacyEnhanced,
	ValidReliable,
	Safe,
	SecureResilient,
	AccountableTransp,
	Explainable,
	FairBiasManaged,
}

var byName = func() map[string]Category {
	m := make(map[string]Category, len(all))
	for _, c := range all {
		m[string(c)] = c
	}
	return m
}()

// All returns the categories in canonical order.
func All() []Category {
	return append([]Category(nil), all...)
}

// Names returns All as plain strings.
func Names() []string {
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = string(c)
	}
	return out
}

// Parse accepts an exact category name after trimming surrounding space and
// NFC normalization. Matching is case-sensitive and never fuzzy.
func Parse(name string) (Category, error) {
	key := norm.NFC.String(strings.TrimSpace(name))
	if c, ok := byName[key]; ok {
		return c, nil
	}
	return "", ErrInvalid.Withf("invalid category %q: must be one of %s", name, strings.Join(Names(), ", "))
}

// ParseAll parses names in order and stops at the first invalid one.
func ParseAll(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))
	for _, n := range names {
		c, err := Parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	_, ok := byName[string(c)]
	return ok
}
