// Package snipeit holds the Snipe-IT markup contract, one page object per
// screen and the ordered scenario suite built on them.
package snipeit

import (
	"fmt"
	"strings"
)

// Variant selects which Snipe-IT markup the page objects target.
type Variant string

const (
	// Select2 is the current UI: select2 widgets on forms, copyable fields
	// and icon tabs on the detail page.
	Select2 Variant = "select2"
	// Native is the plain markup: native selects and dt/dd detail labels.
	Native Variant = "native"
)

// Variants lists the supported variants.
func Variants() []Variant { return []Variant{Select2, Native} }

// ParseVariant accepts a configured markup name. Empty means Select2.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", Select2:
		return Select2, nil
	case Native:
		return Native, nil
	}
	return "", fmt.Errorf("unknown markup variant %q (supported: select2, native)", s)
}

func (v Variant) String() string { return string(v) }
