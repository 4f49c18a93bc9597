package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidAsset is returned when an asset is missing a field the create form requires.
var ErrInvalidAsset = errors.New("invalid asset")

// Asset is a hardware record as rendered by the inventory application.
// The tag is the natural key used to find the record again on other screens.
type Asset struct {
	Tag          string    `json:"tag" yaml:"tag"`
	Model        string    `json:"model" yaml:"model"`
	Manufacturer string    `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Category     string    `json:"category,omitempty" yaml:"category,omitempty"`
	Status       string    `json:"status" yaml:"status"`
	CheckedOutTo string    `json:"checked_out_to,omitempty" yaml:"checked_out_to,omitempty"`
	Serial       string    `json:"serial,omitempty" yaml:"serial,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	PurchaseDate time.Time `json:"purchase_date" yaml:"purchase_date"`
	PurchaseCost float64   `json:"purchase_cost" yaml:"purchase_cost"`
	Notes        string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Validate checks the fields the create form refuses to submit without.
func (a *Asset) Validate() error {
	var missing []string
	if strings.TrimSpace(a.Tag) == "" {
		missing = append(missing, "tag")
	}
	if strings.TrimSpace(a.Model) == "" {
		missing = append(missing, "model")
	}
	if strings.TrimSpace(a.Status) == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidAsset, strings.Join(missing, ", "))
	}
	return nil
}

// Label renders the asset the way activity feeds link to it: "(TAG) - Model".
func (a *Asset) Label() string {
	return fmt.Sprintf("(%s) - %s", a.Tag, a.Model)
}
