package testdata

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/gotrs-io/snipeit-e2e/internal/config"
)

var (
	tagPattern    = regexp.MustCompile(`^[A-Z0-9]{8}$`)
	serialPattern = regexp.MustCompile(`^[A-Z0-9]{12}$`)
	userPattern   = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9]+)*$`)
)

var defaults = config.AssetDefaultsConfig{
	Model:        `Macbook Pro 13"`,
	Status:       "Ready to Deploy",
	Manufacturer: "Apple",
	Category:     "Laptops",
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
}

func TestAssetProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64Min(1).Draw(rt, "seed")
		asset := New(defaults, seed).WithClock(fixedClock).Asset()

		if !tagPattern.MatchString(asset.Tag) {
			rt.Fatalf("tag %q is not 8 uppercase alphanumerics", asset.Tag)
		}
		if !serialPattern.MatchString(asset.Serial) {
			rt.Fatalf("serial %q is not 12 uppercase alphanumerics", asset.Serial)
		}
		if asset.Model != defaults.Model || asset.Status != defaults.Status ||
			asset.Manufacturer != defaults.Manufacturer || asset.Category != defaults.Category {
			rt.Fatalf("defaults not applied: %+v", asset)
		}
		if err := asset.Validate(); err != nil {
			rt.Fatalf("generated asset does not validate: %v", err)
		}
		if asset.PurchaseCost < 100 || asset.PurchaseCost > 3000 {
			rt.Fatalf("purchase cost %v out of range", asset.PurchaseCost)
		}
		if asset.PurchaseDate.After(fixedClock()) {
			rt.Fatalf("purchase date %v is in the future", asset.PurchaseDate)
		}
		if strings.TrimSpace(asset.Notes) == "" {
			rt.Fatalf("notes are empty")
		}
	})
}

func TestUserProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64Min(1).Draw(rt, "seed")
		user := New(defaults, seed).User()

		if user.FirstName == "" || user.LastName == "" {
			rt.Fatalf("name missing: %+v", user)
		}
		if user.Username != Username(user.FirstName, user.LastName) {
			rt.Fatalf("username %q not derived from name", user.Username)
		}
		if !userPattern.MatchString(user.Username) {
			rt.Fatalf("username %q has unexpected characters", user.Username)
		}
		if user.Email != user.Username+"@example.com" {
			rt.Fatalf("email %q not derived from username", user.Email)
		}
	})
}

func TestSameSeedSameData(t *testing.T) {
	a := New(defaults, 1234).WithClock(fixedClock)
	b := New(defaults, 1234).WithClock(fixedClock)

	assert.Equal(t, a.Assets(5), b.Assets(5))
	assert.Equal(t, a.Users(5), b.Users(5))
	assert.Equal(t, uint64(1234), a.Seed())
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := New(defaults, 1).Tag()
	b := New(defaults, 2).Tag()
	assert.NotEqual(t, a, b)
}

func TestZeroSeedIsReplaced(t *testing.T) {
	g := New(defaults, 0)
	assert.NotZero(t, g.Seed())
}

func TestTagsAreMostlyUnique(t *testing.T) {
	g := New(defaults, 99)
	seen := map[string]bool{}
	for _, a := range g.Assets(500) {
		require.False(t, seen[a.Tag], "duplicate tag %s in a small batch", a.Tag)
		seen[a.Tag] = true
	}
}

func TestUsername(t *testing.T) {
	testCases := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "ada.lovelace"},
		{"Mary Jane", "O'Neil", "maryjane.oneil"},
		{"José", "Núñez", "jos.nez"},
		{"", "Solo", "solo"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Username(tc.first, tc.last), "%s %s", tc.first, tc.last)
	}
}
