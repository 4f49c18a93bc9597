// Package testdata produces randomized assets and users that satisfy the
// create form's required fields. Generation has no side effects; two
// generators built with the same non-zero seed and clock yield the same data.
package testdata

import (
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/gotrs-io/snipeit-e2e/internal/config"
	"github.com/gotrs-io/snipeit-e2e/internal/models"
)

const (
	TagLength    = 8
	SerialLength = 12
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	emailDomain  = "example.com"
)

var departments = []string{
	"Engineering", "Finance", "Human Resources", "Marketing",
	"Operations", "Sales", "Support", "Legal", "Facilities",
}

// Generator builds test entities. It is not safe for concurrent use.
type Generator struct {
	defaults config.AssetDefaultsConfig
	seed     uint64
	rng      *rand.Rand
	faker    *gofakeit.Faker
	now      func() time.Time
}

// New returns a generator. A zero seed picks one from the clock; Seed reports it.
func New(defaults config.AssetDefaultsConfig, seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		defaults: defaults,
		seed:     seed,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		faker:    gofakeit.New(seed),
		now:      time.Now,
	}
}

// WithClock replaces the time source used for created and purchase dates.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Seed returns the seed in use, so a failing run can be replayed.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Asset returns an asset with a fresh tag and serial and the configured defaults.
// Tags are random, so uniqueness across a run is probable, not guaranteed.
func (g *Generator) Asset() models.Asset {
	now := g.now()
	return models.Asset{
		Tag:          g.code(TagLength),
		Model:        g.defaults.Model,
		Manufacturer: g.defaults.Manufacturer,
		Category:     g.defaults.Category,
		Status:       g.defaults.Status,
		Serial:       g.code(SerialLength),
		CreatedAt:    now,
		PurchaseDate: g.faker.DateRange(now.AddDate(-1, 0, 0), now).Truncate(24 * time.Hour),
		PurchaseCost: g.faker.Price(100, 3000),
		Notes:        g.faker.HackerPhrase(),
	}
}

// Assets returns n assets.
func (g *Generator) Assets(n int) []models.Asset {
	out := make([]models.Asset, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Asset())
	}
	return out
}

// User returns a user whose username and email are derived from the generated name.
func (g *Generator) User() models.User {
	first := g.faker.FirstName()
	last := g.faker.LastName()
	username := Username(first, last)
	return models.User{
		FirstName:  first,
		LastName:   last,
		Username:   username,
		Email:      username + "@" + emailDomain,
		Department: g.faker.RandomString(departments),
		Location:   g.faker.City(),
	}
}

// Users returns n users.
func (g *Generator) Users(n int) []models.User {
	out := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.User())
	}
	return out
}

// Tag returns a random asset tag.
func (g *Generator) Tag() string {
	return g.code(TagLength)
}

func (g *Generator) code(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[g.rng.IntN(len(alphabet))])
	}
	return b.String()
}

// Username lowercases "first.last" and drops anything that is not a letter, digit or dot.
func Username(first, last string) string {
	raw := strings.ToLower(first + "." + last)
	var b strings.Builder
	for _, r := range raw {
		if r == '.' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}
