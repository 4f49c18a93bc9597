package snipeit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
	"github.com/gotrs-io/snipeit-e2e/internal/snipeit"
)

// redrawingPage reports one row more than the table holds for the next
// stale counts of the watched selectors, the way a table looks to a reader
// that counts just before a redraw removes a row.
type redrawingPage struct {
	browser.Page
	watched map[string]bool
	stale   int
}

func (p *redrawingPage) Locator(selector string) browser.Locator {
	loc := p.Page.Locator(selector)
	if !p.watched[selector] {
		return loc
	}
	return &redrawingLocator{baseLocator: loc, page: p}
}

type baseLocator = browser.Locator

type redrawingLocator struct {
	baseLocator
	page *redrawingPage
}

func (l *redrawingLocator) Count() (int, error) {
	n, err := l.baseLocator.Count()
	if err == nil && l.page.stale > 0 {
		l.page.stale--
		n++
	}
	return n, err
}

func TestSearchSurvivesTableRedraw(t *testing.T) {
	for _, variant := range snipeit.Variants() {
		t.Run(variant.String(), func(t *testing.T) {
			h := newHarness(t, variant)
			h.login(t)
			ctx := context.Background()

			create := h.app.CreateAsset(h.page)
			require.NoError(t, create.Open())
			_, err := create.Create(ctx, literalAsset())
			require.NoError(t, err)

			rows := snipeit.Registry(variant)[snipeit.AssetsRows]
			page := &redrawingPage{Page: h.page, watched: map[string]bool{}}
			for _, sel := range rows.Selectors() {
				page.watched[sel] = true
			}
			assets := h.app.Assets(page)
			require.NoError(t, assets.Open())

			// One redraw spans the resolver's count and the query's count.
			page.stale = 2
			require.NoError(t, assets.Search(ctx, "AB12CD34"))
			assert.Zero(t, page.stale, "the redraw was observed")

			found, err := assets.FindByTag("AB12CD34")
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, "AB12CD34", found[0].Tag)
		})
	}
}
