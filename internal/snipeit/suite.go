package snipeit

import (
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/snipeit-e2e/internal/config"
	"github.com/gotrs-io/snipeit-e2e/internal/models"
	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

// State keys passed between the scenarios of the suite.
const (
	KeySignedInUser scenario.Key = "signed-in-user"
	KeyAssetTag     scenario.Key = "asset-tag"
	KeyAssetModel   scenario.Key = "asset-model"
	KeyAssetStatus  scenario.Key = "asset-status"
	KeyAssetURL     scenario.Key = "asset-url"
)

// SuiteConfig is what the suite needs beyond the page objects.
type SuiteConfig struct {
	App         *App
	Credentials config.CredentialsConfig
	// Asset is created by the create-asset scenario. An empty tag keeps the
	// tag the application proposes.
	Asset models.Asset
}

// Suite returns the scenarios of a full asset lifecycle in execution order.
func Suite(cfg SuiteConfig) []scenario.Scenario {
	app := cfg.App
	return []scenario.Scenario{
		{
			Name:        "login",
			Description: "sign in and land outside the login form",
			Produces:    []scenario.Key{KeySignedInUser},
			Isolation:   scenario.Isolated,
			Steps: []scenario.Step{
				{Name: "open login form", Run: func(t *scenario.T) {
					t.Must(app.Login(t.Page()).Open())
				}},
				{Name: "submit credentials", Run: func(t *scenario.T) {
					t.Must(app.Login(t.Page()).Login(cfg.Credentials.Username, cfg.Credentials.Password))
					assert.False(t, IsLoginURL(t.Page().URL()), "still on the login form: %s", t.Page().URL())
				}},
				{Name: "dashboard is shown", Run: func(t *scenario.T) {
					dash := app.Dashboard(t.Page())
					t.Must(dash.WaitPresent(NavTagSearch, dash.Timeouts().Default))
					t.State().Set(KeySignedInUser, cfg.Credentials.Username)
				}},
			},
		},
		{
			Name:        "open-create-asset",
			Description: "reach the asset form through Create New > Asset",
			Requires:    []scenario.Key{KeySignedInUser},
			Steps: []scenario.Step{
				{Name: "open dashboard", Run: func(t *scenario.T) {
					t.Must(app.Dashboard(t.Page()).Open())
				}},
				{Name: "follow create menu", Run: func(t *scenario.T) {
					create, err := app.Dashboard(t.Page()).OpenCreateAsset()
					t.Must(err)
					assert.Contains(t, t.Page().URL(), "/hardware/create")
					visible, err := create.IsVisible(CreateTag)
					t.Must(err)
					assert.True(t, visible, "asset tag field is visible")
				}},
			},
		},
		{
			Name:        "create-asset",
			Description: "fill and submit the asset form",
			Requires:    []scenario.Key{KeySignedInUser},
			Produces:    []scenario.Key{KeyAssetTag, KeyAssetModel, KeyAssetStatus},
			Steps: []scenario.Step{
				{Name: "open form", Run: func(t *scenario.T) {
					t.Must(app.CreateAsset(t.Page()).Open())
				}},
				{Name: "submit asset", Run: func(t *scenario.T) {
					created, err := app.CreateAsset(t.Page()).Create(t.Context(), cfg.Asset)
					t.Must(err)
					require.NotEmpty(t, created.Tag)
					t.State().Set(KeyAssetTag, created.Tag)
					t.State().Set(KeyAssetModel, created.Model)
					t.State().Set(KeyAssetStatus, created.Status)
					t.Logf("created asset %s", created.Label())
				}},
			},
		},
		{
			Name:        "recent-activity",
			Description: "the dashboard feed links to the new asset",
			Requires:    []scenario.Key{KeyAssetTag, KeyAssetModel},
			Steps: []scenario.Step{
				{Name: "open dashboard", Run: func(t *scenario.T) {
					t.Must(app.Dashboard(t.Page()).Open())
				}},
				{Name: "feed mentions asset", Run: func(t *scenario.T) {
					tag := t.State().String(KeyAssetTag)
					row, err := app.Dashboard(t.Page()).WaitRecentActivity(t.Context(), tag)
					t.Must(err)
					assert.Contains(t, row.Text, "("+tag+")")
					assert.True(t, containsFold(row.Text, searchTerm(t.State().String(KeyAssetModel))),
						"feed entry %q names the model", row.Text)
				}},
			},
		},
		{
			Name:        "search-asset",
			Description: "searching the tag lists exactly the new asset",
			Requires:    []scenario.Key{KeyAssetTag, KeyAssetModel, KeyAssetStatus},
			Produces:    []scenario.Key{KeyAssetURL},
			Steps: []scenario.Step{
				{Name: "open asset list", Run: func(t *scenario.T) {
					t.Must(app.Assets(t.Page()).Open())
				}},
				{Name: "search tag", Run: func(t *scenario.T) {
					assets := app.Assets(t.Page())
					tag := t.State().String(KeyAssetTag)
					t.Must(assets.Search(t.Context(), tag))

					rows, err := assets.FindByTag(tag)
					t.Must(err)
					require.Len(t, rows, 1, "rows listing %s", tag)
					assert.Equal(t, tag, rows[0].Tag)
					assert.True(t, strings.EqualFold(t.State().String(KeyAssetStatus), rows[0].Status),
						"status cell %q", rows[0].Status)
					assert.True(t, containsFold(rows[0].Model, searchTerm(t.State().String(KeyAssetModel))),
						"model cell %q", rows[0].Model)
				}},
				{Name: "open row", Run: func(t *scenario.T) {
					assets := app.Assets(t.Page())
					rows, err := assets.FindByTag(t.State().String(KeyAssetTag))
					t.Must(err)
					require.NotEmpty(t, rows)
					_, err = assets.OpenRow(rows[0])
					t.Must(err)
					t.State().Set(KeyAssetURL, t.Page().URL())
				}},
			},
		},
		{
			Name:        "asset-details",
			Description: "the detail page shows what was submitted",
			Requires:    []scenario.Key{KeyAssetURL, KeyAssetTag, KeyAssetModel, KeyAssetStatus},
			Steps: []scenario.Step{
				{Name: "open details", Run: func(t *scenario.T) {
					t.Must(app.AssetDetails(t.Page()).Open(t.State().String(KeyAssetURL)))
				}},
				{Name: "fields match", Run: func(t *scenario.T) {
					shown, err := app.AssetDetails(t.Page()).Asset()
					t.Must(err)
					assert.Contains(t, shown.Tag, t.State().String(KeyAssetTag))
					assert.True(t, containsFold(shown.Model, searchTerm(t.State().String(KeyAssetModel))), "model %q", shown.Model)
					assert.True(t, containsFold(shown.Status, t.State().String(KeyAssetStatus)), "status %q", shown.Status)
				}},
			},
		},
		{
			Name:        "asset-history",
			Description: "the history tab records the creation",
			Requires:    []scenario.Key{KeyAssetURL},
			Steps: []scenario.Step{
				{Name: "open history tab", Run: func(t *scenario.T) {
					details := app.AssetDetails(t.Page())
					t.Must(details.Open(t.State().String(KeyAssetURL)))
					t.Must(details.OpenHistory())
				}},
				{Name: "creation entry listed", Run: func(t *scenario.T) {
					entry, err := app.AssetDetails(t.Page()).WaitCreationEntry(t.Context())
					t.Must(err)
					t.Logf("history entry: %s", entry.Text)
				}},
			},
		},
		{
			Name:        "delete-asset",
			Description: "delete the asset and confirm it is no longer listed",
			Requires:    []scenario.Key{KeyAssetURL, KeyAssetTag},
			Steps: []scenario.Step{
				{Name: "delete", Run: func(t *scenario.T) {
					details := app.AssetDetails(t.Page())
					t.Must(details.Open(t.State().String(KeyAssetURL)))
					t.Must(details.Delete())
				}},
				{Name: "search finds nothing", Run: func(t *scenario.T) {
					assets := app.Assets(t.Page())
					tag := t.State().String(KeyAssetTag)
					t.Must(assets.Open())
					t.Must(assets.Search(t.Context(), tag))
					rows, err := assets.FindByTag(tag)
					t.Must(err)
					assert.Empty(t, rows, "deleted asset %s is still listed", tag)
				}},
			},
		},
	}
}
