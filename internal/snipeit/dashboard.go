package snipeit

import (
	"context"

	"github.com/gotrs-io/snipeit-e2e/internal/pages"
)

// DashboardPage is the landing page after sign-in: the top navigation with
// the Create New menu and the recent activity feed.
type DashboardPage struct {
	*pages.Base
	app *App
}

func (p *DashboardPage) Open() error {
	return p.Navigate("/", NavTagSearch)
}

// OpenCreateAsset follows Create New > Asset in the top navigation.
func (p *DashboardPage) OpenCreateAsset() (*CreateAssetPage, error) {
	if err := p.ClickText(NavCreateNew, "Create New"); err != nil {
		return nil, err
	}
	if err := p.ClickText(NavCreateAsset, "Asset"); err != nil {
		return nil, err
	}
	create := p.app.CreateAsset(p.Page())
	if err := create.WaitReady(); err != nil {
		return nil, err
	}
	return create, nil
}

// OpenAssets follows the Assets link in the navigation.
func (p *DashboardPage) OpenAssets() (*AssetsPage, error) {
	if err := p.Click(NavAssets); err != nil {
		return nil, err
	}
	assets := p.app.Assets(p.Page())
	if err := assets.WaitPresent(AssetsTable, p.Timeouts().Default); err != nil {
		return nil, err
	}
	return assets, nil
}

// RecentActivity returns the activity feed links that mention tag.
func (p *DashboardPage) RecentActivity(tag string) ([]pages.Row, error) {
	return pages.Collect(p.Query(RecentAssets, pages.Contains(tag)))
}

// WaitRecentActivity waits until the feed links to tag and returns that link.
func (p *DashboardPage) WaitRecentActivity(ctx context.Context, tag string) (pages.Row, error) {
	var found pages.Row
	err := p.WaitForState(ctx, "recent activity for "+tag, func(context.Context) (bool, error) {
		row, ok, err := pages.First(p.Query(RecentAssets, pages.Contains(tag)))
		found = row
		return ok, err
	}, p.Timeouts().Default)
	return found, err
}
