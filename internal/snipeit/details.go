package snipeit

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/locator"
	"github.com/gotrs-io/snipeit-e2e/internal/models"
	"github.com/gotrs-io/snipeit-e2e/internal/pages"
)

// creationActions are the history entries written when an asset is created
// or handed out on creation.
var creationActions = []string{"created", "checked out"}

// AssetDetailsPage is the detail view of one asset.
type AssetDetailsPage struct {
	*pages.Base
	variant Variant
}

func (p *AssetDetailsPage) defining() locator.Name {
	if p.variant == Native {
		return DetailsTerms
	}
	return DetailsTag
}

// Open loads the detail page at url.
func (p *AssetDetailsPage) Open(url string) error {
	return p.Base.Open(url, p.defining())
}

// WaitReady waits for the element that identifies the detail page.
func (p *AssetDetailsPage) WaitReady() error {
	return p.WaitPresent(p.defining(), p.Timeouts().Default)
}

// Definitions returns the dt/dd label pairs of the page keyed by label.
func (p *AssetDetailsPage) Definitions() (map[string]string, error) {
	terms, err := pages.Collect(p.Query(DetailsTerms, nil))
	if err != nil {
		return nil, err
	}
	values, err := pages.Collect(p.Query(DetailsValues, nil))
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(terms))
	for i, t := range terms {
		if i >= len(values) {
			break
		}
		out[strings.TrimSuffix(t.Text, ":")] = values[i].Text
	}
	return out, nil
}

// Asset reads the fields shown on the page. Fields the markup does not
// show are left empty.
func (p *AssetDetailsPage) Asset() (models.Asset, error) {
	if p.variant == Native {
		defs, err := p.Definitions()
		if err != nil {
			return models.Asset{}, err
		}
		return models.Asset{
			Tag:          defs["Asset Tag"],
			Model:        defs["Model"],
			Status:       defs["Status"],
			CheckedOutTo: defs["Checked Out To"],
			Serial:       defs["Serial"],
			Notes:        defs["Notes"],
		}, nil
	}

	var a models.Asset
	for name, dst := range map[locator.Name]*string{
		DetailsTag:    &a.Tag,
		DetailsModel:  &a.Model,
		DetailsStatus: &a.Status,
		DetailsSerial: &a.Serial,
	} {
		v, err := p.Read(name)
		if err != nil {
			return models.Asset{}, err
		}
		*dst = v
	}
	return a, nil
}

// OpenHistory switches to the history tab.
func (p *AssetDetailsPage) OpenHistory() error {
	if err := p.Click(DetailsHistoryTab); err != nil {
		return err
	}
	return p.WaitForURL("history tab", func(u string) bool {
		return strings.Contains(u, "#history")
	}, p.Timeouts().Short)
}

// History returns the history entries currently listed.
func (p *AssetDetailsPage) History() ([]pages.Row, error) {
	return pages.Collect(p.Query(DetailsHistoryRows, nil))
}

// WaitCreationEntry waits for a history entry recording the creation or
// checkout of the asset and returns it.
func (p *AssetDetailsPage) WaitCreationEntry(ctx context.Context) (pages.Row, error) {
	var entry pages.Row
	err := p.WaitForState(ctx, "creation entry in history", func(context.Context) (bool, error) {
		row, ok, err := pages.First(p.Query(DetailsHistoryRows, IsCreationEntry))
		entry = row
		return ok, err
	}, p.Timeouts().Default)
	return entry, err
}

// IsCreationEntry accepts history rows that mention creation or checkout.
func IsCreationEntry(r pages.Row) bool {
	for _, action := range creationActions {
		if containsFold(r.Text, action) {
			return true
		}
	}
	return false
}

// Delete removes the asset through the confirmation dialog and waits for
// the redirect back to the asset list.
func (p *AssetDetailsPage) Delete() error {
	url := p.CurrentURL()
	if err := p.Click(DetailsDelete); err != nil {
		return err
	}
	if err := p.Click(DetailsConfirm); err != nil {
		return err
	}
	if err := p.WaitForURL("asset list after delete", IsAssetList, p.Timeouts().Default); err != nil {
		return err
	}
	p.Logger().Info("asset deleted", zap.String("url", url))
	return nil
}
