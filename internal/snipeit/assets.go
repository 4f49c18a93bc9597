package snipeit

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/pages"
)

const rowLink = "td a[href*='/hardware/']"

// AssetRow is one row of the asset list, with the cells located by their
// column headers.
type AssetRow struct {
	pages.Row
	Tag    string
	Model  string
	Status string
}

// AssetsPage is the hardware list with its search box.
type AssetsPage struct {
	*pages.Base
	app *App
}

func (p *AssetsPage) Open() error {
	return p.Navigate("/hardware", AssetsTable)
}

// Search types term into the search box, submits it and waits until every
// listed row matches term. An empty table also satisfies the wait.
func (p *AssetsPage) Search(ctx context.Context, term string) error {
	if err := p.Fill(AssetsSearch, term); err != nil {
		return err
	}
	if err := p.Press(AssetsSearch, "Enter"); err != nil {
		return err
	}
	return p.WaitForState(ctx, fmt.Sprintf("results filtered by %q", term), func(context.Context) (bool, error) {
		for row, err := range p.Query(AssetsRows, nil) {
			if err != nil {
				return false, err
			}
			if !containsFold(row.Text, term) {
				return false, nil
			}
		}
		return true, nil
	}, p.Timeouts().Default)
}

// Rows yields the listed assets accepted by pred. Like pages.Base.Query the
// sequence rescans the table every time it is ranged over.
func (p *AssetsPage) Rows(pred pages.RowPredicate) iter.Seq2[AssetRow, error] {
	return func(yield func(AssetRow, error) bool) {
		cols, err := p.columns()
		if err != nil {
			yield(AssetRow{}, err)
			return
		}
		for row, err := range p.Query(AssetsRows, pred) {
			if err != nil {
				if !yield(AssetRow{}, err) {
					return
				}
				continue
			}
			ar := AssetRow{
				Row:    row,
				Tag:    strings.TrimSpace(row.Cell(cols.index("Asset Tag"))),
				Model:  strings.TrimSpace(row.Cell(cols.index("Model"))),
				Status: strings.TrimSpace(row.Cell(cols.index("Status"))),
			}
			if !yield(ar, nil) {
				return
			}
		}
	}
}

// FindByTag returns the listed rows whose text contains tag.
func (p *AssetsPage) FindByTag(tag string) ([]AssetRow, error) {
	var out []AssetRow
	for row, err := range p.Rows(pages.Contains(tag)) {
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
	return out, nil
}

// OpenRow follows the asset link of row to its detail page.
func (p *AssetsPage) OpenRow(row AssetRow) (*AssetDetailsPage, error) {
	link := row.Locator().Locator(rowLink).First()
	if err := p.ClickLocator("asset row link", link); err != nil {
		return nil, err
	}
	details := p.app.AssetDetails(p.Page())
	if err := details.WaitReady(); err != nil {
		return nil, err
	}
	p.Logger().Debug("opened asset", zap.String("tag", row.Tag), zap.String("url", p.CurrentURL()))
	return details, nil
}

type columns []string

func (c columns) index(header string) int {
	for i, h := range c {
		if strings.EqualFold(strings.TrimSpace(h), header) {
			return i
		}
	}
	return -1
}

func (p *AssetsPage) columns() (columns, error) {
	var cols columns
	for h, err := range p.Query(AssetsHeaders, nil) {
		if err != nil {
			return nil, err
		}
		cols = append(cols, h.Text)
	}
	return cols, nil
}

// IsAssetList reports whether raw is the hardware list, as shown after an
// asset is saved or deleted.
func IsAssetList(raw string) bool {
	return strings.HasSuffix(urlPath(raw), "/hardware")
}
