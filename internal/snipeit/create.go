package snipeit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/locator"
	"github.com/gotrs-io/snipeit-e2e/internal/models"
	"github.com/gotrs-io/snipeit-e2e/internal/pages"
)

// ErrAssetRejected is returned when the create form comes back with a
// validation error instead of a success notification.
var ErrAssetRejected = errors.New("asset rejected")

// CreateAssetPage is the hardware create form.
type CreateAssetPage struct {
	*pages.Base
	variant Variant
}

func (p *CreateAssetPage) Open() error {
	return p.Navigate("/hardware/create", CreateTag)
}

// WaitReady waits for the asset tag field that identifies the form.
func (p *CreateAssetPage) WaitReady() error {
	return p.WaitPresent(CreateTag, p.Timeouts().Default)
}

// GeneratedTag returns the tag the application proposed for the new asset.
func (p *CreateAssetPage) GeneratedTag() (string, error) {
	return p.ReadValue(CreateTag)
}

// Create fills and submits the form, then waits for the success
// notification. An empty asset.Tag keeps the tag the application proposed.
// The returned asset carries the tag that was submitted.
func (p *CreateAssetPage) Create(ctx context.Context, asset models.Asset) (models.Asset, error) {
	if asset.Tag == "" {
		tag, err := p.GeneratedTag()
		if err != nil {
			return asset, err
		}
		asset.Tag = tag
	} else if err := p.Fill(CreateTag, asset.Tag); err != nil {
		return asset, err
	}
	if err := asset.Validate(); err != nil {
		return asset, err
	}

	if err := p.choose(ctx, "model", asset.Model); err != nil {
		return asset, err
	}
	if err := p.choose(ctx, "status", asset.Status); err != nil {
		return asset, err
	}
	if asset.CheckedOutTo != "" {
		if err := p.choose(ctx, "user", asset.CheckedOutTo); err != nil {
			return asset, err
		}
	}
	if asset.Serial != "" {
		if err := p.Fill(CreateSerial, asset.Serial); err != nil {
			return asset, err
		}
	}
	if asset.Notes != "" {
		if err := p.Fill(CreateNotes, asset.Notes); err != nil {
			return asset, err
		}
	}

	if err := p.Click(CreateSubmit); err != nil {
		return asset, err
	}
	if err := p.WaitSaved(ctx); err != nil {
		return asset, err
	}
	p.Logger().Info("asset created", zap.String("tag", asset.Tag), zap.String("model", asset.Model))
	return asset, nil
}

// WaitSaved waits for the success notification. A validation error shown
// instead ends the wait with ErrAssetRejected.
func (p *CreateAssetPage) WaitSaved(ctx context.Context) error {
	return p.WaitForState(ctx, "asset saved notification", func(context.Context) (bool, error) {
		ok, err := p.IsVisible(CreateSuccess)
		if err != nil || ok {
			return ok, err
		}
		if msg, _ := p.Read(CreateError); msg != "" {
			return false, fmt.Errorf("%w: %s", ErrAssetRejected, msg)
		}
		return false, nil
	}, p.Timeouts().Long)
}

type field struct {
	open, results locator.Name
	options, sel  locator.Name
}

var fields = map[string]field{
	"model":  {open: Select2ModelOpen, results: Select2ModelResults, options: CreateModelOption, sel: CreateModel},
	"status": {open: Select2StatusOpen, results: Select2StatusResult, options: CreateStatusOpt, sel: CreateStatus},
	"user":   {open: Select2UserOpen, results: Select2UserResults, options: CreateUserOption, sel: CreateUser},
}

func (p *CreateAssetPage) choose(ctx context.Context, kind, text string) error {
	f := fields[kind]
	if p.variant == Native {
		return p.chooseNative(ctx, kind, f, text)
	}
	return p.chooseSelect2(ctx, kind, f, text)
}

// chooseSelect2 opens the widget, types the search term and clicks the
// first result that contains it.
func (p *CreateAssetPage) chooseSelect2(ctx context.Context, kind string, f field, text string) error {
	term := searchTerm(text)
	if err := p.Click(f.open); err != nil {
		return err
	}
	if err := p.Fill(Select2Search, term); err != nil {
		return err
	}
	option, err := p.waitOption(ctx, kind, f.results, term, false)
	if err != nil {
		return err
	}
	return p.ClickLocator(kind+" option "+term, option.Locator())
}

// chooseNative picks the first option whose label contains text.
func (p *CreateAssetPage) chooseNative(ctx context.Context, kind string, f field, text string) error {
	option, err := p.waitOption(ctx, kind, f.options, searchTerm(text), true)
	if err != nil {
		return err
	}
	return p.Select(f.sel, option.Text)
}

func (p *CreateAssetPage) waitOption(ctx context.Context, kind string, name locator.Name, term string, skipBlank bool) (pages.Row, error) {
	pred := pages.ContainsFold(term)
	if skipBlank {
		pred = func(r pages.Row) bool { return r.Text != "" && containsFold(r.Text, term) }
	}
	var option pages.Row
	err := p.WaitForState(ctx, fmt.Sprintf("%s option %q", kind, term), func(context.Context) (bool, error) {
		row, ok, err := pages.First(p.Query(name, pred))
		option = row
		return ok, err
	}, p.Timeouts().Default)
	return option, err
}
