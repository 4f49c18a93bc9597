package snipeit

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
	"github.com/gotrs-io/snipeit-e2e/internal/locator"
	"github.com/gotrs-io/snipeit-e2e/internal/pages"
)

// Options configures the page objects of one run.
type Options struct {
	BaseURL  string
	Variant  Variant
	Timeouts pages.Timeouts
	Logger   *zap.Logger
	Tracer   pages.Tracer
	// Context is the run context; cancelling it aborts page waits.
	Context context.Context
}

// App builds page objects bound to a browser page. It holds the resolver
// for the configured markup variant and no page state.
type App struct {
	opts     Options
	resolver *locator.Resolver
}

// NewApp returns an App for opts.Variant.
func NewApp(opts Options) *App {
	if opts.Variant == "" {
		opts.Variant = Select2
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &App{
		opts:     opts,
		resolver: locator.NewResolver(Registry(opts.Variant), opts.Timeouts.Probe),
	}
}

func (a *App) Variant() Variant { return a.opts.Variant }

func (a *App) base(page browser.Page, screen string) *pages.Base {
	return pages.NewBase(page, a.resolver, pages.Options{
		BaseURL:  a.opts.BaseURL,
		Timeouts: a.opts.Timeouts,
		Logger:   a.opts.Logger.With(zap.String("page", screen)),
		Tracer:   a.opts.Tracer,
		Context:  a.opts.Context,
	})
}

func (a *App) Login(page browser.Page) *LoginPage {
	return &LoginPage{Base: a.base(page, "login")}
}

func (a *App) Dashboard(page browser.Page) *DashboardPage {
	return &DashboardPage{Base: a.base(page, "dashboard"), app: a}
}

func (a *App) Assets(page browser.Page) *AssetsPage {
	return &AssetsPage{Base: a.base(page, "assets"), app: a}
}

func (a *App) CreateAsset(page browser.Page) *CreateAssetPage {
	return &CreateAssetPage{Base: a.base(page, "create-asset"), variant: a.opts.Variant}
}

func (a *App) AssetDetails(page browser.Page) *AssetDetailsPage {
	return &AssetDetailsPage{Base: a.base(page, "asset-details"), variant: a.opts.Variant}
}

// urlPath returns the path of raw without a trailing slash.
func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}

// containsFold reports whether s contains sub under Unicode case folding.
func containsFold(s, sub string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(sub))
}

// searchTerm strips the quote characters model names often carry, such as
// the inch mark in `Macbook Pro 13"`, so the term can be typed and matched.
func searchTerm(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
}
