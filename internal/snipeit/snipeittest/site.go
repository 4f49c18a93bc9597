// Package snipeittest serves an in-memory imitation of the Snipe-IT screens
// the suite drives, in either markup variant. Pair it with htmlfake to run
// page objects and whole scenarios without a browser.
package snipeittest

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xeonx/timeago"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/gotrs-io/snipeit-e2e/internal/browser/htmlfake"
	"github.com/gotrs-io/snipeit-e2e/internal/models"
	"github.com/gotrs-io/snipeit-e2e/internal/snipeit"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookie = "snipeit_session"
	sessionTTL    = time.Hour
	csrfToken     = "e2e-token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type option struct {
	ID   int
	Name string
}

type event struct {
	At      time.Time
	Admin   string
	Action  string
	Target  string
	AssetID int
	Label   string
}

type record struct {
	ID       int
	Tag      string
	ModelID  int
	Model    string
	StatusID int
	Status   string
	UserID   int
	User     string
	Serial   string
	Notes    string
	Deleted  bool
	History  []event
}

func (r *record) asset() models.Asset {
	return models.Asset{
		Tag:          r.Tag,
		Model:        r.Model,
		Status:       r.Status,
		CheckedOutTo: r.User,
		Serial:       r.Serial,
		Notes:        r.Notes,
	}
}

// Site is the fake application. It is safe for concurrent use.
type Site struct {
	variant   snipeit.Variant
	router    *gin.Engine
	templates *pongo2.TemplateSet
	secret    []byte
	notes     *bluemonday.Policy
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	username string
	password string
	models   []option
	statuses []option
	users    []option
	assets   []*record
	activity []event
	nextTag  int
}

// Option configures a Site.
type Option func(*Site)

// WithCredentials sets the only account that can sign in.
func WithCredentials(username, password string) Option {
	return func(s *Site) { s.username, s.password = username, password }
}

// WithModels replaces the asset models offered by the create form.
func WithModels(names ...string) Option {
	return func(s *Site) { s.models = options(names) }
}

// WithStatuses replaces the status labels offered by the create form.
func WithStatuses(names ...string) Option {
	return func(s *Site) { s.statuses = options(names) }
}

// WithUsers replaces the users an asset can be checked out to.
func WithUsers(names ...string) Option {
	return func(s *Site) { s.users = options(names) }
}

// WithAssets seeds existing assets. Unknown models and statuses are added.
func WithAssets(assets ...models.Asset) Option {
	return func(s *Site) {
		for _, a := range assets {
			s.seed(a)
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Site) { s.logger = logger }
}

// WithClock fixes the time stamped on history entries.
func WithClock(now func() time.Time) Option {
	return func(s *Site) { s.now = now }
}

func options(names []string) []option {
	out := make([]option, len(names))
	for i, n := range names {
		out[i] = option{ID: i + 1, Name: n}
	}
	return out
}

// New returns a site rendering the given markup variant with the demo
// account admin/password.
func New(variant snipeit.Variant, opts ...Option) *Site {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	s := &Site{
		variant:   variant,
		templates: pongo2.NewSet("snipeit", pongo2.NewFSLoader(sub)),
		secret:    []byte("snipeit-e2e-fake"),
		notes:     bluemonday.UGCPolicy(),
		logger:    zap.NewNop(),
		now:       time.Now,
		username:  "admin",
		password:  "password",
		models:    options([]string{`Macbook Pro 13"`, "Dell XPS 13", "iPad Air"}),
		statuses:  options([]string{"Ready to Deploy", "Pending", "Archived"}),
		users:     options([]string{"Admin User", "Alison Gianotto", "Jane Smith"}),
		nextTag:   1,
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

func (s *Site) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/login", s.showLogin)
	r.POST("/login", s.login)
	r.GET("/logout", s.logout)

	app := r.Group("/", s.requireLogin())
	app.GET("/", s.dashboard)
	app.GET("/hardware", s.listAssets)
	app.POST("/hardware", s.createAsset)
	app.GET("/hardware/create", s.createForm)
	app.GET("/hardware/bytag", s.byTag)
	app.GET("/hardware/:id", s.showAsset)
	app.POST("/hardware/:id/delete", s.deleteAsset)
	return r
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Engine returns an htmlfake engine serving the site with the client-side
// widgets of its variant emulated.
func (s *Site) Engine(opts ...htmlfake.Option) *htmlfake.Engine {
	return htmlfake.New(s, append([]htmlfake.Option{htmlfake.WithScripts(Scripts()...)}, opts...)...)
}

// Assets returns the assets that have not been deleted.
func (s *Site) Assets() []models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Asset
	for _, r := range s.assets {
		if !r.Deleted {
			out = append(out, r.asset())
		}
	}
	return out
}

// Asset returns the live asset with tag.
func (s *Site) Asset(tag string) (models.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.byTagLocked(tag); r != nil {
		return r.asset(), true
	}
	return models.Asset{}, false
}

// History returns the actions recorded for tag, oldest first, including
// those of a deleted asset.
func (s *Site) History(tag string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.assets {
		if r.Tag != tag {
			continue
		}
		for _, e := range r.History {
			out = append(out, e.Action)
		}
	}
	return out
}

func (s *Site) seed(a models.Asset) {
	modelID := findOrAdd(&s.models, a.Model)
	statusID := findOrAdd(&s.statuses, a.Status)
	r := &record{
		ID:       len(s.assets) + 1,
		Tag:      a.Tag,
		ModelID:  modelID,
		Model:    a.Model,
		StatusID: statusID,
		Status:   a.Status,
		Serial:   a.Serial,
		Notes:    a.Notes,
	}
	s.record(r, "created", "")
	s.assets = append(s.assets, r)
}

func findOrAdd(list *[]option, name string) int {
	for _, o := range *list {
		if o.Name == name {
			return o.ID
		}
	}
	id := len(*list) + 1
	*list = append(*list, option{ID: id, Name: name})
	return id
}

func (s *Site) record(r *record, action, target string) {
	e := event{
		At:      s.now(),
		Admin:   s.username,
		Action:  action,
		Target:  target,
		AssetID: r.ID,
		Label:   fmt.Sprintf("(%s) - %s", r.Tag, r.Model),
	}
	r.History = append(r.History, e)
	s.activity = append(s.activity, e)
}

func (s *Site) byTagLocked(tag string) *record {
	for _, r := range s.assets {
		if !r.Deleted && strings.EqualFold(r.Tag, tag) {
			return r
		}
	}
	return nil
}

func (s *Site) byIDLocked(raw string) *record {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	for _, r := range s.assets {
		if r.ID == id && !r.Deleted {
			return r
		}
	}
	return nil
}

func lookup(list []option, raw string) (option, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return option{}, false
	}
	for _, o := range list {
		if o.ID == id {
			return o, true
		}
	}
	return option{}, false
}

// render executes a template into the response.
func (s *Site) render(c *gin.Context, code int, name string, ctx pongo2.Context) {
	tpl, err := s.templates.FromCache(name)
	if err != nil {
		c.String(http.StatusInternalServerError, "template %s: %v", name, err)
		return
	}
	ctx["token"] = csrfToken
	if _, ok := ctx["user"]; !ok {
		ctx["user"] = c.GetString("user")
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(code)
	if err := tpl.ExecuteWriter(ctx, c.Writer); err != nil {
		s.logger.Error("render failed", zap.String("template", name), zap.Error(err))
	}
}

func (s *Site) variantTemplate(page string) string {
	return fmt.Sprintf("%s_%s.html", page, s.variant)
}

func (s *Site) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()))
	}
}

func (s *Site) issueSession(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		Issuer:    "snipeit-fake",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

var errInvalidSession = errors.New("invalid session")

func (s *Site) parseSession(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSession
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errInvalidSession
	}
	return claims.Subject, nil
}

func (s *Site) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err == nil {
			var user string
			if user, err = s.parseSession(token); err == nil {
				c.Set("user", user)
				c.Next()
				return
			}
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

func (s *Site) showLogin(c *gin.Context) {
	s.render(c, http.StatusOK, "login.html", pongo2.Context{"title": "Login"})
}

func (s *Site) login(c *gin.Context) {
	username := c.PostForm("username")
	if username != s.username || c.PostForm("password") != s.password {
		s.render(c, http.StatusOK, "login.html", pongo2.Context{
			"title":    "Login",
			"username": username,
			"error":    "Username or password is incorrect.",
		})
		return
	}
	token, err := s.issueSession(username)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.SetCookie(sessionCookie, token, int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (s *Site) logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}

type activityView struct {
	When    string
	Admin   string
	Action  string
	Target  string
	AssetID int
	Label   string
}

func (s *Site) view(e event) activityView {
	return activityView{
		When:    timeago.English.FormatReference(e.At, s.now()),
		Admin:   e.Admin,
		Action:  e.Action,
		Target:  e.Target,
		AssetID: e.AssetID,
		Label:   e.Label,
	}
}

func (s *Site) dashboard(c *gin.Context) {
	s.mu.Lock()
	var feed []activityView
	for i := len(s.activity) - 1; i >= 0 && len(feed) < 10; i-- {
		feed = append(feed, s.view(s.activity[i]))
	}
	s.mu.Unlock()
	s.render(c, http.StatusOK, "dashboard.html", pongo2.Context{"title": "Dashboard", "activity": feed})
}

func (s *Site) listAssets(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	fold := cases.Fold()
	term := fold.String(search)

	s.mu.Lock()
	var rows []record
	for _, r := range s.assets {
		if r.Deleted {
			continue
		}
		if term != "" && !strings.Contains(fold.String(r.Tag+" "+r.Model+" "+r.Serial), term) {
			continue
		}
		rows = append(rows, *r)
	}
	s.mu.Unlock()

	ctx := pongo2.Context{"title": "Assets", "assets": rows, "search": search}
	switch {
	case c.Query("created") != "":
		ctx["success"] = "Asset was created successfully."
	case c.Query("deleted") != "":
		ctx["success"] = "The asset was deleted successfully."
	}
	s.render(c, http.StatusOK, s.variantTemplate("assets"), ctx)
}

type formField struct {
	ID          string
	Name        string
	Label       string
	Placeholder string
	Widget      string
	Options     []option
}

func (s *Site) fields() []formField {
	return []formField{
		{ID: "model_select_id", Name: "model_id", Label: "Model", Placeholder: "Select a Model", Widget: "10", Options: s.models},
		{ID: "status_select_id", Name: "status_id", Label: "Status", Placeholder: "Select Status", Widget: "20", Options: s.statuses},
		{ID: "assigned_user_select", Name: "assigned_user", Label: "Checkout to", Placeholder: "Select a User", Widget: "30", Options: s.users},
	}
}

func (s *Site) createForm(c *gin.Context) {
	s.mu.Lock()
	tag := fmt.Sprintf("%08d", s.nextTag)
	fields := s.fields()
	s.mu.Unlock()
	s.render(c, http.StatusOK, s.variantTemplate("create"), pongo2.Context{
		"title":  "Create Asset",
		"tag":    tag,
		"fields": fields,
	})
}

func (s *Site) createAsset(c *gin.Context) {
	tag := strings.TrimSpace(c.PostForm("asset_tag"))
	if tag == "" {
		tag = strings.TrimSpace(c.PostForm("asset_tags[1]"))
	}
	serial := c.PostForm("serial")
	if serial == "" {
		serial = c.PostForm("serials[1]")
	}

	s.mu.Lock()
	model, hasModel := lookup(s.models, c.PostForm("model_id"))
	status, hasStatus := lookup(s.statuses, c.PostForm("status_id"))
	user, hasUser := lookup(s.users, c.PostForm("assigned_user"))

	var problem string
	switch {
	case tag == "":
		problem = "The asset tag field is required."
	case s.byTagLocked(tag) != nil:
		problem = "The asset tag must be unique."
	case !hasModel:
		problem = "The model id field is required."
	case !hasStatus:
		problem = "The status id field is required."
	}
	if problem != "" {
		fields := s.fields()
		s.mu.Unlock()
		s.render(c, http.StatusUnprocessableEntity, s.variantTemplate("create"), pongo2.Context{
			"title":  "Create Asset",
			"tag":    tag,
			"fields": fields,
			"error":  problem,
		})
		return
	}

	r := &record{
		ID:       len(s.assets) + 1,
		Tag:      tag,
		ModelID:  model.ID,
		Model:    model.Name,
		StatusID: status.ID,
		Status:   status.Name,
		Serial:   strings.TrimSpace(serial),
		Notes:    c.PostForm("notes"),
	}
	s.record(r, "created", "")
	if hasUser {
		r.UserID, r.User = user.ID, user.Name
		s.record(r, "checked out", user.Name)
	}
	s.assets = append(s.assets, r)
	s.nextTag++
	s.mu.Unlock()

	s.logger.Info("asset created", zap.String("tag", r.Tag), zap.String("model", r.Model))
	c.Redirect(http.StatusSeeOther, "/hardware?created="+strconv.Itoa(r.ID))
}

func (s *Site) byTag(c *gin.Context) {
	s.mu.Lock()
	r := s.byTagLocked(c.Query("assetTag"))
	s.mu.Unlock()
	if r == nil {
		s.notFound(c, "Asset does not exist.")
		return
	}
	c.Redirect(http.StatusFound, "/hardware/"+strconv.Itoa(r.ID))
}

func (s *Site) showAsset(c *gin.Context) {
	s.mu.Lock()
	r := s.byIDLocked(c.Param("id"))
	if r == nil {
		s.mu.Unlock()
		s.notFound(c, "Asset does not exist.")
		return
	}
	asset := *r
	history := make([]activityView, 0, len(r.History))
	for _, e := range r.History {
		history = append(history, s.view(e))
	}
	s.mu.Unlock()

	s.render(c, http.StatusOK, s.variantTemplate("details"), pongo2.Context{
		"title":   "View Asset " + asset.Tag,
		"asset":   asset,
		"notes":   s.notes.Sanitize(asset.Notes),
		"history": history,
	})
}

func (s *Site) deleteAsset(c *gin.Context) {
	s.mu.Lock()
	r := s.byIDLocked(c.Param("id"))
	if r != nil {
		r.Deleted = true
		s.record(r, "deleted", "")
	}
	s.mu.Unlock()
	if r == nil {
		s.notFound(c, "Asset does not exist.")
		return
	}
	c.Redirect(http.StatusSeeOther, "/hardware?deleted=1")
}

func (s *Site) notFound(c *gin.Context, message string) {
	s.render(c, http.StatusNotFound, "notfound.html", pongo2.Context{"title": "Not Found", "message": message})
}
