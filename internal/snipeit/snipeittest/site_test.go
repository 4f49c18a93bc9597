package snipeittest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/snipeit-e2e/internal/models"
	"github.com/gotrs-io/snipeit-e2e/internal/snipeit"
)

func do(t *testing.T, s *Site, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func signIn(t *testing.T, s *Site) *http.Cookie {
	t.Helper()
	w := do(t, s, http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"password"}})
	require.Equal(t, http.StatusFound, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func TestLoginAndSession(t *testing.T) {
	s := New(snipeit.Select2)

	w := do(t, s, http.MethodGet, "/hardware", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = do(t, s, http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"bad"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, parse(t, w).Find(".alert-danger").Text(), "incorrect")

	cookie := signIn(t, s)
	w = do(t, s, http.MethodGet, "/", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, 1, doc.Find("#tagsearch").Length())
	assert.Equal(t, "admin", strings.TrimSpace(doc.Find(".user-menu .dropdown-toggle").Text()))

	w = do(t, s, http.MethodGet, "/", nil, &http.Cookie{Name: sessionCookie, Value: "forged"})
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestSessionExpires(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s := New(snipeit.Native, WithClock(func() time.Time { return now }))
	cookie := signIn(t, s)
	now = now.Add(2 * sessionTTL)
	w := do(t, s, http.MethodGet, "/", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestCreateValidation(t *testing.T) {
	s := New(snipeit.Native, WithAssets(models.Asset{Tag: "TAKEN001", Model: "iPad Air", Status: "Pending"}))
	cookie := signIn(t, s)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing tag", url.Values{"model_id": {"1"}, "status_id": {"1"}}, "asset tag field is required"},
		{"duplicate tag", url.Values{"asset_tag": {"taken001"}, "model_id": {"1"}, "status_id": {"1"}}, "must be unique"},
		{"unknown model", url.Values{"asset_tag": {"NEW00001"}, "model_id": {"99"}, "status_id": {"1"}}, "model id"},
		{"missing status", url.Values{"asset_tag": {"NEW00001"}, "model_id": {"1"}}, "status id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/hardware", tt.form, cookie)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, parse(t, w).Find(".alert-danger").Text(), tt.want)
		})
	}
	assert.Len(t, s.Assets(), 1)
}

func TestCreateSearchAndDelete(t *testing.T) {
	s := New(snipeit.Select2)
	cookie := signIn(t, s)

	w := do(t, s, http.MethodGet, "/hardware/create", nil, cookie)
	doc := parse(t, w)
	tag, _ := doc.Find(".form-group #asset_tag").Attr("value")
	assert.Equal(t, "00000001", tag)
	assert.Equal(t, 3, doc.Find(".select2-dropdown").Length())

	w = do(t, s, http.MethodPost, "/hardware", url.Values{
		"asset_tags[1]": {"AB12CD34"},
		"model_id":      {"1"},
		"status_id":     {"1"},
		"assigned_user": {"2"},
		"serials[1]":    {"SERIAL01"},
		"notes":         {"first"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/hardware?created=1", w.Header().Get("Location"))

	a, ok := s.Asset("AB12CD34")
	require.True(t, ok)
	assert.Equal(t, "Alison Gianotto", a.CheckedOutTo)
	assert.Equal(t, []string{"created", "checked out"}, s.History("AB12CD34"))

	doc = parse(t, do(t, s, http.MethodGet, "/hardware?search=ab12", nil, cookie))
	rows := doc.Find(".table-responsive tbody tr")
	require.Equal(t, 1, rows.Length())
	assert.Contains(t, rows.Text(), "Ready to Deploy")

	doc = parse(t, do(t, s, http.MethodGet, "/hardware?search=zzz", nil, cookie))
	assert.Equal(t, 1, doc.Find("tr.no-records-found").Length())

	w = do(t, s, http.MethodGet, "/hardware/bytag?assetTag=AB12CD34", nil, cookie)
	assert.Equal(t, "/hardware/1", w.Header().Get("Location"))

	doc = parse(t, do(t, s, http.MethodGet, "/hardware/1", nil, cookie))
	assert.Equal(t, "AB12CD34", doc.Find(".js-copy-assettag").Text())
	assert.Equal(t, 2, doc.Find("#assetHistory tbody tr").Length())

	w = do(t, s, http.MethodPost, "/hardware/1/delete", url.Values{}, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, s.Assets())
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/hardware/1", nil, cookie).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodPost, "/hardware/1/delete", url.Values{}, cookie).Code)
}

func TestNotesAreSanitized(t *testing.T) {
	s := New(snipeit.Native, WithAssets(models.Asset{Tag: "XSS00001", Model: "iPad Air", Status: "Pending", Notes: `<i>ok</i><img src=x onerror=alert(1)>`}))
	cookie := signIn(t, s)
	body := do(t, s, http.MethodGet, "/hardware/1", nil, cookie).Body.String()
	assert.Contains(t, body, "<i>ok</i>")
	assert.NotContains(t, body, "onerror")
}

func TestScripts(t *testing.T) {
	s := New(snipeit.Select2)
	cookie := signIn(t, s)
	doc := parse(t, do(t, s, http.MethodGet, "/hardware/create", nil, cookie))

	openSelect2(doc, doc.Find("#select2-status_select_id-container"))
	dropdown := doc.Find("#select2-dropdown-status_select_id")
	_, hidden := dropdown.Attr("hidden")
	assert.False(t, hidden)
	assert.True(t, dropdown.HasClass(openClass))

	filterSelect2(doc, dropdown.Find(".select2-search__field"), "pend")
	visible := dropdown.Find(".select2-results__option:not([hidden])")
	require.Equal(t, 1, visible.Length())
	assert.Equal(t, "Pending", visible.Text())

	pickSelect2(doc, visible)
	assert.Equal(t, "2", doc.Find("select#status_select_id option[selected]").AttrOr("value", ""))
	assert.Equal(t, "Pending", doc.Find("#select2-status_select_id-container").Text())
	_, hidden = dropdown.Attr("hidden")
	assert.True(t, hidden)

	menu := doc.Find("li.dropdown").First().Find(".dropdown-menu")
	toggleDropdown(doc, doc.Find("a.dropdown-toggle").First())
	_, hidden = menu.Attr("hidden")
	assert.False(t, hidden)
	toggleDropdown(doc, doc.Find("a.dropdown-toggle").First())
	_, hidden = menu.Attr("hidden")
	assert.True(t, hidden)
}
