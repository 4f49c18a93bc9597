package snipeittest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"

	"github.com/gotrs-io/snipeit-e2e/internal/browser/htmlfake"
)

const openClass = "select2-container--open"

// Scripts emulates the client-side widgets of both markup variants: the
// navigation dropdowns, select2 widgets and the delete confirmation modal.
func Scripts() []htmlfake.Script {
	return []htmlfake.Script{
		{Selector: "a.dropdown-toggle", OnClick: toggleDropdown},
		{Selector: ".select2-selection__rendered", OnClick: openSelect2},
		{Selector: ".select2-search__field", OnFill: filterSelect2},
		{Selector: ".select2-results__option", OnClick: pickSelect2},
		{Selector: ".delete-asset, a[data-tooltip='Delete']", OnClick: showConfirm},
	}
}

func toggleDropdown(_ *goquery.Document, target *goquery.Selection) {
	menu := target.Parent().ChildrenFiltered(".dropdown-menu")
	if _, hidden := menu.Attr("hidden"); hidden {
		menu.RemoveAttr("hidden")
	} else {
		menu.SetAttr("hidden", "")
	}
}

// openSelect2 shows the dropdown of the widget whose rendered label was
// clicked, closing any other.
func openSelect2(doc *goquery.Document, target *goquery.Selection) {
	id := strings.TrimSuffix(strings.TrimPrefix(target.AttrOr("id", ""), "select2-"), "-container")
	closeSelect2(doc.Find(".select2-dropdown"))
	dropdown := doc.Find("#select2-dropdown-" + id)
	dropdown.RemoveAttr("hidden").AddClass(openClass)
	dropdown.Find(".select2-search__field").SetAttr("value", "")
	dropdown.Find(".select2-results__option").RemoveAttr("hidden")
}

func closeSelect2(dropdowns *goquery.Selection) {
	dropdowns.SetAttr("hidden", "").RemoveClass(openClass)
}

func filterSelect2(_ *goquery.Document, target *goquery.Selection, value string) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(value))
	target.Closest(".select2-dropdown").Find(".select2-results__option").Each(func(_ int, opt *goquery.Selection) {
		if strings.Contains(fold.String(opt.Text()), want) {
			opt.RemoveAttr("hidden")
		} else {
			opt.SetAttr("hidden", "")
		}
	})
}

// pickSelect2 copies the clicked result into the hidden native select and
// the widget label, then closes the dropdown.
func pickSelect2(doc *goquery.Document, target *goquery.Selection) {
	dropdown := target.Closest(".select2-dropdown")
	id := dropdown.AttrOr("data-select", "")
	value := target.AttrOr("data-value", "")

	options := doc.Find("select#" + id + " option")
	options.RemoveAttr("selected")
	options.FilterFunction(func(_ int, o *goquery.Selection) bool {
		return o.AttrOr("value", "") == value
	}).SetAttr("selected", "selected")

	doc.Find("#select2-" + id + "-container").SetText(strings.TrimSpace(target.Text()))
	closeSelect2(dropdown)
}

func showConfirm(doc *goquery.Document, _ *goquery.Selection) {
	doc.Find("#dataConfirmModal").RemoveAttr("hidden")
}
