package snipeit

import (
	"github.com/gotrs-io/snipeit-e2e/internal/locator"
)

// Element names shared by both markup variants.
const (
	LoginUsername locator.Name = "login.username"
	LoginPassword locator.Name = "login.password"
	LoginSubmit   locator.Name = "login.submit"
	LoginError    locator.Name = "login.error"

	NavTagSearch   locator.Name = "nav.tag-search"
	NavAssets      locator.Name = "nav.assets"
	NavCreateNew   locator.Name = "nav.create-new"
	NavCreateAsset locator.Name = "nav.create-asset"
	RecentAssets   locator.Name = "dashboard.recent-assets"

	AssetsTable   locator.Name = "assets.table"
	AssetsHeaders locator.Name = "assets.headers"
	AssetsRows    locator.Name = "assets.rows"
	AssetsSearch  locator.Name = "assets.search"
	AssetsCreate  locator.Name = "assets.create"
	AssetsSuccess locator.Name = "assets.success"

	CreateTag     locator.Name = "create.tag"
	CreateSerial  locator.Name = "create.serial"
	CreateNotes   locator.Name = "create.notes"
	CreateSubmit  locator.Name = "create.submit"
	CreateSuccess locator.Name = "create.success"
	CreateError   locator.Name = "create.error"

	// Native selects, also present (hidden) behind select2 widgets.
	CreateModel       locator.Name = "create.model"
	CreateModelOption locator.Name = "create.model.options"
	CreateStatus      locator.Name = "create.status"
	CreateStatusOpt   locator.Name = "create.status.options"
	CreateUser        locator.Name = "create.user"
	CreateUserOption  locator.Name = "create.user.options"

	// select2 widgets.
	Select2ModelOpen    locator.Name = "select2.model.open"
	Select2ModelResults locator.Name = "select2.model.results"
	Select2StatusOpen   locator.Name = "select2.status.open"
	Select2StatusResult locator.Name = "select2.status.results"
	Select2UserOpen     locator.Name = "select2.user.open"
	Select2UserResults  locator.Name = "select2.user.results"
	Select2Search       locator.Name = "select2.search"

	DetailsTag         locator.Name = "details.tag"
	DetailsModel       locator.Name = "details.model"
	DetailsStatus      locator.Name = "details.status"
	DetailsSerial      locator.Name = "details.serial"
	DetailsTerms       locator.Name = "details.terms"
	DetailsValues      locator.Name = "details.values"
	DetailsHistoryTab  locator.Name = "details.history-tab"
	DetailsHistoryRows locator.Name = "details.history-rows"
	DetailsDelete      locator.Name = "details.delete"
	DetailsConfirm     locator.Name = "details.confirm-delete"
)

var common = locator.Registry{
	LoginUsername: {Primary: "input[name='username']", Fallback: "#username"},
	LoginPassword: {Primary: "input[name='password']", Fallback: "#password"},
	LoginSubmit:   {Primary: "button[type='submit']", Fallback: "input[type='submit']"},
	LoginError:    {Primary: ".alert-danger", Fallback: ".help-block"},

	NavTagSearch:   {Primary: "#tagsearch", Fallback: "input[name='assetTag']"},
	NavAssets:      {Primary: "a[data-title='Assets'][href$='/hardware']", Fallback: "a[href$='/hardware']"},
	NavCreateNew:   {Primary: "a.dropdown-toggle[data-toggle='dropdown']", Fallback: ".dropdown-toggle"},
	NavCreateAsset: {Primary: "a[href*='hardware/create']"},
	RecentAssets:   {Primary: "a[href*='/hardware/'][data-original-title='asset']", Fallback: "a[href*='/hardware/'][data-tooltip='true']"},

	AssetsTable:   {Primary: ".table-responsive table", Fallback: "table"},
	AssetsHeaders: {Primary: ".table-responsive table thead th", Fallback: "table thead th"},
	AssetsRows:    {Primary: ".table-responsive table tbody tr:not(.no-records-found)", Fallback: "table tbody tr:not(.no-records-found)"},
	AssetsCreate:  {Primary: "a[href*='hardware/create']"},
	AssetsSuccess: {Primary: "#success-notification", Fallback: ".alert-success"},

	CreateNotes:  {Primary: "#notes", Fallback: "textarea[name='notes']"},
	CreateSubmit: {Primary: "#submit_button", Fallback: "button[type='submit']"},
	CreateError:  {Primary: ".alert-danger", Fallback: ".has-error .help-block"},

	CreateModel:       {Primary: "select[name='model_id']", Fallback: "#model_select_id"},
	CreateModelOption: {Primary: "select[name='model_id'] option", Fallback: "#model_select_id option"},
	CreateStatus:      {Primary: "select[name='status_id']", Fallback: "#status_select_id"},
	CreateStatusOpt:   {Primary: "select[name='status_id'] option", Fallback: "#status_select_id option"},
	CreateUser:        {Primary: "select[name='assigned_user']", Fallback: "#assigned_user_select"},
	CreateUserOption:  {Primary: "select[name='assigned_user'] option", Fallback: "#assigned_user_select option"},

	DetailsHistoryRows: {Primary: "#assetHistory tbody tr", Fallback: "#history table tbody tr"},
	DetailsConfirm:     {Primary: "#dataConfirmOK", Fallback: "#dataConfirmModal button[type='submit']"},
}

var select2Registry = common.Merge(locator.Registry{
	AssetsSearch: {Primary: "input[name='search'], input[placeholder*='earch'], .dataTables_filter input", Fallback: "input[type='search']"},

	CreateTag:     {Primary: ".form-group #asset_tag", Fallback: "input[name='asset_tags[1]']"},
	CreateSerial:  {Primary: "#serial_1", Fallback: "input[name='serials[1]']"},
	CreateSuccess: {Primary: "#success-notification", Fallback: ".alert-success"},

	Select2ModelOpen:    {Primary: "#select2-model_select_id-container", Fallback: ".select2-container[data-select2-id='10'] .select2-selection"},
	Select2ModelResults: {Primary: "#select2-model_select_id-results .select2-results__option"},
	Select2StatusOpen:   {Primary: "#select2-status_select_id-container"},
	Select2StatusResult: {Primary: "#select2-status_select_id-results .select2-results__option"},
	Select2UserOpen:     {Primary: "#select2-assigned_user_select-container"},
	Select2UserResults:  {Primary: "#select2-assigned_user_select-results .select2-results__option"},
	Select2Search:       {Primary: ".select2-container--open .select2-search__field", Fallback: ".select2-search__field"},

	DetailsTag:        {Primary: ".js-copy-assettag", Fallback: "[data-clipboard-text].js-copy"},
	DetailsModel:      {Primary: "a[href*='/models/']"},
	DetailsStatus:     {Primary: ".col-md-9:has(.fa-circle.text-blue)", Fallback: ".col-md-9:has(.fa-circle)"},
	DetailsSerial:     {Primary: ".js-copy-serial"},
	DetailsHistoryTab: {Primary: "a:has(.fa-history)", Fallback: "a[href*='#history']"},
	DetailsDelete:     {Primary: ".delete-asset", Fallback: "a[data-tooltip='Delete']"},
})

var nativeRegistry = common.Merge(locator.Registry{
	AssetsSearch: {Primary: "input[type='search']", Fallback: "input[name='search']"},

	CreateTag:     {Primary: "input[name='asset_tag']", Fallback: "#asset_tag"},
	CreateSerial:  {Primary: "input[name='serial']", Fallback: "#serial"},
	CreateSuccess: {Primary: ".alert-success", Fallback: "#success-notification"},

	DetailsTerms:      {Primary: "dl dt"},
	DetailsValues:     {Primary: "dl dd"},
	DetailsHistoryTab: {Primary: "a[href*='#history']", Fallback: "a:has(.fa-history)"},
	DetailsDelete:     {Primary: "a[data-tooltip='Delete']", Fallback: ".delete-asset"},
})

// Registry returns the selector registry for a markup variant.
func Registry(v Variant) locator.Registry {
	if v == Native {
		return nativeRegistry
	}
	return select2Registry
}
