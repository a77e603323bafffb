package app

import "fmt"

// Loader triggers the data load backing a catalog view. The UI layer
// registers one per view; loads run asynchronously and report back through
// the controller.
type Loader func(viewID int)

// Controller tracks which view is active and dispatches the load for it.
// It operates on filtered positions, since that is what the rendered
// navigation bar exposes.
type Controller struct {
	views            FilteredViews
	activeFiltered   int
	activeDetailTab  int
	lastErrorMessage string
	searchCached     bool
	loader           Loader
}

// NewController builds a controller over a filtered catalog. The loader may
// be nil (tests that only exercise navigation).
func NewController(views FilteredViews, loader Loader) *Controller {
	return &Controller{views: views, loader: loader}
}

// Rebind replaces the filtered catalog after a session change and resets
// navigation to the first visible view. The search cache does not survive a
// rebind.
func (c *Controller) Rebind(views FilteredViews) {
	c.views = views
	c.activeFiltered = 0
	c.activeDetailTab = 0
	c.searchCached = false
}

// Views returns the current filtered catalog.
func (c *Controller) Views() FilteredViews {
	return c.views
}

// ActiveFilteredIndex returns the filtered position of the active view.
func (c *Controller) ActiveFilteredIndex() int {
	return c.activeFiltered
}

// ActiveViewID returns the catalog id of the active view.
func (c *Controller) ActiveViewID() int {
	ci := c.views.CatalogIndex(c.activeFiltered)
	if ci < 0 {
		return ViewSearch
	}
	return Catalog[ci].ID
}

// ActiveDetailTab returns the selected tab of the company detail pane.
func (c *Controller) ActiveDetailTab() int {
	return c.activeDetailTab
}

// SelectDetailTab changes the company detail tab.
func (c *Controller) SelectDetailTab(tab int) {
	c.activeDetailTab = tab
}

// LastErrorMessage returns the most recent load or save failure shown in
// the status bar ("" when the last operation succeeded).
func (c *Controller) LastErrorMessage() string {
	return c.lastErrorMessage
}

// SetError records a failure message for the status bar.
func (c *Controller) SetError(msg string) {
	c.lastErrorMessage = msg
}

// ClearError resets the status bar message.
func (c *Controller) ClearError() {
	c.lastErrorMessage = ""
}

// MarkSearchCached records that the search view holds usable results, so
// re-entering it does not refetch.
func (c *Controller) MarkSearchCached() {
	c.searchCached = true
}

// InvalidateSearchCache forces the next visit to the search view to reload.
func (c *Controller) InvalidateSearchCache() {
	c.searchCached = false
}

// SwitchView activates the view at a filtered position and dispatches its
// load. A position outside the filtered catalog is a programming error and
// panics. Re-entering the search view with cached results skips the load;
// every other view reloads on entry.
func (c *Controller) SwitchView(filtered int) {
	ci := c.views.CatalogIndex(filtered)
	if ci < 0 {
		panic(fmt.Sprintf("view index %d out of range (have %d views)", filtered, c.views.Len()))
	}

	c.activeFiltered = filtered
	c.activeDetailTab = 0
	c.lastErrorMessage = ""

	id := Catalog[ci].ID
	if id == ViewSearch && c.searchCached {
		return
	}
	if c.loader != nil {
		c.loader(id)
	}
}
