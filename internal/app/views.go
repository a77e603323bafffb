// Package app holds the console's navigation and editing state machines,
// independent of any terminal rendering. The UI layer renders this state;
// tests drive it directly.
package app

// View identifiers, in catalog order.
const (
	ViewSearch = iota
	ViewAgenda
	ViewDashboard
	ViewPendingAccumulated
	ViewPendingOverdue
	ViewMonitor
	ViewClosedSales
	ViewProduction
)

// ViewDescriptor describes one entry of the fixed view catalog. MinRole is
// the least privileged role level allowed to see the view (lower role
// values are more privileged, so a role sees the view when role <= MinRole).
type ViewDescriptor struct {
	ID      int
	Name    string
	MinRole int
}

// Catalog is the fixed, ordered view catalog. Filtering never reorders it.
var Catalog = []ViewDescriptor{
	{ID: ViewSearch, Name: "BÚSQUEDA", MinRole: 3},
	{ID: ViewAgenda, Name: "AGENDA DEL DÍA", MinRole: 3},
	{ID: ViewDashboard, Name: "DASHBOARD", MinRole: 3},
	{ID: ViewPendingAccumulated, Name: "PENDIENTES ACUMULADOS", MinRole: 3},
	{ID: ViewPendingOverdue, Name: "PENDIENTES OLVIDADOS", MinRole: 3},
	{ID: ViewMonitor, Name: "MONITOREO", MinRole: 2},
	{ID: ViewClosedSales, Name: "VENTAS CERRADAS", MinRole: 3},
	{ID: ViewProduction, Name: "PRODUCCIÓN", MinRole: 2},
}

// FilteredViews is the role-visible slice of the catalog together with the
// mapping from filtered position back to catalog position.
type FilteredViews struct {
	Names    []string
	indexMap []int
}

// FilterViews computes the views visible to a role, preserving catalog
// order. The result is recomputed whenever the session changes; it is never
// mutated in place.
func FilterViews(role int) FilteredViews {
	fv := FilteredViews{}
	for i, v := range Catalog {
		if role <= v.MinRole {
			fv.Names = append(fv.Names, v.Name)
			fv.indexMap = append(fv.indexMap, i)
		}
	}
	return fv
}

// Len returns the number of visible views.
func (fv FilteredViews) Len() int {
	return len(fv.Names)
}

// CatalogIndex maps a filtered position to its catalog position, or -1 when
// the filtered position is out of range.
func (fv FilteredViews) CatalogIndex(filtered int) int {
	if filtered < 0 || filtered >= len(fv.indexMap) {
		return -1
	}
	return fv.indexMap[filtered]
}

// FilteredIndex maps a catalog position to its filtered position, or -1
// when the view is not visible to the current role.
func (fv FilteredViews) FilteredIndex(catalog int) int {
	for i, ci := range fv.indexMap {
		if ci == catalog {
			return i
		}
	}
	return -1
}
