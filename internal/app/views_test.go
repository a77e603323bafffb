package app

import "testing"

func TestFilterViewsExecutive(t *testing.T) {
	fv := FilterViews(3)

	want := []string{"BÚSQUEDA", "AGENDA DEL DÍA", "DASHBOARD", "PENDIENTES ACUMULADOS",
		"PENDIENTES OLVIDADOS", "VENTAS CERRADAS"}
	if fv.Len() != len(want) {
		t.Fatalf("expected %d views for role 3, got %d", len(want), fv.Len())
	}
	for i, name := range want {
		if fv.Names[i] != name {
			t.Errorf("view %d: expected %q, got %q", i, name, fv.Names[i])
		}
	}

	// MONITOREO and PRODUCCIÓN are supervisor-only
	for _, name := range fv.Names {
		if name == "MONITOREO" || name == "PRODUCCIÓN" {
			t.Errorf("role 3 should not see %s", name)
		}
	}
}

func TestFilterViewsSupervisorSeesEverything(t *testing.T) {
	for _, role := range []int{1, 2} {
		fv := FilterViews(role)
		if fv.Len() != len(Catalog) {
			t.Errorf("role %d: expected %d views, got %d", role, len(Catalog), fv.Len())
		}
	}
}

func TestFilterViewsPreservesCatalogOrder(t *testing.T) {
	fv := FilterViews(3)
	prev := -1
	for i := 0; i < fv.Len(); i++ {
		ci := fv.CatalogIndex(i)
		if ci <= prev {
			t.Fatalf("catalog indexes not increasing: %d after %d", ci, prev)
		}
		prev = ci
	}
}

func TestCatalogIndexMapping(t *testing.T) {
	fv := FilterViews(3)

	// Filtered position 5 (VENTAS CERRADAS) maps past the hidden MONITOREO slot
	if ci := fv.CatalogIndex(5); ci != ViewClosedSales {
		t.Errorf("expected catalog index %d, got %d", ViewClosedSales, ci)
	}
	if ci := fv.CatalogIndex(-1); ci != -1 {
		t.Errorf("expected -1 for negative index, got %d", ci)
	}
	if ci := fv.CatalogIndex(fv.Len()); ci != -1 {
		t.Errorf("expected -1 for out-of-range index, got %d", ci)
	}
}

func TestFilteredIndexRoundTrip(t *testing.T) {
	fv := FilterViews(2)
	for i := 0; i < fv.Len(); i++ {
		ci := fv.CatalogIndex(i)
		if back := fv.FilteredIndex(ci); back != i {
			t.Errorf("round trip failed: filtered %d -> catalog %d -> filtered %d", i, ci, back)
		}
	}

	// A hidden view has no filtered position
	exec := FilterViews(3)
	if idx := exec.FilteredIndex(ViewMonitor); idx != -1 {
		t.Errorf("expected -1 for hidden view, got %d", idx)
	}
}
