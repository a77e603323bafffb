package ingest

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jlcastillov/crm-console/internal/bus"
	"github.com/jlcastillov/crm-console/internal/store"
)

func TestOneShotImport(t *testing.T) {
	dir := t.TempDir()

	jsonl := "{\"commercial_name\":\"Distribuidora Andina\",\"ruc\":\"20100123456\"}\n" +
		"no-es-json\n" +
		"{\"commercial_name\":\"Textiles del Sur\"}\n" +
		"{\"ruc\":\"20456789012\"}\n" // missing commercial_name
	if err := os.WriteFile(filepath.Join(dir, "empresas.jsonl"), []byte(jsonl), 0644); err != nil {
		t.Fatal(err)
	}

	single := `{"commercial_name":"Agroexport Norte","contact_name":"Luis Vega"}`
	if err := os.WriteFile(filepath.Join(dir, "una.json"), []byte(single), 0644); err != nil {
		t.Fatal(err)
	}

	array := `[{"commercial_name":"Ferretería El Tornillo"},{"commercial_name":"Minera del Centro"}]`
	if err := os.WriteFile(filepath.Join(dir, "varias.json"), []byte(array), 0644); err != nil {
		t.Fatal(err)
	}

	// Non-matching files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("ignorar"), 0644); err != nil {
		t.Fatal(err)
	}

	st, err := store.NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	logger := log.New(io.Discard, "", 0)
	fi := NewFolderImporter(st, bus.NewNullBus(logger), FolderOptions{
		Dir:    dir,
		UserID: 7,
		Logger: logger,
	})

	ctx := context.Background()
	if err := fi.Run(ctx); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if fi.imported != 5 {
		t.Errorf("expected 5 imported, got %d", fi.imported)
	}
	if fi.errors != 2 {
		t.Errorf("expected 2 errors, got %d", fi.errors)
	}

	companies, err := st.SearchCompanies(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(companies) != 5 {
		t.Fatalf("expected 5 companies in the store, got %d", len(companies))
	}
	for _, c := range companies {
		if c.CreatedBy != 7 {
			t.Errorf("company %q: expected created_by 7, got %d", c.CommercialName, c.CreatedBy)
		}
	}
}

func appendToFile(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		t.Fatal(err)
	}
}

func TestJSONLTailOffsetsCountCRLF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empresas.jsonl")

	first := "{\"commercial_name\":\"Transporte Andino\"}\r\n"
	if err := os.WriteFile(path, []byte(first), 0644); err != nil {
		t.Fatal(err)
	}

	st, err := store.NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	logger := log.New(io.Discard, "", 0)
	fi := NewFolderImporter(st, bus.NewNullBus(logger), FolderOptions{
		Dir:    dir,
		Watch:  true,
		UserID: 3,
		Logger: logger,
	})

	ctx := context.Background()
	off, err := fi.processJSONL(ctx, path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if off != int64(len(first)) {
		t.Fatalf("offset after first read = %d, want %d", off, len(first))
	}

	// One complete CRLF line plus the start of another: the partial line
	// must stay unconsumed until its newline arrives.
	second := "{\"commercial_name\":\"Courier Pacífico\"}\r\n"
	appendToFile(t, path, second+"{\"commercial_name\":\"Naviera")

	off, err = fi.processJSONL(ctx, path, off)
	if err != nil {
		t.Fatal(err)
	}
	if off != int64(len(first)+len(second)) {
		t.Fatalf("offset after second read = %d, want %d", off, len(first)+len(second))
	}
	if fi.imported != 2 {
		t.Fatalf("expected 2 imported before the line completes, got %d", fi.imported)
	}

	appendToFile(t, path, " del Sur\"}\r\n")
	off, err = fi.processJSONL(ctx, path, off)
	if err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || off != info.Size() {
		t.Fatalf("final offset %d does not match file size", off)
	}
	if fi.imported != 3 || fi.errors != 0 {
		t.Fatalf("expected 3 imported and 0 errors, got %d/%d", fi.imported, fi.errors)
	}

	// No line was re-imported or skipped across the three reads
	companies, err := st.SearchCompanies(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(companies) != 3 {
		t.Fatalf("expected 3 companies in the store, got %d", len(companies))
	}
}

func TestMatchesPatterns(t *testing.T) {
	fi := NewFolderImporter(nil, bus.NewNullBus(log.New(io.Discard, "", 0)), FolderOptions{})

	for name, want := range map[string]bool{
		"empresas.jsonl": true,
		"EMPRESAS.JSON":  true,
		"empresas.csv":   false,
		"empresas":       false,
	} {
		if got := fi.matches(name); got != want {
			t.Errorf("matches(%q) = %v, want %v", name, got, want)
		}
	}
}
