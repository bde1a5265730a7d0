package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	apperr "github.com/duynguyendang/digivolve/pkg/common/errors"
	"github.com/duynguyendang/digivolve/pkg/dataset"
	"github.com/duynguyendang/digivolve/pkg/evolution"
)

const managerCSVv1 = `Number,Name,Stage,Attribute,Evolutions
1,Koromon,Baby II,Free,Agumon
2,Agumon,Child,Vaccine,Greymon
`

const managerCSVv2 = `Number,Name,Stage,Attribute,Evolutions
1,Koromon,Baby II,Free,Agumon
2,Agumon,Child,Vaccine,Tyranomon
`

func writeDataset(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestManagerNotLoaded(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "digimon.csv"), dataset.Options{})

	if m.Loaded() {
		t.Error("Expected Loaded to be false before first Reload")
	}
	if _, err := m.Resolver(); !errors.Is(err, apperr.ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded from Resolver, got %v", err)
	}
	if _, err := m.Table(); !errors.Is(err, apperr.ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded from Table, got %v", err)
	}
	if _, err := m.Lookup("Agumon"); !errors.Is(err, apperr.ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded from Lookup, got %v", err)
	}
}

func TestManagerReloadSwap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digimon.csv")
	writeDataset(t, path, managerCSVv1)

	m := New(path, dataset.Options{})
	if _, err := m.Reload(); err != nil {
		t.Fatalf("Initial Reload failed: %v", err)
	}

	// Hold the first generation's resolver across the swap.
	r1, err := m.Resolver()
	if err != nil {
		t.Fatal(err)
	}

	writeDataset(t, path, managerCSVv2)
	if _, err := m.Reload(); err != nil {
		t.Fatalf("Second Reload failed: %v", err)
	}

	r2, err := m.Resolver()
	if err != nil {
		t.Fatal(err)
	}

	// New generation sees the new successor.
	single := r2.Resolve("Agumon").(evolution.Single)
	if got := single.Entry.Successors[0].Name; got != "Tyranomon" {
		t.Errorf("Expected new generation successor Tyranomon, got %s", got)
	}

	// The held snapshot still serves the old data.
	single = r1.Resolve("Agumon").(evolution.Single)
	if got := single.Entry.Successors[0].Name; got != "Greymon" {
		t.Errorf("Expected held snapshot successor Greymon, got %s", got)
	}

	if m.Reloads() != 2 {
		t.Errorf("Expected 2 successful reloads, got %d", m.Reloads())
	}
}

func TestManagerFailedReloadKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digimon.csv")
	writeDataset(t, path, managerCSVv1)

	m := New(path, dataset.Options{})
	if _, err := m.Reload(); err != nil {
		t.Fatalf("Initial Reload failed: %v", err)
	}

	// Break the file: required columns gone.
	writeDataset(t, path, "Name,Evolutions\nAgumon,Greymon\n")

	_, err := m.Reload()
	if err == nil {
		t.Fatal("Expected Reload to fail on broken dataset")
	}
	var le *dataset.LoadError
	if !errors.As(err, &le) {
		t.Errorf("Expected *dataset.LoadError, got %T", err)
	}

	// Previous generation keeps serving.
	if !m.Loaded() {
		t.Fatal("Expected previous generation to survive a failed reload")
	}
	res, err := m.Lookup("Agumon")
	if err != nil {
		t.Fatalf("Lookup after failed reload: %v", err)
	}
	if _, ok := res.(evolution.Single); !ok {
		t.Errorf("Expected Single from surviving generation, got %T", res)
	}
	if m.Failures() != 1 {
		t.Errorf("Expected 1 failure, got %d", m.Failures())
	}
}

func TestManagerLookupCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digimon.csv")
	writeDataset(t, path, managerCSVv1)

	m := New(path, dataset.Options{})
	if _, err := m.Reload(); err != nil {
		t.Fatal(err)
	}

	first, err := m.Lookup("Agumon")
	if err != nil {
		t.Fatal(err)
	}
	// Casing variants share the cache entry.
	again, err := m.Lookup("AGUMON")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, again) {
		t.Error("Expected cached result for casing variant")
	}

	st := m.current.Load()
	if st.lookups.Len() != 1 {
		t.Errorf("Expected 1 cached entry, got %d", st.lookups.Len())
	}

	// Misses are never cached.
	if _, err := m.Lookup("Missingmon"); err != nil {
		t.Fatal(err)
	}
	if st.lookups.Len() != 1 {
		t.Errorf("Expected NotFound to stay uncached, got %d entries", st.lookups.Len())
	}

	// A swap starts with an empty cache.
	if _, err := m.Reload(); err != nil {
		t.Fatal(err)
	}
	if n := m.current.Load().lookups.Len(); n != 0 {
		t.Errorf("Expected empty cache after reload, got %d entries", n)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digimon.csv")
	writeDataset(t, path, managerCSVv1)

	m := New(path, dataset.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error on cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}
