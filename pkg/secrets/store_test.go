package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatic_Lookup(t *testing.T) {
	store := Static{"LITCHI_LOGIN": "pilot"}

	if v, ok := store.Lookup("LITCHI_LOGIN"); !ok || v != "pilot" {
		t.Errorf("Lookup = %q, %v", v, ok)
	}
	if _, ok := store.Lookup("LITCHI_PASSWORD"); ok {
		t.Error("expected miss for unconfigured name")
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "secrets.env")
	content := "LITCHI_LOGIN=pilot\nLITCHI_PASSWORD=\"s3cret value\"\n"
	if err := os.WriteFile(f, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := FromFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, _ := store.Lookup("LITCHI_LOGIN"); v != "pilot" {
		t.Errorf("LITCHI_LOGIN = %q", v)
	}
	if v, _ := store.Lookup("LITCHI_PASSWORD"); v != "s3cret value" {
		t.Errorf("LITCHI_PASSWORD = %q", v)
	}
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.env"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading secret file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFromEnv_Prefix(t *testing.T) {
	t.Setenv("CONVEYOR_SECRET_LITCHI_LOGIN", "pilot")

	store := FromEnv("CONVEYOR_SECRET_")
	if v, ok := store.Lookup("LITCHI_LOGIN"); !ok || v != "pilot" {
		t.Errorf("Lookup = %q, %v", v, ok)
	}
	if _, ok := store.Lookup("LITCHI_PASSWORD"); ok {
		t.Error("expected miss for unset variable")
	}
}

func TestResolve(t *testing.T) {
	store := Static{"A": "1", "B": "2"}

	resolved, err := Resolve(store, []string{"A", "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["A"] != "1" || resolved["B"] != "2" {
		t.Errorf("unexpected map: %v", resolved)
	}
}

func TestResolve_Missing(t *testing.T) {
	store := Static{"A": "1"}

	_, err := Resolve(store, []string{"A", "MISSING"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "MISSING") {
		t.Errorf("error should name the secret: %v", err)
	}
	if strings.Contains(err.Error(), "1") {
		t.Errorf("error must not contain secret values: %v", err)
	}
}

func TestResolve_NoNames(t *testing.T) {
	resolved, err := Resolve(Static{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != nil {
		t.Errorf("expected nil map, got %v", resolved)
	}
}
