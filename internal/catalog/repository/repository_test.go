package repository

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(c.Categories()) != 10 {
		t.Errorf("categories = %d, want 10", len(c.Categories()))
	}

	got, ok := c.Category("  ac technician ")
	if !ok || got != "AC Technician" {
		t.Errorf("Category() = %q, %v", got, ok)
	}
	if _, ok := c.Category("Astronaut"); ok {
		t.Error("unknown category accepted")
	}

	commune, ok := c.Commune("pétion-ville")
	if !ok || commune.Name != "Pétion-Ville" || commune.City != "Port-au-Prince" {
		t.Errorf("Commune() = %+v, %v", commune, ok)
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte("categories: [Plumber, plumber]\ncommunes: [{name: Delmas}]\n"))
	if err == nil {
		t.Fatal("expected duplicate category error")
	}
	_, err = Parse([]byte("categories: [Plumber]\n"))
	if err == nil {
		t.Fatal("expected missing communes error")
	}
}
