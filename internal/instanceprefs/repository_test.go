package instanceprefs

import (
	"path/filepath"
	"testing"
)

func tempRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenAt(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("opening repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGet_Missing(t *testing.T) {
	repo := tempRepo(t)

	prefs, err := repo.Get("prometheus", "orders-prod")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if prefs != nil {
		t.Errorf("expected nil for missing prefs, got %+v", prefs)
	}
}

func TestSaveThenGet(t *testing.T) {
	repo := tempRepo(t)

	saved := &InstancePrefs{
		Backend:      "prometheus",
		InstanceID:   "orders-prod",
		Unit:         "MiB",
		ShowSafeLine: true,
	}
	if err := repo.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == 0 {
		t.Error("expected ID assigned on insert")
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt set on save")
	}

	got, err := repo.Get("prometheus", "orders-prod")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected saved prefs")
	}
	if got.Unit != "MiB" || !got.ShowSafeLine {
		t.Errorf("got %+v, want unit MiB with safe line on", got)
	}
}

func TestSave_Upserts(t *testing.T) {
	repo := tempRepo(t)

	first := &InstancePrefs{Backend: "prometheus", InstanceID: "orders-prod", Unit: "GiB"}
	if err := repo.Save(first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := &InstancePrefs{Backend: "prometheus", InstanceID: "orders-prod", Unit: "B", ShowSafeLine: true}
	if err := repo.Save(second); err != nil {
		t.Fatalf("Save (upsert): %v", err)
	}

	got, err := repo.Get("prometheus", "orders-prod")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Unit != "B" || !got.ShowSafeLine {
		t.Errorf("upsert did not replace values: %+v", got)
	}
	if got.ID != first.ID {
		t.Errorf("upsert created a new row: id %d != %d", got.ID, first.ID)
	}
}

func TestSave_SeparateInstances(t *testing.T) {
	repo := tempRepo(t)

	for _, id := range []string{"orders-prod", "billing-staging"} {
		if err := repo.Save(&InstancePrefs{Backend: "prometheus", InstanceID: id, Unit: "GiB"}); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	got, err := repo.Get("prometheus", "billing-staging")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.InstanceID != "billing-staging" {
		t.Errorf("expected billing-staging prefs, got %+v", got)
	}
}
