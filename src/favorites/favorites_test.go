package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"crosshair-overlay/src/settings"
)

func TestSaveLoadDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")

	store := Load(path)
	snap := settings.Defaults()
	snap.LineWidth = 7
	store.Save("sniper", snap)

	// A fresh load sees the persisted entry.
	reloaded := Load(path)
	got, ok := reloaded.Get("sniper")
	if !ok {
		t.Fatal("Expected 'sniper' favorite after reload")
	}
	if got.LineWidth != 7 {
		t.Errorf("LineWidth: got %v, want 7", got.LineWidth)
	}

	reloaded.Delete("sniper")
	if _, ok := reloaded.Get("sniper"); ok {
		t.Error("Expected 'sniper' gone after delete")
	}
	if Load(path).Len() != 0 {
		t.Error("Delete did not persist")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := Load(filepath.Join(t.TempDir(), "favorites.json"))
	store.Save("a", settings.Defaults())

	got, _ := store.Get("a")
	got.LineWidth = 42

	again, _ := store.Get("a")
	if again.LineWidth == 42 {
		t.Error("Get returned an aliased snapshot")
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := Load(filepath.Join(t.TempDir(), "favorites.json"))
	first := settings.Defaults()
	first.LineWidth = 1
	second := settings.Defaults()
	second.LineWidth = 2

	store.Save("x", first)
	store.Save("x", second)

	got, _ := store.Get("x")
	if got.LineWidth != 2 {
		t.Errorf("Expected overwrite, got LineWidth=%v", got.LineWidth)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", store.Len())
	}
}

func TestChangeNotification(t *testing.T) {
	store := Load(filepath.Join(t.TempDir(), "favorites.json"))
	calls := 0
	store.OnChange(func() { calls++ })

	store.Save("a", settings.Defaults())
	store.Delete("a")
	store.Delete("missing")

	if calls != 3 {
		t.Errorf("Expected 3 change notifications, got %d", calls)
	}
}

func TestLoadTolerance(t *testing.T) {
	dir := t.TempDir()

	// Malformed file → empty store, no crash.
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("][["), 0o644); err != nil {
		t.Fatal(err)
	}
	if store := Load(bad); store.Len() != 0 {
		t.Errorf("Expected empty store for malformed file, got %d entries", store.Len())
	}

	// Snapshot with an unknown extra key keeps its known keys.
	doc := `{"retro": {"line_width": 5, "some_future_key": [1,2,3]}}`
	ok := filepath.Join(dir, "ok.json")
	if err := os.WriteFile(ok, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	store := Load(ok)
	snap, found := store.Get("retro")
	if !found {
		t.Fatal("Expected 'retro' favorite")
	}
	if snap.LineWidth != 5 {
		t.Errorf("LineWidth: got %v, want 5", snap.LineWidth)
	}
	if len(snap.Extra) != 1 {
		t.Errorf("Expected unknown key preserved, got %v", snap.Extra)
	}
}

func TestNamesSorted(t *testing.T) {
	store := Load(filepath.Join(t.TempDir(), "favorites.json"))
	for _, name := range []string{"zeta", "alpha", "mid"} {
		store.Save(name, settings.Defaults())
	}
	names := store.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names()=%v, want %v", names, want)
		}
	}
}
