package fielddefs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gabriel/starfield/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "a.yaml", `
handle: quality
name: Quality
instructions: How good was it?
max_stars: 10
`)
	writeFile(t, tmpDir, "b.yml", `
handle: favourite
max_stars: 1
`)
	writeFile(t, tmpDir, "c.yaml", `
handle: defaulted
name: Defaulted
`)
	writeFile(t, tmpDir, "notes.txt", `ignored`)

	loaded, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("load field definitions: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(loaded))
	}
	if loaded[0].Handle != "quality" || loaded[0].MaxStars != 10 {
		t.Fatalf("unexpected first definition: %+v", loaded[0])
	}
	if loaded[1].Name != "favourite" {
		t.Fatalf("expected name to default to handle, got %q", loaded[1].Name)
	}
	if loaded[2].MaxStars != DefaultMaxStars {
		t.Fatalf("expected default max stars, got %d", loaded[2].MaxStars)
	}
}

func TestLoadFromDirReportsBadFilesAndKeepsGoodOnes(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "a.yaml", "handle: good\nmax_stars: 3\n")
	writeFile(t, tmpDir, "b.yaml", "handle: four\nmax_stars: 4\n")
	writeFile(t, tmpDir, "c.yaml", "handle: [unclosed\n")
	writeFile(t, tmpDir, "d.yaml", "handle: good\nmax_stars: 5\n")

	loaded, err := LoadFromDir(tmpDir)
	if err == nil {
		t.Fatalf("expected load error")
	}
	if len(loaded) != 1 || loaded[0].Handle != "good" {
		t.Fatalf("expected only the good definition, got %+v", loaded)
	}
	for _, fragment := range []string{"b.yaml", "c.yaml", "d.yaml", "already defined"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected error to mention %q, got %v", fragment, err)
		}
	}
}

func TestLoadFromDirMissingDirectory(t *testing.T) {
	loaded, err := LoadFromDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil || loaded != nil {
		t.Fatalf("expected nothing loaded for missing dir, got %v %v", loaded, err)
	}
}

type fakeUpserter struct {
	saved []models.Field
	fail  string
}

func (f *fakeUpserter) Upsert(field models.Field) (*models.Field, error) {
	if field.Handle == f.fail {
		return nil, errors.New("boom")
	}
	f.saved = append(f.saved, field)
	return &field, nil
}

func TestSync(t *testing.T) {
	repo := &fakeUpserter{fail: "broken"}
	definitions := []Definition{
		{Handle: "one", Name: "One", MaxStars: 1},
		{Handle: "broken", Name: "Broken", MaxStars: 5},
		{Handle: "ten", Name: "Ten", MaxStars: 10},
	}

	saved, err := Sync(repo, definitions, nil)
	if err == nil {
		t.Fatalf("expected sync error for broken definition")
	}
	if saved != 2 || len(repo.saved) != 2 {
		t.Fatalf("expected 2 saved definitions, got %d", saved)
	}
}

func TestMaxStarsOptions(t *testing.T) {
	options := MaxStarsOptions()
	if len(options) != 4 || options[3].Value != 10 || options[0].Label != "1 star" {
		t.Fatalf("unexpected options: %+v", options)
	}
}
