package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/draftdeck/draftdeck/internal/config"
)

type stubDescriber struct {
	desc Description
}

func (s *stubDescriber) Describe(_ context.Context, _ []byte, _ string) (Description, error) {
	return s.desc, nil
}

func newTestStore(t *testing.T, describer Describer) *Store {
	t.Helper()
	tmp := t.TempDir()
	store, err := NewStore(config.AssetsConfig{
		UploadsDir: filepath.Join(tmp, "uploads"),
		InfoDir:    filepath.Join(tmp, "image_info"),
	}, describer)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveAllStoresFilesAndDescriptors(t *testing.T) {
	store := newTestStore(t, &stubDescriber{desc: Description{
		Contents:         "a red shoe on white background",
		SuitabilityTags:  []string{TagProductPhoto},
		SuggestedAltText: "red shoe",
	}})

	saved, err := store.SaveAll(context.Background(), []Upload{
		{Name: "shoe.png", ContentType: "image/png", Data: pngBytes(t, 10, 20)},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(saved) != 1 || !strings.HasSuffix(saved[0], ".png") {
		t.Fatalf("unexpected saved names: %v", saved)
	}
	store.WaitForDescriptors()

	files, err := store.ListFiles()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected one stored file, got %v", files)
	}

	catalog, err := store.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(catalog) != 1 {
		t.Fatalf("expected one descriptor, got %d", len(catalog))
	}
	desc := catalog[0]
	if desc.Width != 10 || desc.Height != 20 {
		t.Fatalf("unexpected dimensions: %dx%d", desc.Width, desc.Height)
	}
	if desc.SuggestedAltText != "red shoe" {
		t.Fatalf("unexpected alt text: %q", desc.SuggestedAltText)
	}

	ready, err := store.ReadyIDs()
	if err != nil {
		t.Fatalf("ready ids: %v", err)
	}
	if _, ok := ready[desc.ID]; !ok {
		t.Fatalf("descriptor id %s should be ready", desc.ID)
	}
}

func TestResolveByFilenameAndID(t *testing.T) {
	store := newTestStore(t, &stubDescriber{desc: Description{SuggestedAltText: "red shoe"}})
	saved, err := store.SaveAll(context.Background(), []Upload{
		{Name: "shoe.png", ContentType: "image/png", Data: pngBytes(t, 2, 2)},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	store.WaitForDescriptors()

	filename := saved[0]
	alt, ok := store.Resolve(filename)
	if !ok || alt != "red shoe" {
		t.Fatalf("resolve by filename: %q %v", alt, ok)
	}
	id := strings.TrimSuffix(filename, ".png")
	if _, ok := store.Resolve(id); !ok {
		t.Fatal("resolve by bare id failed")
	}
	if _, ok := store.Resolve("missing.png"); ok {
		t.Fatal("resolve of unknown reference should fail")
	}
}

func TestExtensionInferredFromContentType(t *testing.T) {
	store := newTestStore(t, nil)
	saved, err := store.SaveAll(context.Background(), []Upload{
		{Name: "upload", ContentType: "image/webp", Data: []byte("fake")},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(saved[0], ".webp") {
		t.Fatalf("expected webp extension, got %s", saved[0])
	}
}

func TestDeleteRemovesFileAndSidecar(t *testing.T) {
	store := newTestStore(t, nil)
	saved, err := store.SaveAll(context.Background(), []Upload{
		{Name: "a.png", ContentType: "image/png", Data: pngBytes(t, 2, 2)},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	store.WaitForDescriptors()

	name := saved[0]
	if err := store.Delete(name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.uploadsDir, name)); !os.IsNotExist(err) {
		t.Fatal("file should be gone")
	}
	id := strings.TrimSuffix(name, ".png")
	if _, err := os.Stat(filepath.Join(store.infoDir, id+".json")); !os.IsNotExist(err) {
		t.Fatal("sidecar should be gone")
	}
}

func TestDeleteRejectsBadNames(t *testing.T) {
	store := newTestStore(t, nil)
	for _, name := range []string{
		"../../etc/passwd",
		"noextension",
		"two.dots.png",
		"UPPER.png",
		"id.png/extra",
	} {
		if err := store.Delete(name); err == nil {
			t.Fatalf("expected rejection for %q", name)
		}
	}
}

func TestDeleteMissingFileIsNotFound(t *testing.T) {
	store := newTestStore(t, nil)
	err := store.Delete("0123456789abcdef.png")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestFormatForPrompt(t *testing.T) {
	if got := FormatForPrompt(nil); got != "No uploaded images yet." {
		t.Fatalf("empty catalog: %q", got)
	}

	out := FormatForPrompt([]Descriptor{
		{ID: "b", Filename: "b.png", Width: 100, Height: 50, ContentsDescription: "logo", SuitabilityTags: []string{TagSectionHeading}},
		{ID: "a", Filename: "a.jpg", SuggestedAltText: "red shoe"},
	})
	if !strings.Contains(out, "a.jpg") || !strings.Contains(out, "b.png") {
		t.Fatalf("missing filenames: %s", out)
	}
	// Deterministic ordering by filename.
	if strings.Index(out, "a.jpg") > strings.Index(out, "b.png") {
		t.Fatalf("expected sorted output: %s", out)
	}
	if !strings.Contains(out, "100x50") {
		t.Fatalf("missing dimensions: %s", out)
	}
}

func TestDescriptorValidateRejectsTooManyTags(t *testing.T) {
	d := Descriptor{ID: "x", Filename: "x.png", SuitabilityTags: []string{TagBanner, TagHero, TagOther}}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for three tags")
	}
	d.SuitabilityTags = []string{"selfie"}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}
