// Package assets persists uploaded images and their derived descriptors.
// Two parallel directories hold raw files (<id>.<ext>) and one JSON
// descriptor sidecar per asset (<id>.json); the directory listing is the
// index, there is no database.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/draftdeck/draftdeck/internal/config"
	"github.com/draftdeck/draftdeck/internal/logger"
)

// ErrNotFound is returned when an asset id or filename has no match.
var ErrNotFound = errors.New("assets: not found")

// deleteNamePattern allows only identifier characters followed by a single
// extension; anything else is rejected before touching the filesystem.
var deleteNamePattern = regexp.MustCompile(`^[a-f0-9-]+\.[A-Za-z0-9]+$`)

var imageExtPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg)$`)

var contentTypeExt = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Describer produces the generated parts of a descriptor from image bytes.
type Describer interface {
	Describe(ctx context.Context, data []byte, mimeType string) (Description, error)
}

// Description is the model-generated portion of a descriptor.
type Description struct {
	Contents         string   `json:"contents_description"`
	OverlayText      string   `json:"overlay_text"`
	SuitabilityTags  []string `json:"suitability_tags"`
	SuggestedAltText string   `json:"suggested_alt_text"`
}

// Upload is one incoming file.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Store is the on-disk asset store. Writes are keyed by freshly generated
// ids, so concurrent uploads never collide and no locking is needed for the
// files themselves.
type Store struct {
	uploadsDir string
	infoDir    string
	describer  Describer
	wg         sync.WaitGroup
}

// NewStore creates the two asset directories if needed. describer may be nil,
// in which case descriptors carry only dimensions.
func NewStore(cfg config.AssetsConfig, describer Describer) (*Store, error) {
	for _, dir := range []string{cfg.UploadsDir, cfg.InfoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("assets: create %s: %w", dir, err)
		}
	}
	return &Store{
		uploadsDir: cfg.UploadsDir,
		infoDir:    cfg.InfoDir,
		describer:  describer,
	}, nil
}

// UploadsDir returns the raw file directory (served under /uploads/).
func (s *Store) UploadsDir() string { return s.uploadsDir }

// SaveAll persists each upload under a fresh id and kicks off descriptor
// generation in the background. It returns the stored filenames.
func (s *Store) SaveAll(ctx context.Context, uploads []Upload) ([]string, error) {
	saved := make([]string, 0, len(uploads))
	for _, up := range uploads {
		name, err := s.save(up)
		if err != nil {
			return saved, err
		}
		saved = append(saved, name)
	}

	// Descriptor generation runs detached from the request: an asset is
	// simply not "ready" until its sidecar lands.
	s.wg.Add(1)
	go func(names []string) {
		defer s.wg.Done()
		g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
		for _, name := range names {
			g.Go(func() error {
				if err := s.generateDescriptor(gctx, name); err != nil {
					logger.Warn("[Assets] descriptor generation failed for %s: %v", name, err)
				}
				return nil
			})
		}
		_ = g.Wait()
	}(saved)

	return saved, nil
}

func (s *Store) save(up Upload) (string, error) {
	ext := extensionFor(up.Name, up.ContentType)
	id := uuid.NewString()
	filename := id + ext
	if err := os.WriteFile(filepath.Join(s.uploadsDir, filename), up.Data, 0644); err != nil {
		return "", fmt.Errorf("assets: write %s: %w", filename, err)
	}
	logger.Info("[Assets] stored upload %s (%d bytes)", filename, len(up.Data))
	return filename, nil
}

// generateDescriptor probes image dimensions, asks the vision model to
// describe the file, and writes the sidecar JSON.
func (s *Store) generateDescriptor(ctx context.Context, filename string) error {
	data, err := os.ReadFile(filepath.Join(s.uploadsDir, filename))
	if err != nil {
		return err
	}

	id := strings.TrimSuffix(filename, filepath.Ext(filename))
	desc := Descriptor{ID: id, Filename: filename}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		desc.Width = cfg.Width
		desc.Height = cfg.Height
	}

	if s.describer != nil {
		generated, err := s.describer.Describe(ctx, data, mimeTypeFor(filename))
		if err != nil {
			return fmt.Errorf("assets: describe %s: %w", filename, err)
		}
		desc.ContentsDescription = generated.Contents
		desc.OverlayText = generated.OverlayText
		desc.SuitabilityTags = generated.SuitabilityTags
		desc.SuggestedAltText = generated.SuggestedAltText
	}

	if err := desc.Validate(); err != nil {
		return fmt.Errorf("assets: descriptor for %s: %w", filename, err)
	}
	return s.writeDescriptor(desc)
}

func (s *Store) writeDescriptor(desc Descriptor) error {
	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.infoDir, desc.ID+".json"), data, 0644)
}

// WaitForDescriptors blocks until all background descriptor work settles.
// Intended for shutdown and tests.
func (s *Store) WaitForDescriptors() {
	s.wg.Wait()
}

// ListFiles returns the image filenames present in the uploads directory.
func (s *Store) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(s.uploadsDir)
	if err != nil {
		return nil, fmt.Errorf("assets: list uploads: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !imageExtPattern.MatchString(entry.Name()) {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

// Catalog returns every completed descriptor; assets whose generation has
// not finished are simply absent.
func (s *Store) Catalog() ([]Descriptor, error) {
	entries, err := os.ReadDir(s.infoDir)
	if err != nil {
		return nil, fmt.Errorf("assets: list descriptors: %w", err)
	}
	descriptors := make([]Descriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.infoDir, entry.Name()))
		if err != nil {
			logger.Warn("[Assets] skipping unreadable descriptor %s: %v", entry.Name(), err)
			continue
		}
		var desc Descriptor
		if err := json.Unmarshal(data, &desc); err != nil {
			logger.Warn("[Assets] skipping malformed descriptor %s: %v", entry.Name(), err)
			continue
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

// ReadyIDs returns the set of asset ids whose descriptor generation has
// completed.
func (s *Store) ReadyIDs() (map[string]struct{}, error) {
	descriptors, err := s.Catalog()
	if err != nil {
		return nil, err
	}
	ready := make(map[string]struct{}, len(descriptors))
	for _, d := range descriptors {
		ready[d.ID] = struct{}{}
	}
	return ready, nil
}

// Delete removes a stored file and its descriptor sidecar. The name must be
// identifier characters plus a single extension.
func (s *Store) Delete(name string) error {
	if !deleteNamePattern.MatchString(name) {
		return fmt.Errorf("assets: invalid filename %q", name)
	}
	path := filepath.Join(s.uploadsDir, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("assets: %s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("assets: delete %s: %w", name, err)
	}
	id := strings.TrimSuffix(name, filepath.Ext(name))
	if err := os.Remove(filepath.Join(s.infoDir, id+".json")); err != nil && !os.IsNotExist(err) {
		logger.Warn("[Assets] failed to remove descriptor for %s: %v", name, err)
	}
	return nil
}

// Resolve implements email.AssetCatalog: ref may be a filename or a bare id.
func (s *Store) Resolve(ref string) (string, bool) {
	id := strings.TrimSuffix(ref, filepath.Ext(ref))
	data, err := os.ReadFile(filepath.Join(s.infoDir, id+".json"))
	if err != nil {
		return "", false
	}
	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return "", false
	}
	return desc.SuggestedAltText, true
}

func extensionFor(name, contentType string) string {
	if name != "" {
		if ext := filepath.Ext(name); ext != "" {
			return strings.ToLower(ext)
		}
	}
	if ext, ok := contentTypeExt[contentType]; ok {
		return ext
	}
	return ""
}

func mimeTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/png"
	}
}
