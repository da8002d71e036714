package storage

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"doctemplates/model"
)

const (
	MetaFile     = "_meta.json"
	ManifestFile = "manifest.json"
	ContentFile  = "content.json"
)

// Store writes and reads the data/ resource tree.
type Store struct {
	baseDir string
}

// New creates a new Store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// BaseDir returns the root directory of the store.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Reset deletes the whole tree and recreates an empty root.
func (s *Store) Reset() error {
	if err := os.RemoveAll(s.baseDir); err != nil {
		return fmt.Errorf("remove %s: %w", s.baseDir, err)
	}
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.baseDir, err)
	}
	return nil
}

// WriteMeta writes the metadata index to <base>/_meta.json.
func (s *Store) WriteMeta(meta model.MetaIndex) error {
	return WriteJSON(filepath.Join(s.baseDir, MetaFile), meta)
}

// WriteManifest writes m to <base>/<category>/<id>/manifest.json and returns
// the written path.
func (s *Store) WriteManifest(category string, m model.Manifest) (string, error) {
	dir := filepath.Join(s.baseDir, category, m.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ManifestFile)
	return path, WriteJSON(path, m)
}

// LoadMeta reads <base>/_meta.json. A missing file yields (nil, nil).
func (s *Store) LoadMeta() (*model.MetaIndex, error) {
	var meta model.MetaIndex
	if err := ReadJSON(filepath.Join(s.baseDir, MetaFile), &meta); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}

// ThemeManifests returns every manifest.json found below <base>/ppt-theme,
// at any depth, sorted by order. Ties keep path order.
func (s *Store) ThemeManifests() ([]model.ThemeManifest, error) {
	base := filepath.Join(s.baseDir, model.ThemeCategory)
	var themes []model.ThemeManifest

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != ManifestFile {
			return nil
		}

		var m model.ThemeManifest
		if err := ReadJSON(path, &m); err != nil {
			return err
		}
		themes = append(themes, m)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sort.SliceStable(themes, func(i, j int) bool {
		return themes[i].Order < themes[j].Order
	})

	return themes, nil
}

// DocTemplate is a document template manifest plus its optional content.
type DocTemplate struct {
	Manifest model.DocTemplateManifest
	Content  *model.TemplateContent
}

// DocTemplates loads the templates in <base>/<category>/<name>/ in directory
// name order. A missing category directory yields an empty result.
func (s *Store) DocTemplates(category string) ([]DocTemplate, error) {
	catDir := filepath.Join(s.baseDir, category)
	entries, err := os.ReadDir(catDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read category dir %s: %w", catDir, err)
	}

	var templates []DocTemplate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(catDir, entry.Name())

		var tmpl DocTemplate
		if err := ReadJSON(filepath.Join(dir, ManifestFile), &tmpl.Manifest); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		var content model.TemplateContent
		if err := ReadJSON(filepath.Join(dir, ContentFile), &content); err == nil {
			tmpl.Content = &content
		} else if !os.IsNotExist(err) {
			return nil, err
		}

		templates = append(templates, tmpl)
	}

	return templates, nil
}

// CategoryDirs lists the top-level directories of the tree, skipping names
// that start with '_'.
func (s *Store) CategoryDirs() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), "_") {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

// WriteJSON encodes v as two-space indented JSON without HTML escaping.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ReadJSON decodes the JSON file at path into v. Not-exist errors are
// returned unwrapped so callers can test them with os.IsNotExist.
func ReadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Digest returns the hex BLAKE3 digest of every regular file below root.
// Each file contributes its slash-separated relative path, size and bytes.
func Digest(root string) (string, error) {
	h := blake3.New()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		fmt.Fprintf(h, "%s\x00%d\x00", filepath.ToSlash(rel), info.Size())
		if _, err := io.Copy(h, f); err != nil {
			return fmt.Errorf("hash %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
