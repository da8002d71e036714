// Package generate builds the dist/ artifacts consumed by the application
// from the data/ resource tree: TypeScript modules for the built-in themes,
// categories and document templates, plus one JSON file per category.
package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"doctemplates/model"
	"doctemplates/storage"
)

const (
	ThemesFile       = "ppt-themes.generated.ts"
	CategoriesFile   = "doc-template-categories.generated.ts"
	DocTemplatesFile = "doc-templates.generated.ts"
	JSONDir          = "json"
)

type Options struct {
	DataDir string
	DistDir string
}

// Summary counts what a build produced.
type Summary struct {
	Themes        int
	Categories    int
	DocTemplates  int
	JSONTemplates int
}

// Run generates every dist artifact. Missing inputs are logged and skipped;
// I/O and decode errors abort the build.
func Run(opts Options, logger zerolog.Logger) (Summary, error) {
	var sum Summary
	store := storage.New(opts.DataDir)

	if err := os.MkdirAll(opts.DistDir, 0o755); err != nil {
		return sum, fmt.Errorf("create dist dir: %w", err)
	}

	themes, err := store.ThemeManifests()
	if err != nil {
		return sum, fmt.Errorf("load themes: %w", err)
	}
	categories, err := loadCategories(store)
	if err != nil {
		return sum, err
	}

	if len(themes) > 0 {
		if err := writeFile(opts.DistDir, ThemesFile, renderThemes(themes)); err != nil {
			return sum, err
		}
		sum.Themes = len(themes)
		logger.Info().Int("themes", sum.Themes).Str("file", ThemesFile).Msg("generated themes")
	} else {
		logger.Warn().Msg("no ppt themes found")
	}

	if len(categories) > 0 {
		if err := writeFile(opts.DistDir, CategoriesFile, renderCategories(categories)); err != nil {
			return sum, err
		}
		sum.Categories = len(categories)
		logger.Info().Int("categories", sum.Categories).Str("file", CategoriesFile).Msg("generated categories")
	}

	docs, err := loadDocTemplates(store)
	if err != nil {
		return sum, err
	}
	if len(docs) > 0 {
		if err := writeFile(opts.DistDir, DocTemplatesFile, renderDocTemplates(docs)); err != nil {
			return sum, err
		}
		sum.DocTemplates = len(docs)
		logger.Info().Int("templates", sum.DocTemplates).Str("file", DocTemplatesFile).Msg("generated document templates")
	}

	if len(categories) == 0 {
		logger.Warn().Msg("no category definitions found (_meta.json)")
		return sum, nil
	}

	total, err := writeCategoryJSON(store, categories, filepath.Join(opts.DistDir, JSONDir))
	if err != nil {
		return sum, err
	}
	sum.JSONTemplates = total
	logger.Info().
		Int("templates", total).
		Int("categories", len(categories)).
		Str("dir", filepath.Join(opts.DistDir, JSONDir)).
		Msg("generated category json")

	return sum, nil
}

func loadCategories(store *storage.Store) ([]model.CategoryMeta, error) {
	meta, err := store.LoadMeta()
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	if meta == nil {
		return nil, nil
	}
	return meta.Categories, nil
}

// loadDocTemplates collects every non-theme template, sorted by major
// category and then order.
func loadDocTemplates(store *storage.Store) ([]model.DocTemplateManifest, error) {
	dirs, err := store.CategoryDirs()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	var docs []model.DocTemplateManifest
	for _, dir := range dirs {
		if dir == model.ThemeCategory {
			continue
		}
		templates, err := store.DocTemplates(dir)
		if err != nil {
			return nil, fmt.Errorf("load %s templates: %w", dir, err)
		}
		for _, tmpl := range templates {
			docs = append(docs, tmpl.Manifest)
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].MajorCategory != docs[j].MajorCategory {
			return docs[i].MajorCategory < docs[j].MajorCategory
		}
		return docs[i].Order < docs[j].Order
	})

	return docs, nil
}

func writeFile(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
