// Package emit splits the built-in theme array of the shared-types source
// into one manifest per theme under the data tree.
package emit

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"doctemplates/model"
	"doctemplates/storage"
	"doctemplates/theme"
)

// ErrSourceFileMissing is returned when the source file does not exist.
var ErrSourceFileMissing = errors.New("source file missing")

type Options struct {
	Source  string
	Marker  string
	DataDir string
}

// Run reads the source, extracts the theme array and rewrites the data tree.
// The tree is only touched after the array parsed successfully. It returns
// the number of manifests written.
func Run(opts Options, logger zerolog.Logger) (int, error) {
	content, err := os.ReadFile(opts.Source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrSourceFileMissing, opts.Source)
		}
		return 0, fmt.Errorf("read source %s: %w", opts.Source, err)
	}
	logger.Info().Str("source", opts.Source).Msg("read source file")

	records, err := theme.Extract(string(content), opts.Marker)
	if err != nil {
		return 0, fmt.Errorf("extract themes: %w", err)
	}
	logger.Info().Int("themes", len(records)).Msg("found built-in themes")

	store := storage.New(opts.DataDir)
	if err := store.Reset(); err != nil {
		return 0, err
	}

	if err := store.WriteMeta(model.NewMetaIndex()); err != nil {
		return 0, fmt.Errorf("write meta: %w", err)
	}

	written := 0
	for _, rec := range records {
		path, err := store.WriteManifest(model.ThemeCategory, model.NewManifest(rec, written))
		if err != nil {
			return written, fmt.Errorf("write theme %s: %w", rec.ID, err)
		}
		logger.Debug().Str("id", rec.ID).Str("path", path).Msg("wrote manifest")
		written++
	}

	return written, nil
}
