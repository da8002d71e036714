package emit

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"doctemplates/model"
	"doctemplates/theme"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.ts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func syntheticSource(n int) string {
	var sb strings.Builder
	sb.WriteString("export interface PptTheme { id: string }\n\n")
	sb.WriteString(theme.DefaultMarker + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "  {\n    id: 'theme-%d',\n    name: 'Theme %d]',\n    colors: { primary: '#%06d', text: `#fff` },\n    fonts: { title: 'Sans', body: 'Serif' },\n  },\n", i, i, i)
	}
	sb.WriteString("];\n")
	return sb.String()
}

func TestRunWritesManifests(t *testing.T) {
	const n = 5
	source := writeSource(t, syntheticSource(n))
	dataDir := filepath.Join(t.TempDir(), "data")

	written, err := Run(Options{Source: source, Marker: theme.DefaultMarker, DataDir: dataDir}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, n, written)

	entries, err := os.ReadDir(filepath.Join(dataDir, "ppt-theme"))
	require.NoError(t, err)
	require.Len(t, entries, n)

	for i := 0; i < n; i++ {
		data, err := os.ReadFile(filepath.Join(dataDir, "ppt-theme", fmt.Sprintf("theme-%d", i), "manifest.json"))
		require.NoError(t, err)

		var m model.Manifest
		require.NoError(t, json.Unmarshal(data, &m))
		require.Equal(t, i, m.Order)
		require.Equal(t, fmt.Sprintf("theme-%d", i), m.ID)
		require.Equal(t, fmt.Sprintf("Theme %d]", i), m.Name)
		require.True(t, m.Enabled)
		require.Equal(t, "builtin", m.Source)
		require.JSONEq(t, `{"title":"Sans","body":"Serif"}`, string(m.Fonts))
	}

	var meta model.MetaIndex
	data, err := os.ReadFile(filepath.Join(dataDir, "_meta.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &meta))
	require.Len(t, meta.Categories, 8)
	require.Equal(t, model.Categories(), meta.Categories)
}

func TestRunExampleTheme(t *testing.T) {
	source := writeSource(t, `export const BUILT_IN_PPT_THEMES: PptTheme[] = [{id:"dark",name:"Dark",colors:{bg:"#000"},fonts:{body:"Sans"}}];`)
	dataDir := filepath.Join(t.TempDir(), "data")

	written, err := Run(Options{Source: source, Marker: theme.DefaultMarker, DataDir: dataDir}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 1, written)

	data, err := os.ReadFile(filepath.Join(dataDir, "ppt-theme", "dark", "manifest.json"))
	require.NoError(t, err)

	want := `{
  "id": "dark",
  "name": "Dark",
  "description": "PPT 主题: Dark",
  "icon": "🎨",
  "version": "1.0.0",
  "author": "AiDocPlus",
  "resourceType": "document-template",
  "subType": "ppt-theme",
  "majorCategory": "ppt-theme",
  "subCategory": "general",
  "tags": [
    "ppt",
    "Dark"
  ],
  "order": 0,
  "enabled": true,
  "source": "builtin",
  "createdAt": "2026-02-18T00:00:00Z",
  "updatedAt": "2026-02-18T00:00:00Z",
  "colors": {
    "bg": "#000"
  },
  "fonts": {
    "body": "Sans"
  }
}
`
	require.Equal(t, want, string(data))
}

func TestRunIsIdempotent(t *testing.T) {
	source := writeSource(t, syntheticSource(3))
	dataDir := filepath.Join(t.TempDir(), "data")
	opts := Options{Source: source, Marker: theme.DefaultMarker, DataDir: dataDir}

	_, err := Run(opts, zerolog.Nop())
	require.NoError(t, err)
	first := readTree(t, dataDir)

	_, err = Run(opts, zerolog.Nop())
	require.NoError(t, err)
	second := readTree(t, dataDir)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second run changed output (-first +second):\n%s", diff)
	}
}

func TestRunReplacesPreviousOutput(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	stale := filepath.Join(dataDir, "ppt-theme", "removed", "manifest.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("{}"), 0o644))

	source := writeSource(t, syntheticSource(1))
	_, err := Run(Options{Source: source, Marker: theme.DefaultMarker, DataDir: dataDir}, zerolog.Nop())
	require.NoError(t, err)

	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err))
}

func TestRunFailuresLeaveOutputUntouched(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"marker missing", "export const OTHER = [];", theme.ErrMarkerNotFound},
		{"parse error", theme.DefaultMarker + "{id: makeId()}];", theme.ErrArrayParse},
		{"unterminated", theme.DefaultMarker + "{id: 'a'}", theme.ErrArrayParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataDir := filepath.Join(t.TempDir(), "data")
			keep := filepath.Join(dataDir, "keep.txt")
			require.NoError(t, os.MkdirAll(dataDir, 0o755))
			require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))

			source := writeSource(t, tt.content)
			written, err := Run(Options{Source: source, Marker: theme.DefaultMarker, DataDir: dataDir}, zerolog.Nop())
			require.ErrorIs(t, err, tt.wantErr)
			require.Zero(t, written)

			require.Equal(t, map[string]string{"keep.txt": "keep"}, readTree(t, dataDir))
		})
	}
}

func TestRunSourceMissing(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	_, err := Run(Options{
		Source:  filepath.Join(t.TempDir(), "missing.ts"),
		Marker:  theme.DefaultMarker,
		DataDir: dataDir,
	}, zerolog.Nop())
	require.ErrorIs(t, err, ErrSourceFileMissing)

	_, statErr := os.Stat(dataDir)
	require.True(t, os.IsNotExist(statErr))
}
