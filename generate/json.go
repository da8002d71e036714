package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"doctemplates/model"
	"doctemplates/storage"
)

const defaultCategoryIcon = "📋"

type categoryFile struct {
	Key       string         `json:"key"`
	Name      string         `json:"name"`
	Icon      string         `json:"icon"`
	Order     int            `json:"order"`
	Templates []templateJSON `json:"templates"`
}

type templateJSON struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	AuthorNotes        string          `json:"authorNotes"`
	Content            string          `json:"content"`
	Tags               []string        `json:"tags"`
	Order              int             `json:"order"`
	EnabledPlugins     []string        `json:"enabledPlugins"`
	IncludeContent     bool            `json:"includeContent"`
	IncludeAiContent   bool            `json:"includeAiContent"`
	AIGeneratedContent string          `json:"aiGeneratedContent,omitempty"`
	PluginData         json.RawMessage `json:"pluginData,omitempty"`
}

// writeCategoryJSON writes <dir>/<key>.json for every category except the
// theme category and returns the number of templates written.
func writeCategoryJSON(store *storage.Store, categories []model.CategoryMeta, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}

	total := 0
	for _, cat := range categories {
		if cat.Key == model.ThemeCategory {
			continue
		}

		templates, err := store.DocTemplates(cat.Key)
		if err != nil {
			return total, fmt.Errorf("load %s templates: %w", cat.Key, err)
		}

		file := categoryFile{
			Key:       cat.Key,
			Name:      cat.Name,
			Icon:      cat.Icon,
			Order:     cat.Order,
			Templates: make([]templateJSON, 0, len(templates)),
		}
		if file.Icon == "" {
			file.Icon = defaultCategoryIcon
		}
		for _, tmpl := range templates {
			file.Templates = append(file.Templates, newTemplateJSON(tmpl))
		}
		sort.SliceStable(file.Templates, func(i, j int) bool {
			return file.Templates[i].Order < file.Templates[j].Order
		})

		if err := storage.WriteJSON(filepath.Join(dir, cat.Key+".json"), file); err != nil {
			return total, err
		}
		total += len(file.Templates)
	}

	return total, nil
}

func newTemplateJSON(tmpl storage.DocTemplate) templateJSON {
	m := tmpl.Manifest
	var content model.TemplateContent
	if tmpl.Content != nil {
		content = *tmpl.Content
	}

	entry := templateJSON{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		AuthorNotes:        content.AuthorNotes,
		Content:            content.Content,
		Tags:               m.Tags,
		Order:              m.Order,
		EnabledPlugins:     m.EnabledPlugins,
		IncludeContent:     content.Content != "",
		IncludeAiContent:   content.AIGeneratedContent != "",
		AIGeneratedContent: content.AIGeneratedContent,
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if entry.EnabledPlugins == nil {
		entry.EnabledPlugins = []string{}
	}
	if m.IncludeContent != nil {
		entry.IncludeContent = *m.IncludeContent
	}
	if m.IncludeAiContent != nil {
		entry.IncludeAiContent = *m.IncludeAiContent
	}
	if isTruthyJSON(content.PluginData) {
		entry.PluginData = content.PluginData
	}

	return entry
}

// isTruthyJSON reports whether raw holds a value other than null, false, 0,
// "" or an empty object or array.
func isTruthyJSON(raw json.RawMessage) bool {
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return false
	}
	switch compact.String() {
	case "", "null", "false", "0", `""`, "{}", "[]":
		return false
	}
	return true
}
