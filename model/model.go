package model

import (
	"encoding/json"
	"fmt"
)

const (
	SchemaVersion = "1.0"
	ResourceType  = "document-template"
	DefaultLocale = "zh"

	ThemeCategory  = "ppt-theme"
	ThemeIcon      = "🎨"
	ThemeVersion   = "1.0.0"
	ThemeAuthor    = "AiDocPlus"
	ThemeSource    = "builtin"
	ThemeSubCat    = "general"
	ThemeTimestamp = "2026-02-18T00:00:00Z"
)

// ThemeRecord is one entry of the built-in theme array. Colors and fonts are
// carried as raw JSON so key order survives the round trip.
type ThemeRecord struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Colors json.RawMessage `json:"colors,omitempty"`
	Fonts  json.RawMessage `json:"fonts,omitempty"`
}

type CategoryMeta struct {
	Key   string `json:"key" yaml:"key"`
	Name  string `json:"name" yaml:"name"`
	Icon  string `json:"icon" yaml:"icon"`
	Order int    `json:"order" yaml:"order"`
}

type MetaIndex struct {
	SchemaVersion string         `json:"schemaVersion"`
	ResourceType  string         `json:"resourceType"`
	DefaultLocale string         `json:"defaultLocale"`
	Categories    []CategoryMeta `json:"categories"`
}

// Manifest is the per-theme file written to data/ppt-theme/<id>/manifest.json.
type Manifest struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Icon          string          `json:"icon"`
	Version       string          `json:"version"`
	Author        string          `json:"author"`
	ResourceType  string          `json:"resourceType"`
	SubType       string          `json:"subType"`
	MajorCategory string          `json:"majorCategory"`
	SubCategory   string          `json:"subCategory"`
	Tags          []string        `json:"tags"`
	Order         int             `json:"order"`
	Enabled       bool            `json:"enabled"`
	Source        string          `json:"source"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
	Colors        json.RawMessage `json:"colors,omitempty"`
	Fonts         json.RawMessage `json:"fonts,omitempty"`
}

// NewMetaIndex returns the metadata index with the built-in category table.
func NewMetaIndex() MetaIndex {
	return MetaIndex{
		SchemaVersion: SchemaVersion,
		ResourceType:  ResourceType,
		DefaultLocale: DefaultLocale,
		Categories:    Categories(),
	}
}

// NewManifest builds the manifest for rec at position order.
func NewManifest(rec ThemeRecord, order int) Manifest {
	return Manifest{
		ID:            rec.ID,
		Name:          rec.Name,
		Description:   fmt.Sprintf("PPT 主题: %s", rec.Name),
		Icon:          ThemeIcon,
		Version:       ThemeVersion,
		Author:        ThemeAuthor,
		ResourceType:  ResourceType,
		SubType:       ThemeCategory,
		MajorCategory: ThemeCategory,
		SubCategory:   ThemeSubCat,
		Tags:          []string{"ppt", rec.Name},
		Order:         order,
		Enabled:       true,
		Source:        ThemeSource,
		CreatedAt:     ThemeTimestamp,
		UpdatedAt:     ThemeTimestamp,
		Colors:        rec.Colors,
		Fonts:         rec.Fonts,
	}
}

// ThemeManifest is the subset of a theme manifest read back by the build step.
type ThemeManifest struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Order  int            `json:"order"`
	Colors map[string]any `json:"colors"`
	Fonts  map[string]any `json:"fonts"`
}

// DocTemplateManifest describes a document template under data/<category>/<id>/.
type DocTemplateManifest struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Icon             string   `json:"icon"`
	MajorCategory    string   `json:"majorCategory"`
	SubCategory      string   `json:"subCategory"`
	Tags             []string `json:"tags"`
	Roles            []string `json:"roles"`
	Order            int      `json:"order"`
	EnabledPlugins   []string `json:"enabledPlugins"`
	IncludeContent   *bool    `json:"includeContent"`
	IncludeAiContent *bool    `json:"includeAiContent"`
}

// TemplateContent is the optional content.json next to a template manifest.
type TemplateContent struct {
	AuthorNotes        string          `json:"authorNotes"`
	Content            string          `json:"content"`
	AIGeneratedContent string          `json:"aiGeneratedContent"`
	PluginData         json.RawMessage `json:"pluginData"`
}
