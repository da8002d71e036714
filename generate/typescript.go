package generate

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"doctemplates/model"
)

const fileHeader = `/**
 * 自动生成文件，请勿手动编辑
 * 由 doctemplates build 生成
 */
`

var (
	themeColorKeys = []string{"primary", "secondary", "background", "text", "accent"}
	themeFontKeys  = []string{"title", "body"}
)

// tsValue renders v as a TypeScript literal. Strings keep non-ASCII text
// as-is so the generated files stay readable.
func tsValue(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func tsStrings(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = tsValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// tsFields renders the given keys of m as "k: v" pairs; missing keys render
// as an empty string.
func tsFields(m map[string]any, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, ok := m[k]
		if !ok {
			v = ""
		}
		parts[i] = k + ": " + tsValue(v)
	}
	return strings.Join(parts, ", ")
}

func renderThemes(themes []model.ThemeManifest) string {
	var builder strings.Builder
	builder.WriteString(fileHeader)
	builder.WriteString("import type { PptTheme } from '../index';\n\n")
	builder.WriteString("export const BUILT_IN_PPT_THEMES: PptTheme[] = [\n")

	for _, t := range themes {
		builder.WriteString("  {\n")
		builder.WriteString("    id: " + tsValue(t.ID) + ",\n")
		builder.WriteString("    name: " + tsValue(t.Name) + ",\n")
		builder.WriteString("    colors: { " + tsFields(t.Colors, themeColorKeys) + " },\n")
		builder.WriteString("    fonts: { " + tsFields(t.Fonts, themeFontKeys) + " },\n")
		builder.WriteString("  },\n")
	}

	builder.WriteString("];\n\n")
	builder.WriteString("export const DEFAULT_PPT_THEME: PptTheme = BUILT_IN_PPT_THEMES[0];\n")
	return builder.String()
}

func renderCategories(categories []model.CategoryMeta) string {
	var builder strings.Builder
	builder.WriteString(fileHeader)
	builder.WriteString(`
export interface DocTemplateCategory {
  key: string;
  label: string;
  order: number;
  category_type: string;
}

export const DEFAULT_DOC_TEMPLATE_CATEGORIES: DocTemplateCategory[] = [
`)

	for _, c := range categories {
		builder.WriteString("  { key: " + tsValue(c.Key))
		builder.WriteString(", label: " + tsValue(c.Name))
		builder.WriteString(", order: " + strconv.Itoa(c.Order))
		builder.WriteString(`, category_type: "builtin" },` + "\n")
	}

	builder.WriteString("];\n")
	return builder.String()
}

func renderDocTemplates(docs []model.DocTemplateManifest) string {
	var builder strings.Builder
	builder.WriteString(fileHeader)
	builder.WriteString(`
export interface BuiltinDocTemplate {
  id: string;
  name: string;
  description: string;
  icon: string;
  majorCategory: string;
  subCategory: string;
  tags: string[];
  roles: string[];
  order: number;
  source: string;
}

export const BUILT_IN_DOC_TEMPLATES: BuiltinDocTemplate[] = [
`)

	for _, d := range docs {
		builder.WriteString("  { id: " + tsValue(d.ID))
		builder.WriteString(", name: " + tsValue(d.Name))
		builder.WriteString(", description: " + tsValue(d.Description))
		builder.WriteString(", icon: " + tsValue(d.Icon))
		builder.WriteString(", majorCategory: " + tsValue(d.MajorCategory))
		builder.WriteString(", subCategory: " + tsValue(d.SubCategory))
		builder.WriteString(", tags: " + tsStrings(d.Tags))
		builder.WriteString(", roles: " + tsStrings(d.Roles))
		builder.WriteString(", order: " + strconv.Itoa(d.Order))
		builder.WriteString(`, source: "builtin" },` + "\n")
	}

	builder.WriteString("];\n")
	return builder.String()
}
