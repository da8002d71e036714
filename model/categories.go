package model

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

var builtinCategories = mustParseCategories(categoriesYAML)

func parseCategories(data []byte) ([]CategoryMeta, error) {
	var cats []CategoryMeta
	if err := yaml.Unmarshal(data, &cats); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	for i, c := range cats {
		if c.Key == "" {
			return nil, fmt.Errorf("category %d: key is required", i)
		}
	}
	return cats, nil
}

func mustParseCategories(data []byte) []CategoryMeta {
	cats, err := parseCategories(data)
	if err != nil {
		panic("model: builtin categories: " + err.Error())
	}
	return cats
}

// Categories returns a copy of the built-in category table in display order.
func Categories() []CategoryMeta {
	out := make([]CategoryMeta, len(builtinCategories))
	copy(out, builtinCategories)
	return out
}
