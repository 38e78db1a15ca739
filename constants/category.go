package constants

import "strings"

// Category is the coarse kind of an extracted construction item.
type Category string

const (
	Material      Category = "material"
	Equipment     Category = "equipment"
	Fixture       Category = "fixture"
	Component     Category = "component"
	System        Category = "system"
	Dimension     Category = "dimension"
	Specification Category = "specification"
	Note          Category = "note"
)

var allCategories = []Category{
	Material,
	Equipment,
	Fixture,
	Component,
	System,
	Dimension,
	Specification,
	Note,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-form category label onto the fixed set, defaulting
// to Material when nothing matches (the model paraphrases labels routinely).
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Material, false
	}

	synonyms := map[string]Category{
		"materials":  Material,
		"product":    Material,
		"fixtures":   Fixture,
		"appliance":  Equipment,
		"machinery":  Equipment,
		"assembly":   Component,
		"systems":    System,
		"dimensions": Dimension,
		"spec":       Specification,
		"notes":      Note,
		"annotation": Note,
	}
	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}
	return Material, false
}
