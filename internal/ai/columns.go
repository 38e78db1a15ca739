package ai

import (
	"sort"
	"strings"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

// DeriveColumns groups items by resolved division and computes, per group,
// the union of non-empty data-field names actually used. Downstream table
// UIs render whatever the model actually found instead of a static schema.
// Every list starts with "Item Name" and "Location"; observed fields follow
// title-cased in alphabetical order.
func DeriveColumns(items []entity.ExtractedItem) map[string][]string {
	fieldsByDivision := map[string]map[string]bool{}
	for _, it := range items {
		code := it.CSIDivision.Code
		if fieldsByDivision[code] == nil {
			fieldsByDivision[code] = map[string]bool{}
		}
		for field, value := range it.Data {
			if strings.TrimSpace(value) != "" {
				fieldsByDivision[code][field] = true
			}
		}
	}

	out := make(map[string][]string, len(fieldsByDivision))
	for code, fields := range fieldsByDivision {
		names := make([]string, 0, len(fields))
		for f := range fields {
			names = append(names, f)
		}
		sort.Strings(names)

		cols := []string{"Item Name", "Location"}
		for _, f := range names {
			cols = append(cols, titleCase(f))
		}
		out[code] = cols
	}
	return out
}

// titleCase turns a data-field key like "modelNumber" or "unit_price" into a
// column title ("Model Number", "Unit Price").
func titleCase(field string) string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range field {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()

	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
