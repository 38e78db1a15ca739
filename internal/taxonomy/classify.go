// Package taxonomy maps free-form extracted items onto the user's division
// list. The model's division guess is frequently slightly wrong (wrong code
// format, paraphrased name), and silently dropping procurement data for lack
// of a clean match is worse than mis-filing it into a plausible bucket, so
// classification is total: it always returns a member of the supplied list.
package taxonomy

import (
	"strings"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

// KeywordDivisions maps construction-domain terms to the division code they
// imply. Ordered: the first term found in the item text wins. The contents
// are illustrative CSI-style defaults, not a contract; deployments with
// custom taxonomies can swap the table.
var KeywordDivisions = []struct {
	Term string
	Code string
}{
	{"concrete", "03"}, {"rebar", "03"}, {"cement", "03"}, {"grout", "03"},
	{"brick", "04"}, {"block", "04"}, {"masonry", "04"}, {"cmu", "04"},
	{"steel", "05"}, {"beam", "05"}, {"column", "05"}, {"structural", "05"}, {"joist", "05"},
	{"wood", "06"}, {"lumber", "06"}, {"framing", "06"}, {"plywood", "06"},
	{"insulation", "07"}, {"roofing", "07"}, {"waterproofing", "07"}, {"sealant", "07"},
	{"door", "08"}, {"window", "08"}, {"glazing", "08"}, {"storefront", "08"},
	{"flooring", "09"}, {"paint", "09"}, {"tile", "09"}, {"carpet", "09"}, {"gypsum", "09"}, {"drywall", "09"},
	{"elevator", "14"}, {"escalator", "14"},
	{"sprinkler", "21"}, {"fire suppression", "21"},
	{"plumbing", "22"}, {"pipe", "22"}, {"fixture", "22"}, {"valve", "22"},
	{"hvac", "23"}, {"duct", "23"}, {"fan", "23"}, {"unit", "23"}, {"ahu", "23"}, {"rtu", "23"},
	{"electrical", "26"}, {"panel", "26"}, {"conduit", "26"}, {"outlet", "26"}, {"lighting", "26"},
	{"data", "27"}, {"telecom", "27"},
	{"alarm", "28"}, {"camera", "28"}, {"security", "28"},
	{"excavation", "31"}, {"grading", "31"},
	{"paving", "32"}, {"landscape", "32"},
	{"utility", "33"}, {"sewer", "33"},
}

// categoryDefaults routes an item's coarse category to a division code when
// nothing else matched.
var categoryDefaults = map[constants.Category]string{
	constants.Material:      "03",
	constants.Equipment:     "23",
	constants.System:        "26",
	constants.Dimension:     "01",
	constants.Specification: "01",
	constants.Note:          "01",
}

// Classify resolves a division hint plus item text against a snapshot of the
// available divisions. Divisions are user-mutable, so the list is always a
// parameter, never cached, and code-prefix matching is a best-effort
// heuristic. Ordered attempts, first match wins:
//
//  1. exact id or code equality
//  2. case-insensitive name substring match, either direction
//  3. two-character code-prefix match
//  4. keyword table scan over the item text
//  5. category default
//  6. first available division
//
// With a non-empty division list the result is always a member of it.
func Classify(hint entity.DivisionRef, itemText string, category constants.Category, available []entity.Division) entity.Division {
	if len(available) == 0 {
		return entity.Division{ID: 1, Code: "01", Name: "General Requirements"}
	}

	// 1. Exact id or code.
	for _, d := range available {
		if (hint.ID != 0 && d.ID == hint.ID) || (hint.Code != "" && d.Code == hint.Code) {
			return d
		}
	}

	// 2. Name substring, either direction.
	if name := strings.ToLower(strings.TrimSpace(hint.Name)); name != "" {
		for _, d := range available {
			dn := strings.ToLower(d.Name)
			if strings.Contains(dn, name) || strings.Contains(name, dn) {
				return d
			}
		}
	}

	// 3. Code-prefix: "03 30 00" should land on the "03" division.
	if prefix := codePrefix(hint.Code); prefix != "" {
		for _, d := range available {
			if codePrefix(d.Code) == prefix {
				return d
			}
		}
	}

	// 4. Keyword scan over the item text.
	lower := strings.ToLower(itemText)
	for _, kw := range KeywordDivisions {
		if !strings.Contains(lower, kw.Term) {
			continue
		}
		if d, ok := byCodePrefix(available, kw.Code); ok {
			return d
		}
	}

	// 5. Category default.
	if code, ok := categoryDefaults[category]; ok {
		if d, ok := byCodePrefix(available, code); ok {
			return d
		}
	}

	// 6. Absolute fallback.
	return available[0]
}

// SuggestCode scans item text against the keyword table and returns the
// implied division code, for advisory suggestions on OCR-only results.
func SuggestCode(itemText string) string {
	lower := strings.ToLower(itemText)
	for _, kw := range KeywordDivisions {
		if strings.Contains(lower, kw.Term) {
			return kw.Code
		}
	}
	return ""
}

func codePrefix(code string) string {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

func byCodePrefix(available []entity.Division, code string) (entity.Division, bool) {
	for _, d := range available {
		if codePrefix(d.Code) == codePrefix(code) {
			return d, true
		}
	}
	return entity.Division{}, false
}
