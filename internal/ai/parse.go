package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/taxonomy"
)

const defaultConfidence = 0.75

// rawItem mirrors the shape the model was asked for, leniently. Older prompt
// revisions used procurementData instead of data; both are accepted and
// merged, procurementData winning on overlapping keys.
type rawItem struct {
	ItemName        string             `json:"itemName"`
	Category        string             `json:"category"`
	CSIDivision     entity.DivisionRef `json:"csiDivision"`
	Data            map[string]any     `json:"data"`
	ProcurementData map[string]any     `json:"procurementData"`
	Location        struct {
		Coordinates entity.Region `json:"coordinates"`
		Zone        string        `json:"zone"`
		Detail      string        `json:"detail"`
		Confidence  *float64      `json:"confidence"`
	} `json:"location"`
	Confidence *float64 `json:"confidence"`
	CalloutID  string   `json:"calloutId"`
}

type rawResponse struct {
	ExtractedItems []rawItem                `json:"extractedItems"`
	Summary        entity.ExtractionSummary `json:"summary"`
}

// extractJSONSpan locates the first '{' and last '}' in the raw response and
// returns that substring: models sometimes wrap the JSON in prose or code
// fences. No balanced span is a hard parse error.
func extractJSONSpan(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", common.NewAppError("AI_NO_JSON", "no JSON object found in model response", common.ErrAIParse)
	}
	return raw[start : end+1], nil
}

// parseResponse validates and converts the model output into typed items.
// Every item is run through the classification cascade with the model's
// division guess as the hint, so a slightly-wrong guess never drops an item.
func parseResponse(raw string, req Request) ([]entity.ExtractedItem, entity.ExtractionSummary, error) {
	span, err := extractJSONSpan(raw)
	if err != nil {
		return nil, entity.ExtractionSummary{}, err
	}
	if err := validateResponse([]byte(span)); err != nil {
		return nil, entity.ExtractionSummary{}, common.NewAppError("AI_BAD_SHAPE", err.Error(), common.ErrAIParse)
	}

	var parsed rawResponse
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return nil, entity.ExtractionSummary{}, common.NewAppError("AI_BAD_JSON", fmt.Sprintf("decode model JSON: %v", err), common.ErrAIParse)
	}

	sheetNumber := req.Sheet.SheetNumber
	if sheetNumber == "" {
		sheetNumber = fmt.Sprintf("Page %d", req.Sheet.PageNumber)
	}

	items := make([]entity.ExtractedItem, 0, len(parsed.ExtractedItems))
	for _, ri := range parsed.ExtractedItems {
		name := strings.TrimSpace(ri.ItemName)
		if name == "" {
			name = "Unnamed Item"
		}
		category, _ := constants.Canonicalize(ri.Category)
		division := taxonomy.Classify(ri.CSIDivision, name, category, req.Divisions)

		coords := ri.Location.Coordinates
		if coords.Empty() {
			coords = req.Region
		}

		items = append(items, entity.ExtractedItem{
			ItemName:    name,
			Category:    string(category),
			CSIDivision: division,
			Location: entity.ItemLocation{
				Coordinates: coords,
				SheetNumber: sheetNumber,
				SheetName:   req.Sheet.SheetName,
				Zone:        ri.Location.Zone,
				Detail:      ri.Location.Detail,
			},
			Data:       mergeData(ri.Data, ri.ProcurementData),
			Confidence: resolveConfidence(ri),
			CalloutID:  resolveCallout(ri.CalloutID),
		})
	}

	summary := parsed.Summary
	summary.TotalItemsFound = len(items)
	summary.DivisionsFound = countDivisions(items)
	return items, summary, nil
}

// mergeData flattens both adaptive maps into string values; procurementData
// takes precedence for overlapping keys.
func mergeData(data, procurement map[string]any) map[string]string {
	out := make(map[string]string, len(data)+len(procurement))
	for k, v := range data {
		if s := stringify(v); s != "" {
			out[k] = s
		}
	}
	for k, v := range procurement {
		if s := stringify(v); s != "" {
			out[k] = s
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// resolveConfidence clamps to [0,1], preferring the item-level value, then
// the location-level one, then the default.
func resolveConfidence(ri rawItem) float64 {
	conf := defaultConfidence
	switch {
	case ri.Confidence != nil:
		conf = *ri.Confidence
	case ri.Location.Confidence != nil:
		conf = *ri.Location.Confidence
	}
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// resolveCallout keeps the model's callout when present, otherwise assigns a
// short random token so every item stays cross-referenceable.
func resolveCallout(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()[:8]
}

func countDivisions(items []entity.ExtractedItem) int {
	seen := map[int]bool{}
	for _, it := range items {
		seen[it.CSIDivision.ID] = true
	}
	return len(seen)
}
