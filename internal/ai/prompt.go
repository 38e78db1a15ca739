package ai

import (
	"fmt"
	"strings"

	"github.com/amrelsisy2023/HiLyte-sub000/constants"
	"github.com/amrelsisy2023/HiLyte-sub000/internal/entity"
)

const maxOCRHintChars = 3000

// BuildSystemPrompt enumerates every available division verbatim and pins
// down the response contract: purchasable items only, schedules first, and
// an adaptive data map per item instead of a fixed column set.
func BuildSystemPrompt(divisions []entity.Division) string {
	var divs strings.Builder
	for _, d := range divisions {
		fmt.Fprintf(&divs, "- id %d | %s: %s (%s)\n", d.ID, d.Code, d.Name, d.Color)
	}

	return `You are an expert construction document analyzer specializing in extracting procurement data from architectural and engineering drawings.

AVAILABLE CSI DIVISIONS:
` + divs.String() + `
Your task is to identify and extract REAL construction items that contractors would actually purchase and install: materials, equipment, fixtures, components, and specialty systems. Ignore sheet titles, dimension and grid lines, legends, stamps, and general annotations.

EXTRACTION PRIORITIES:
1. SCHEDULES FIRST: door/window/equipment schedules contain the richest data
2. SPECIFICATIONS: material specs, equipment models, performance ratings
3. QUANTITIES: actual quantities, not just "1 EA"
4. TECHNICAL DATA: sizes, capacities, ratings, materials, finishes
5. PROCUREMENT INFO: model numbers, manufacturers, part numbers when available

For each item emit a "data" map holding ONLY the fields actually present in the document (quantity, unit, specification, size, manufacturer, model, material, finish, rating, mounting, notes) rather than a fixed column set.

RESPONSE FORMAT (a single JSON object, nothing else):
{
  "extractedItems": [
    {
      "itemName": "Clear, specific item name",
      "category": "` + strings.Join(constants.AsStringSlice(), "|") + `",
      "csiDivision": {"id": number, "code": "XX XX XX", "name": "Division Name"},
      "data": {"fieldName": "value"},
      "location": {"coordinates": {"x": 0, "y": 0, "width": 100, "height": 50}, "zone": "", "detail": ""},
      "confidence": 0.8,
      "calloutId": "short label if the drawing shows one"
    }
  ],
  "summary": {
    "totalItemsFound": 0,
    "divisionsFound": 0,
    "extractionApproach": "brief description of what type of data was found"
  }
}

Extract REAL construction items with actual procurement value.`
}

// BuildUserPrompt packages the sheet context and, when available, the OCR
// text hint alongside the attached region image.
func BuildUserPrompt(sheet entity.SheetMetadata, ocrText string) string {
	var b strings.Builder
	b.WriteString("Analyze the attached drawing region.\n")
	if sheet.SheetNumber != "" {
		b.WriteString("Sheet: " + sheet.SheetNumber + "\n")
	}
	if sheet.SheetName != "" {
		b.WriteString("Sheet title: " + sheet.SheetName + "\n")
	}

	ocrText = strings.TrimSpace(ocrText)
	if ocrText != "" {
		b.WriteString("\nOCR text recognized in this region (may contain errors):\n")
		if len(ocrText) > maxOCRHintChars {
			b.WriteString(ocrText[:maxOCRHintChars])
			b.WriteString("\n…(truncated)")
		} else {
			b.WriteString(ocrText)
		}
	}
	return b.String()
}
