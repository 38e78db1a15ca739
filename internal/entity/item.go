package entity

// ItemLocation ties an extracted item back to its spot on the drawing.
type ItemLocation struct {
	Coordinates Region `json:"coordinates"`
	SheetNumber string `json:"sheetNumber"`
	SheetName   string `json:"sheetName,omitempty"`
	Zone        string `json:"zone,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// ExtractedItem is one purchasable construction item identified on a page.
// Data is an open map on purpose: the attribute set varies per item (a door
// has width/height/rating, a pump has capacity/voltage) and flattening it to
// a fixed column set loses information the source document contains.
// Items are immutable once created.
type ExtractedItem struct {
	ItemName    string            `json:"itemName"`
	Category    string            `json:"category"`
	CSIDivision Division          `json:"csiDivision"`
	Location    ItemLocation      `json:"location"`
	Data        map[string]string `json:"data"`
	Confidence  float64           `json:"confidence"`
	CalloutID   string            `json:"calloutId"`
}

// ExtractionSummary describes one AI extraction pass as a whole.
type ExtractionSummary struct {
	TotalItemsFound    int    `json:"totalItemsFound"`
	DivisionsFound     int    `json:"divisionsFound"`
	ExtractionApproach string `json:"extractionApproach,omitempty"`
}

// SheetMetadata labels a page with its human-readable sheet reference.
type SheetMetadata struct {
	PageNumber  int    `json:"pageNumber"`
	SheetNumber string `json:"sheetNumber"`
	SheetName   string `json:"sheetName,omitempty"`
}
