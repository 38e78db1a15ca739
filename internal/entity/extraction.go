package entity

// ResultType classifies what a region extraction produced.
type ResultType string

const (
	ResultTable         ResultType = "table"
	ResultText          ResultType = "text"
	ResultSchedule      ResultType = "schedule"
	ResultSpecification ResultType = "specification"
	ResultMixed         ResultType = "mixed"
)

// WordBox is a single recognized word with its region-local pixel position.
type WordBox struct {
	Text       string  `json:"text"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// StructuredTable is a reconstructed headers+rows grid.
type StructuredTable struct {
	Headers      []string   `json:"headers"`
	Rows         [][]string `json:"rows"`
	DrawingType  string     `json:"drawingType,omitempty"`
	ScheduleType string     `json:"scheduleType,omitempty"`
}

// Normalize pads or truncates every row to exactly len(Headers) cells.
func (t *StructuredTable) Normalize() {
	n := len(t.Headers)
	for i, row := range t.Rows {
		switch {
		case len(row) < n:
			padded := make([]string, n)
			copy(padded, row)
			t.Rows[i] = padded
		case len(row) > n:
			t.Rows[i] = row[:n]
		}
	}
}

// Suggestions carries advisory hints attached to an extraction result.
type Suggestions struct {
	Division    string `json:"division,omitempty"`
	DataType    string `json:"dataType,omitempty"`
	Improvement string `json:"improvement,omitempty"`
}

// ExtractionResult is the unit of work output for a single region.
type ExtractionResult struct {
	Text        string           `json:"text"`
	Confidence  float64          `json:"confidence"`
	Type        ResultType       `json:"type"`
	Structured  *StructuredTable `json:"structured,omitempty"`
	Suggestions *Suggestions     `json:"suggestions,omitempty"`
	AIEnhanced  bool             `json:"aiEnhanced"`
}
