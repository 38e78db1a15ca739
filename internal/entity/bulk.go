package entity

// BulkPhase is the lifecycle phase of a bulk extraction run.
type BulkPhase string

const (
	BulkIdle       BulkPhase = "idle"
	BulkAnalyzing  BulkPhase = "analyzing"
	BulkExtracting BulkPhase = "extracting"
	BulkComplete   BulkPhase = "complete"
	BulkError      BulkPhase = "error"
)

// BulkStatus is a point-in-time snapshot of a bulk run, suitable for UI
// polling.
type BulkStatus struct {
	IsProcessing       bool      `json:"isProcessing"`
	DrawingID          string    `json:"drawingId,omitempty"`
	Filename           string    `json:"filename,omitempty"`
	CurrentPage        int       `json:"currentPage"`
	TotalPages         int       `json:"totalPages"`
	ExtractedItemCount int       `json:"extractedItemCount"`
	Phase              BulkPhase `json:"phase"`
	Error              string    `json:"error,omitempty"`
}
