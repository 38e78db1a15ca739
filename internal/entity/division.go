package entity

// Division is one entry of the construction-division taxonomy. Codes follow a
// hierarchical numeric-prefix scheme (e.g. "03", "03 30 00"); users can rename
// and recolor entries at any time, so code prefixes are a best-effort
// convention, not an enforced invariant.
type Division struct {
	ID    int    `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DivisionRef is a possibly-partial division reference, typically the AI
// model's guess. Any subset of the fields may be set.
type DivisionRef struct {
	ID   int    `json:"id,omitempty"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}
