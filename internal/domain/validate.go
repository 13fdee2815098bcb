package domain

// ValidationResult is the structural parser's verdict on one file.
type ValidationResult struct {
	File    string `json:"file"`
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidationReport groups the results of a validate run.
type ValidationReport struct {
	Root    string             `json:"root"`
	Results []ValidationResult `json:"results"`
	Passed  int                `json:"passed"`
	Failed  int                `json:"failed"`
}

// Add appends a result and keeps the pass/fail counters in step.
func (r *ValidationReport) Add(v ValidationResult) {
	r.Results = append(r.Results, v)
	if v.Valid {
		r.Passed++
	} else {
		r.Failed++
	}
}
