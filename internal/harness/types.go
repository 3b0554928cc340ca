package harness

// Snapshot is the observable outcome of a scenario's query. It is what
// assertions check and what golden files record.
type Snapshot struct {
	Scenario string          `json:"scenario"`
	Total    int             `json:"total"`
	HasMore  bool            `json:"has_more"`
	IDs      []string        `json:"ids"`
	Groups   []GroupSnapshot `json:"groups,omitempty"`
	Error    *ErrorSnapshot  `json:"error,omitempty"`
}

// GroupSnapshot is one group with its member ids.
type GroupSnapshot struct {
	Key string   `json:"key"`
	IDs []string `json:"ids"`
}

// ErrorSnapshot describes a failed query.
type ErrorSnapshot struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held and the store agreed with the
	// in-memory pipeline.
	Pass bool `json:"pass"`

	// Snapshot is the query outcome.
	Snapshot Snapshot `json:"snapshot"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
