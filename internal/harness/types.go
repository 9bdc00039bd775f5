package harness

// OutcomeSnapshot is one expression's outcome rendered as text cells.
// Exactly one of Error or Entity is set.
type OutcomeSnapshot struct {
	Entity  string     `json:"entity,omitempty"`
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
	Error   string     `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

// StepResult holds the expanded query and its outcomes.
type StepResult struct {
	Query    string            `json:"query"`
	Outcomes []OutcomeSnapshot `json:"outcomes"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Steps holds every step's outcomes in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
