package trace

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
)

// Report is the machine-readable summary of one parsed planner run.
type Report struct {
	ID       string     `json:"id"`
	Created  time.Time  `json:"created"`
	Source   string     `json:"source,omitempty"`
	Problem  string     `json:"problem,omitempty"`
	Outcome  string     `json:"outcome"`
	Plan     PlanReport `json:"plan"`
	Stats    Stats      `json:"stats"`
	PlanFile string     `json:"plan_out,omitempty"`
}

// PlanReport summarises the extracted plan.
type PlanReport struct {
	Found    bool    `json:"found"`
	Actions  int     `json:"actions"`
	Makespan float64 `json:"makespan"`
}

// NewReport summarises p. source names the planner output it came from.
func NewReport(p *Plan, source string) *Report {
	return &Report{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Source:  source,
		Outcome: p.Outcome().String(),
		Plan: PlanReport{
			Found:    len(p.Actions) > 0,
			Actions:  len(p.Actions),
			Makespan: p.Makespan(),
		},
		Stats: p.Stats,
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
