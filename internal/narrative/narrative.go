// Package narrative produces the executive narrative for an analysis
// run. Generation is a two-state machine: a single REMOTE attempt
// against a configured model endpoint, then an unconditional fallback
// to a deterministic LOCAL template path that cannot fail.
package narrative

// Method records which path actually produced the narrative content.
type Method string

const (
	MethodRemote Method = "REMOTE"
	MethodLocal  Method = "LOCAL"
)

// Narrative is the structured output handed to the report layer.
// All four sections are non-empty for any valid input.
type Narrative struct {
	Method          Method   `json:"method"`
	Summary         string   `json:"summary"`
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
	Risks           []string `json:"risks"`
}
