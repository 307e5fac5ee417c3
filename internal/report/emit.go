package report

import (
	"encoding/json"

	"github.com/algorzen/insight-reporter/internal/utils"
)

// MarshalJSON-style emission with the error taxonomy the callers
// expect: any failure is a *SerializationError.

// ToJSON renders the Result as indented interchange JSON.
func (r *Result) ToJSON() ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return b, nil
}

// WriteJSON emits the Result to path atomically.
func (r *Result) WriteJSON(path string) error {
	b, err := r.ToJSON()
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return &SerializationError{Err: err}
	}
	return nil
}

// ParseJSON parses interchange JSON back into a Result.
func ParseJSON(b []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, &SerializationError{Err: err}
	}
	return &r, nil
}
