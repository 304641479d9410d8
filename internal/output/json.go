package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gitguardhq/gitguard/internal/verdict"
)

// JSONWriter emits the verdict structure as indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) WriteVerdict(w io.Writer, v verdict.Verdict) error {
	return writeJSON(w, v)
}

func (j *JSONWriter) WritePR(w io.Writer, pr verdict.PRVerdict) error {
	return writeJSON(w, pr)
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
