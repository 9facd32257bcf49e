package edit

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type script struct {
	Edits []scriptEdit `yaml:"edits"`
}

type scriptEdit struct {
	Start int    `yaml:"start"`
	End   *int   `yaml:"end"`
	Text  string `yaml:"text"`
}

// ParseScript decodes a YAML edit script:
//
//	edits:
//	  - start: 0
//	    end: 1
//	    text: "3"
//	  - start: 12
//	    text: " (sifted)"
//
// An entry without end is an insertion. Unknown keys are rejected.
func ParseScript(data []byte) ([]TextEdit, error) {
	var doc script

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse edit script: %w", err)
	}

	out := make([]TextEdit, 0, len(doc.Edits))
	for _, e := range doc.Edits {
		end := e.Start
		if e.End != nil {
			end = *e.End
		}
		out = append(out, TextEdit{Start: e.Start, End: end, NewText: e.Text})
	}
	return out, nil
}
