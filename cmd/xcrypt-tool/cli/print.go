package cli

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

var newLine = []byte("\n")

// WriteJSON prints the value as tab indented JSON followed by a new line
func WriteJSON(out io.Writer, value any) error {
	js, err := json.MarshalIndent(value, "", "\t")
	if err != nil {
		return errors.WithMessage(err, "failed to encode")
	}

	_, _ = out.Write(js)
	_, _ = out.Write(newLine)

	return nil
}
