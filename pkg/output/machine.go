package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/ui"
)

// WriteMachine encodes v as JSON or YAML for other programs.
func WriteMachine(w io.Writer, format ui.Format, v interface{}) error {
	switch format {
	case ui.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode JSON")
		}
	case ui.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
		}
	default:
		return errors.Newf(errors.ErrInvalidInput, "%s is not a machine format", format)
	}
	return nil
}
