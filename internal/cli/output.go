package cli

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// encode renders v in the configured machine format. ok is false for table
// output, in which case the caller renders its own view.
func (a *app) encode(v any) (out string, ok bool, err error) {
	switch a.settings.Output {
	case outputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", true, fmt.Errorf("encode json: %w", err)
		}
		return string(data) + "\n", true, nil
	case outputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", true, fmt.Errorf("encode yaml: %w", err)
		}
		return string(data), true, nil
	}
	return "", false, nil
}

// print writes v in the configured format, using table() for table output.
func (a *app) print(v any, table func() string) error {
	return a.render(func() (string, error) {
		out, ok, err := a.encode(v)
		if err != nil || ok {
			return out, err
		}
		return table(), nil
	})
}

// note writes a human message; it is suppressed for machine formats so
// stdout stays parseable.
func (a *app) note(format string, args ...any) {
	if a.settings.Output != outputTable {
		return
	}
	fmt.Fprintf(a.opts.Out, format+"\n", args...)
}
