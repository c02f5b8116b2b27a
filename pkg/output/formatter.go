// Package output provides shared output formatting for the command line.
// It supports three output modes:
//   - Default: Human-readable text output
//   - JSON: Pretty-printed JSON output
//   - Minimal+JSON: Single-line JSON with abbreviated keys and no empty fields
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Formatter handles output formatting with support for JSON and minimal modes.
type Formatter struct {
	JSON    bool // Output as JSON
	Minimal bool // Output in minimal/token-optimized mode
	Writer  io.Writer
	// ErrWriter receives text-mode errors. JSON errors go to Writer so they
	// can be parsed together with results.
	ErrWriter io.Writer
}

// New creates a new Formatter with the given options.
func New(jsonOutput, minimal bool, w, errW io.Writer) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	if errW == nil {
		errW = os.Stderr
	}
	return &Formatter{
		JSON:      jsonOutput,
		Minimal:   minimal,
		Writer:    w,
		ErrWriter: errW,
	}
}

// KeyAbbreviations maps full key names to abbreviated versions for minimal JSON output.
var KeyAbbreviations = map[string]string{
	"template":      "t",
	"template_path": "tp",
	"target_dir":    "td",
	"stats":         "st",
	"files":         "f",
	"dirs":          "d",
	"symlinks":      "sl",
	"skipped":       "sk",
	"excluded":      "x",
	"bytes":         "b",
	"available":     "av",
	"message":       "msg",
	"error":         "err",
	"status":        "s",
	"hint":          "h",
}

// Print outputs the data according to the formatter's configuration.
// textFunc is called for default text output; if nil, JSON is used as fallback.
func (f *Formatter) Print(data interface{}, textFunc func(io.Writer, interface{})) error {
	if f.JSON || textFunc == nil {
		return f.printJSON(f.Writer, data)
	}
	textFunc(f.Writer, data)
	return nil
}

func (f *Formatter) printJSON(w io.Writer, data interface{}) error {
	if f.Minimal {
		compact, err := minimize(data)
		if err != nil {
			return err
		}
		out, err := json.Marshal(compact)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// minimize round-trips data through JSON, then abbreviates keys and drops
// empty values.
func minimize(data interface{}) (interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return compactValue(generic), nil
}

func compactValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			if isEmptyValue(child) {
				continue
			}
			if abbrev, ok := KeyAbbreviations[strings.ToLower(k)]; ok {
				k = abbrev
			}
			out[k] = compactValue(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, child := range val {
			out = append(out, compactValue(child))
		}
		return out
	default:
		return v
	}
}

func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case bool:
		return !val
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// PrintError outputs an error respecting JSON and Minimal modes. details are
// merged into the JSON object and ignored in text mode.
// Returns the exit code (always 1 for errors).
func (f *Formatter) PrintError(err error, details map[string]interface{}) int {
	if f.JSON {
		result := map[string]interface{}{
			"error":   true,
			"message": err.Error(),
		}
		for k, v := range details {
			result[k] = v
		}
		if printErr := f.printJSON(f.Writer, result); printErr != nil {
			fmt.Fprintf(f.ErrWriter, "Error: %v\n", err)
		}
		return 1
	}

	if f.Minimal {
		fmt.Fprintln(f.ErrWriter, err.Error())
	} else {
		fmt.Fprintf(f.ErrWriter, "Error: %v\n", err)
	}
	return 1
}

// RelativePath converts an absolute path to a path relative to the given base.
// If the path cannot be made relative, it returns the original path.
func RelativePath(path, base string) string {
	if path == "" || base == "" {
		return path
	}

	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
