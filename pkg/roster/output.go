package roster

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned by Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Report is the serialized form of a Result.
type Report struct {
	Roster    string     `json:"roster" yaml:"roster"`
	Scheduled bool       `json:"scheduled" yaml:"scheduled"`
	Schedule  [][]string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	Conflicts []string   `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report converts r for serialization.
func (r Result) Report() Report {
	rep := Report{
		Roster:    r.Roster,
		Scheduled: r.OK,
		Schedule:  r.Schedule,
		Conflicts: r.Conflicts,
	}
	if r.Err != nil {
		rep.Error = r.Err.Error()
	}
	return rep
}

// Write renders results to w in the given format. JSON and YAML output
// is a list of Report documents.
func Write(w io.Writer, format string, results ...Result) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return writeText(w, results)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(reports(results)), "encoding json")
	case FormatYAML:
		data, err := yaml.Marshal(reports(results))
		if err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		_, err = w.Write(data)
		return err
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

func reports(results []Result) []Report {
	out := make([]Report, len(results))
	for i, r := range results {
		out[i] = r.Report()
	}
	return out
}

func writeText(w io.Writer, results []Result) error {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "== %s ==\n", r.Roster)
		switch {
		case r.Err != nil:
			fmt.Fprintf(&sb, "error: %v\n", r.Err)
		case !r.OK:
			sb.WriteString("no schedule\n")
			for _, c := range r.Conflicts {
				fmt.Fprintf(&sb, "  conflict: %s\n", c)
			}
		default:
			sb.WriteString(r.Schedule.String())
			sb.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
