package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/andyballingall/pgformat-action/internal/runner"
)

// JSONReporter writes the summary as an indented JSON document.
type JSONReporter struct{}

type jsonFile struct {
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

type jsonOutput struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
	Stats     struct {
		Processed int `json:"processed"`
		Formatted int `json:"formatted"`
		Failed    int `json:"failed"`
	} `json:"stats"`
	Formatted []jsonFile `json:"formatted"`
	Failed    []jsonFile `json:"failed"`
}

func (jr *JSONReporter) Write(w io.Writer, s *runner.Summary) error {
	out := jsonOutput{
		StartTime: s.StartTime.Format(time.RFC3339),
		EndTime:   s.EndTime.Format(time.RFC3339),
		Duration:  s.Duration().String(),
		Formatted: []jsonFile{},
		Failed:    []jsonFile{},
	}
	out.Stats.Processed = s.Processed
	out.Stats.Failed = s.Failed
	out.Stats.Formatted = s.Processed - s.Failed

	for _, f := range s.Files {
		if f.OK() {
			out.Formatted = append(out.Formatted, jsonFile{Path: f.Path})
			continue
		}
		out.Failed = append(out.Failed, jsonFile{Path: f.Path, Error: f.Err.Error()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
