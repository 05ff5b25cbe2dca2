package runner

import "time"

// FileResult is the outcome of formatting one file. Err is nil on success.
type FileResult struct {
	Path string
	Err  error
}

func (r FileResult) OK() bool {
	return r.Err == nil
}

// Summary collects the per-file results of a run in processing order.
type Summary struct {
	Files     []FileResult
	Processed int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
}

// Duration is the wall time of the run.
func (s *Summary) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

func (s *Summary) add(path string, err error) {
	s.Files = append(s.Files, FileResult{Path: path, Err: err})
	s.Processed++
	if err != nil {
		s.Failed++
	}
}

// FailedPaths returns the files that failed, in processing order.
func (s *Summary) FailedPaths() []string {
	var out []string
	for _, f := range s.Files {
		if !f.OK() {
			out = append(out, f.Path)
		}
	}
	return out
}
