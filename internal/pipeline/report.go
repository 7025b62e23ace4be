package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// ReportFile is the report name inside the build directory.
const ReportFile = "build-report.json"

// BuildReport collects what one build did.
type BuildReport struct {
	BuildID         string
	Start           time.Time
	End             time.Time
	Outcome         model.BuildOutcome
	Errors          []error
	Warnings        []error
	Issues          []ReportIssue
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount

	Nodes          int
	Duplicates     int
	Assets         int
	MissingSources int
	MirroredFiles  int
	MirroredImages int
	Converted      int
	ConvertFailed  int
	ConvertSkipped int
	Pages          int
	Sections       int
	PagesFailed    int
	Indexed        int
	A11yChecked    int
	A11yErrors     int
	A11yFailed     int
}

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is one problem encountered by a stage.
type ReportIssue struct {
	Stage    StageName     `json:"stage"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int `json:"success"`
	Warning  int `json:"warning"`
	Fatal    int `json:"fatal"`
	Canceled int `json:"canceled"`
}

// NewBuildReport starts a report for build id.
func NewBuildReport(id string, start time.Time) *BuildReport {
	return &BuildReport{
		BuildID:         id,
		Start:           start,
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

// AddIssue appends an issue and mirrors severity into Errors/Warnings.
func (r *BuildReport) AddIssue(stage StageName, severity IssueSeverity, msg string, err error) {
	r.Issues = append(r.Issues, ReportIssue{Stage: stage, Severity: severity, Message: msg})
	if err == nil {
		return
	}
	switch severity {
	case SeverityError:
		r.Errors = append(r.Errors, err)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, err)
	}
}

// Warn records a non-fatal problem without failing its stage.
func (r *BuildReport) Warn(stage StageName, err error) {
	r.AddIssue(stage, SeverityWarning, err.Error(), err)
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish(now time.Time) { r.End = now }

// Duration is the wall time between Start and End.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// RecordStageResult updates the stage counters and emits metrics.
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	recorder = metrics.OrNoop(recorder)
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultWarning:
		sc.Warning++
		recorder.IncStageResult(string(stage), metrics.ResultWarning)
	case StageResultFatal:
		sc.Fatal++
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		sc.Canceled++
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	}
	r.StageCounts[stage] = sc
}

// DeriveOutcome sets Outcome from the recorded errors and warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = model.OutcomeCanceled
				return
			}
		}
		r.Outcome = model.OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = model.OutcomeWarning
		return
	}
	r.Outcome = model.OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("nodes=%d assets=%d converted=%d convert_failed=%d pages=%d a11y_errors=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.Nodes, r.Assets, r.Converted, r.ConvertFailed, r.Pages, r.A11yErrors,
		r.Duration().Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), r.Outcome)
}

// Messages returns the error and warning texts.
func (r *BuildReport) Messages() (errs, warns []string) {
	for _, e := range r.Errors {
		errs = append(errs, e.Error())
	}
	for _, w := range r.Warnings {
		warns = append(warns, w.Error())
	}
	return errs, warns
}

// Persist writes the report atomically into dir as ReportFile.
func (r *BuildReport) Persist(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("ensure dir for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.Serializable(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report json: %w", err)
	}
	p := filepath.Join(dir, ReportFile)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, jb, 0o600); err != nil {
		return "", fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return "", fmt.Errorf("atomic rename json: %w", err)
	}
	return p, nil
}

// Serializable returns a copy with errors converted to strings and
// durations to milliseconds.
func (r *BuildReport) Serializable() *BuildReportSerializable {
	errs, warns := r.Messages()
	durs := make(map[string]float64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		durs[k] = float64(v) / float64(time.Millisecond)
	}
	kinds := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		kinds[string(k)] = string(v)
	}
	counts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		counts[string(k)] = v
	}
	return &BuildReportSerializable{
		BuildID:         r.BuildID,
		Start:           r.Start,
		End:             r.End,
		DurationMS:      r.Duration().Milliseconds(),
		Outcome:         string(r.Outcome),
		Errors:          errs,
		Warnings:        warns,
		Issues:          r.Issues,
		StageDurations:  durs,
		StageErrorKinds: kinds,
		StageCounts:     counts,
		Counts: ReportCounts{
			Nodes:          r.Nodes,
			Duplicates:     r.Duplicates,
			Assets:         r.Assets,
			MissingSources: r.MissingSources,
			MirroredFiles:  r.MirroredFiles,
			MirroredImages: r.MirroredImages,
			Converted:      r.Converted,
			ConvertFailed:  r.ConvertFailed,
			ConvertSkipped: r.ConvertSkipped,
			Pages:          r.Pages,
			Sections:       r.Sections,
			PagesFailed:    r.PagesFailed,
			Indexed:        r.Indexed,
			A11yChecked:    r.A11yChecked,
			A11yErrors:     r.A11yErrors,
			A11yFailed:     r.A11yFailed,
		},
	}
}

// BuildReportSerializable is the JSON form of BuildReport.
type BuildReportSerializable struct {
	BuildID         string                `json:"build_id"`
	Start           time.Time             `json:"start"`
	End             time.Time             `json:"end"`
	DurationMS      int64                 `json:"duration_ms"`
	Outcome         string                `json:"outcome"`
	Errors          []string              `json:"errors"`
	Warnings        []string              `json:"warnings"`
	Issues          []ReportIssue         `json:"issues,omitempty"`
	StageDurations  map[string]float64    `json:"stage_durations_ms"`
	StageErrorKinds map[string]string     `json:"stage_error_kinds,omitempty"`
	StageCounts     map[string]StageCount `json:"stage_counts"`
	Counts          ReportCounts          `json:"counts"`
}

// ReportCounts holds the per-stage tallies.
type ReportCounts struct {
	Nodes          int `json:"nodes"`
	Duplicates     int `json:"duplicates"`
	Assets         int `json:"assets"`
	MissingSources int `json:"missing_sources"`
	MirroredFiles  int `json:"mirrored_files"`
	MirroredImages int `json:"mirrored_images"`
	Converted      int `json:"converted"`
	ConvertFailed  int `json:"convert_failed"`
	ConvertSkipped int `json:"convert_skipped"`
	Pages          int `json:"pages"`
	Sections       int `json:"sections"`
	PagesFailed    int `json:"pages_failed"`
	Indexed        int `json:"indexed"`
	A11yChecked    int `json:"a11y_checked"`
	A11yErrors     int `json:"a11y_errors"`
	A11yFailed     int `json:"a11y_failed"`
}
