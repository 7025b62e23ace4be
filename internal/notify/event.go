package notify

import (
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// Event kinds, appended to the configured subject.
const (
	KindBuildCompleted      = "build.completed"
	KindAccessibilityResult = "accessibility.result"
)

// BuildEvent summarizes a finished build.
type BuildEvent struct {
	BuildID    string             `json:"build_id"`
	Outcome    model.BuildOutcome `json:"outcome"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Nodes      int                `json:"nodes"`
	Pages      int                `json:"pages"`
	Converted  int                `json:"converted"`
	Failed     int                `json:"conversions_failed"`
	A11yErrors int                `json:"accessibility_errors"`
	Warnings   []string           `json:"warnings,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Report     string             `json:"report,omitempty"` // path of build-report.json
	Timestamp  time.Time          `json:"timestamp"`
}

// AccessibilityEvent is published once per checked page.
type AccessibilityEvent struct {
	ContentID    int64     `json:"content_id"`
	OutputPath   string    `json:"output_path"`
	Checker      string    `json:"checker"`
	WCAGLevel    string    `json:"wcag_level"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	NoticeCount  int       `json:"notice_count"`
	Passed       bool      `json:"passed"`
	Failure      string    `json:"failure,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
	Timestamp    time.Time `json:"timestamp"`
}

func accessibilityEvent(r model.AccessibilityResult) AccessibilityEvent {
	return AccessibilityEvent{
		ContentID:    r.ContentID,
		OutputPath:   r.OutputPath,
		Checker:      r.Checker,
		WCAGLevel:    r.WCAGLevel,
		ErrorCount:   r.ErrorCount,
		WarningCount: r.WarningCount,
		NoticeCount:  r.NoticeCount,
		Passed:       r.Passed(),
		Failure:      r.Failure,
		CheckedAt:    r.CheckedAt,
	}
}
