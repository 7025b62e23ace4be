package model

import "time"

// AssetRecord is one file, image or attachment referenced by a page.
type AssetRecord struct {
	ID              int64
	ContentID       int64
	Filename        string
	Extension       string
	MimeType        string
	IsImage         bool
	IsRemote        bool
	IsEmbedded      bool
	IsCodeGenerated bool
	URL             string
	ReferencedPage  string // source path of the owning node
	RelativePath    string // relative to the content root, or the generated location
	AbsolutePath    string
	CellType        string // notebook cell type for notebook assets
}

// ConversionCapability enables or disables one source to target pair.
type ConversionCapability struct {
	SourceFormat Format
	TargetFormat Format
	Enabled      bool
}

// ConversionStatus is the outcome of one conversion attempt.
type ConversionStatus string

const (
	ConversionSuccess ConversionStatus = "success"
	ConversionFailed  ConversionStatus = "failed"
	ConversionSkipped ConversionStatus = "skipped"
)

// ConversionResult records one (node, target) conversion attempt.
type ConversionResult struct {
	ID           int64
	ContentID    int64
	SourceFormat Format
	TargetFormat Format
	OutputPath   string // relative to the build root
	Status       ConversionStatus
	Message      string
	Duration     time.Duration
	ConvertedAt  time.Time
}

// IssueType is the pa11y classification of an accessibility finding.
type IssueType string

const (
	IssueError   IssueType = "error"
	IssueWarning IssueType = "warning"
	IssueNotice  IssueType = "notice"
)

// AccessibilityIssue is one finding reported by a checker.
type AccessibilityIssue struct {
	Code     string    `json:"code"`
	Type     IssueType `json:"type"`
	Message  string    `json:"message"`
	Context  string    `json:"context,omitempty"`
	Selector string    `json:"selector,omitempty"`
}

// AccessibilityResult is the outcome of checking one rendered page.
type AccessibilityResult struct {
	ID           int64
	ContentID    int64
	OutputPath   string
	Checker      string
	WCAGLevel    string
	Issues       []AccessibilityIssue
	ErrorCount   int
	WarningCount int
	NoticeCount  int
	BadgeHTML    string
	Failure      string // set when the checker itself could not run
	CheckedAt    time.Time
}

// Passed reports whether the page had no errors and the check ran.
func (r AccessibilityResult) Passed() bool {
	return r.Failure == "" && r.ErrorCount == 0
}

// Tally fills the per-type counts from Issues.
func (r *AccessibilityResult) Tally() {
	r.ErrorCount, r.WarningCount, r.NoticeCount = 0, 0, 0
	for _, is := range r.Issues {
		switch is.Type {
		case IssueError:
			r.ErrorCount++
		case IssueWarning:
			r.WarningCount++
		case IssueNotice:
			r.NoticeCount++
		}
	}
}

// SourceInfo is per-node provenance gathered by the asset scan.
type SourceInfo struct {
	ContentID          int64
	Fingerprint        string
	Size               int64
	LastModified       time.Time
	LastModifiedSource string // "git" or "mtime"
	Missing            bool
}

// SiteInfo is the site-wide metadata rendered into every page.
type SiteInfo struct {
	Title        string
	Author       string
	Description  string
	Logo         string
	Favicon      string
	ThemeDefault string
	ThemeLight   string
	ThemeDark    string
	Language     string
	GitHubURL    string
	FooterText   string
	Header       string
}

// BuildOutcome summarizes a whole run.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildRecord is the row kept per run in the builds table.
type BuildRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    BuildOutcome
	Nodes      int
	Pages      int
}
