package verify

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

const (
	badgePass    = "#4caf50"
	badgeFail    = "#f44336"
	badgeUnknown = "#757575"
)

// Badge returns the inline badge for a WCAG level and error count.
func Badge(level string, errorCount int) string {
	color, status := badgePass, "PASS"
	if errorCount > 0 {
		color, status = badgeFail, fmt.Sprintf("%d ERRORS", errorCount)
	}
	return badgeHTML(color, level, status)
}

// UncheckedBadge marks a page the checker could not process.
func UncheckedBadge(level string) string {
	return badgeHTML(badgeUnknown, level, "NOT CHECKED")
}

func badgeHTML(color, level, status string) string {
	return fmt.Sprintf(
		`<span style="background:%s;color:#fff;padding:2px 6px;border-radius:4px;font-size:90%%">WCAG %s: %s</span>`,
		color, strings.ToUpper(level), status)
}

// InjectBadge fills the badge slot of the page at htmlPath, replacing
// any badge from an earlier run. It reports whether the page has a slot.
func InjectBadge(htmlPath, badge string) (bool, error) {
	data, err := os.ReadFile(filepath.Clean(htmlPath))
	if err != nil {
		return false, err
	}
	start := bytes.Index(data, []byte(render.BadgeMarker))
	if start < 0 {
		return false, nil
	}
	from := start + len(render.BadgeMarker)
	end := bytes.Index(data[from:], []byte(render.BadgeEnd))
	if end < 0 {
		return false, nil
	}
	end += from

	out := make([]byte, 0, len(data)+len(badge))
	out = append(out, data[:from]...)
	out = append(out, badge...)
	out = append(out, data[end:]...)
	return true, os.WriteFile(htmlPath, out, 0o644)
}
