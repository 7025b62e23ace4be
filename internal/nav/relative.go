package nav

import (
	"path"
	"strings"
)

// RelativeTo returns target, a path relative to the site root, as a link
// relative to the directory of currentPage.
func RelativeTo(currentPage, target string) string {
	target = cleanPath(target)
	if target == "" {
		target = RootIndex
	}
	dir := path.Dir(cleanPath(currentPage))
	if dir == "." || dir == "" {
		return target
	}

	from := strings.Split(dir, "/")
	to := strings.Split(target, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	return strings.Repeat("../", len(from)-i) + strings.Join(to[i:], "/")
}

// AssetPrefix returns the "../" chain leading from currentPage back to the
// site root, empty for pages at the root.
func AssetPrefix(currentPage string) string {
	return strings.Repeat("../", Depth(currentPage))
}

// Depth is the number of directories between the site root and currentPage.
func Depth(currentPage string) int {
	p := cleanPath(currentPage)
	if p == "" {
		return 0
	}
	return strings.Count(p, "/")
}

// IsAbsoluteURL reports whether u carries a scheme or is protocol
// relative, so it must not be rewritten.
func IsAbsoluteURL(u string) bool {
	l := strings.ToLower(strings.TrimSpace(u))
	if strings.HasPrefix(l, "//") {
		return true
	}
	for _, scheme := range []string{"http:", "https:", "mailto:", "tel:", "ftp:", "data:"} {
		if strings.HasPrefix(l, scheme) {
			return true
		}
	}
	return false
}

// cleanPath normalizes a site-relative path: forward slashes, no leading
// slash, no "." or ".." segments.
func cleanPath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p
}
