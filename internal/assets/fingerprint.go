package assets

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
)

// Frontmatter keys excluded from fingerprints because they change without
// the content changing.
var volatileKeys = map[string]bool{
	mdfp.FingerprintField: true,
	"lastmod":             true,
	"uid":                 true,
	"aliases":             true,
}

// Fingerprint returns the canonical content fingerprint of a source file.
// Markdown hashes its frontmatter (minus volatile keys) and body
// separately; other formats hash the raw bytes.
func Fingerprint(data []byte, markdownSource bool) (string, error) {
	if !markdownSource {
		return mdfp.CalculateFingerprintFromParts("", string(data)), nil
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return mdfp.CalculateFingerprintFromParts("", string(data)), nil
	}
	meta, err := doc.Meta()
	if err != nil {
		return "", err
	}

	fields := make(map[string]any, len(meta.Fields))
	for k, v := range meta.Fields {
		if !volatileKeys[k] {
			fields[k] = v
		}
	}
	front := ""
	if len(fields) > 0 {
		encoded, err := frontmatter.Encode(fields)
		if err != nil {
			return "", err
		}
		front = strings.TrimSuffix(string(encoded), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(front, string(doc.Body)), nil
}
