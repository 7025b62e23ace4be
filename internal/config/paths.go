package config

import (
	"path"
	"path/filepath"
	"strings"
)

// PathsConfig locates the project directories. Relative entries resolve
// against Root, which itself defaults to the configuration file directory.
type PathsConfig struct {
	Root     string `yaml:"root,omitempty"`
	Content  string `yaml:"content,omitempty"`
	Build    string `yaml:"build,omitempty"`
	Database string `yaml:"database,omitempty"`
	Layouts  string `yaml:"layouts,omitempty"`
	Static   string `yaml:"static,omitempty"`
}

// Paths is the resolved, absolute form of PathsConfig.
type Paths struct {
	Root     string
	Content  string
	Build    string
	Database string
	Layouts  string
	Static   string
	// ContentPrefix is the slash-separated content directory relative to
	// Root. Source paths recorded on content nodes start with it.
	ContentPrefix string
}

// Files is the mirrored copy of the content tree inside the build.
func (p Paths) Files() string { return filepath.Join(p.Build, "files") }

// Images is the flat image directory inside the build.
func (p Paths) Images() string { return filepath.Join(p.Build, "images") }

// SourceFile resolves a recorded source path to an absolute path.
func (p Paths) SourceFile(sourcePath string) string {
	return filepath.Join(p.Root, filepath.FromSlash(sourcePath))
}

// OutputFile resolves a recorded output path to an absolute path.
func (p Paths) OutputFile(outputPath string) string {
	return filepath.Join(p.Build, filepath.FromSlash(outputPath))
}

// NormalizeSource turns a source file given relative to the project root,
// relative to the content directory or as an absolute path into the
// recorded source path form.
func (p Paths) NormalizeSource(src string) string {
	src = filepath.ToSlash(src)
	if filepath.IsAbs(filepath.FromSlash(src)) {
		if rel, err := filepath.Rel(p.Root, filepath.FromSlash(src)); err == nil {
			src = filepath.ToSlash(rel)
		}
	}
	src = strings.TrimPrefix(path.Clean(src), "./")
	if p.ContentPrefix != "" && !strings.HasPrefix(src, p.ContentPrefix+"/") {
		src = p.ContentPrefix + "/" + src
	}
	return src
}

// ResolvePaths returns absolute project paths. An explicit root overrides
// both paths.root and the configuration file location.
func (c *Config) ResolvePaths(root string) (Paths, error) {
	base := "."
	if c.path != "" {
		base = filepath.Dir(c.path)
	}
	switch {
	case root != "":
	case c.Paths.Root != "":
		root = c.Paths.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(base, root)
		}
	default:
		root = base
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Paths{}, err
	}
	join := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(absRoot, p)
	}
	out := Paths{
		Root:     absRoot,
		Content:  join(c.Paths.Content),
		Build:    join(c.Paths.Build),
		Database: c.Paths.Database,
		Layouts:  join(c.Paths.Layouts),
		Static:   join(c.Paths.Static),
	}
	if out.Database != ":memory:" {
		out.Database = join(c.Paths.Database)
	}
	prefix, err := filepath.Rel(absRoot, out.Content)
	if err != nil || prefix == "." {
		prefix = ""
	}
	out.ContentPrefix = filepath.ToSlash(prefix)
	return out, nil
}
