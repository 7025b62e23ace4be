package store

// tables in creation order; Reset drops them in reverse.
var tables = []string{
	"content",
	"files",
	"source_info",
	"site_info",
	"conversion_capabilities",
	"conversion_results",
	"accessibility_results",
	"builds",
}

const schema = `
CREATE TABLE IF NOT EXISTS content (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	source_path TEXT,
	output_path TEXT NOT NULL,
	is_autobuilt INTEGER NOT NULL DEFAULT 0,
	mime_type TEXT,
	parent_output_path TEXT,
	slug TEXT,
	sort_order INTEGER NOT NULL DEFAULT 0,
	level INTEGER NOT NULL DEFAULT 0,
	relative_link TEXT,
	menu_context TEXT NOT NULL DEFAULT 'main',
	can_convert_md INTEGER NOT NULL DEFAULT 0,
	can_convert_txt INTEGER NOT NULL DEFAULT 0,
	can_convert_tex INTEGER NOT NULL DEFAULT 0,
	can_convert_pdf INTEGER NOT NULL DEFAULT 0,
	can_convert_docx INTEGER NOT NULL DEFAULT 0,
	can_convert_ppt INTEGER NOT NULL DEFAULT 0,
	can_convert_jupyter INTEGER NOT NULL DEFAULT 0,
	can_convert_ipynb INTEGER NOT NULL DEFAULT 0,
	UNIQUE(source_path, output_path, title)
);
CREATE INDEX IF NOT EXISTS idx_content_parent ON content(parent_output_path);
CREATE INDEX IF NOT EXISTS idx_content_output ON content(output_path);

CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content_id INTEGER REFERENCES content(id),
	filename TEXT NOT NULL,
	extension TEXT,
	mime_type TEXT,
	is_image INTEGER NOT NULL DEFAULT 0,
	is_remote INTEGER NOT NULL DEFAULT 0,
	is_embedded INTEGER NOT NULL DEFAULT 0,
	is_code_generated INTEGER NOT NULL DEFAULT 0,
	url TEXT,
	referenced_page TEXT,
	relative_path TEXT,
	absolute_path TEXT,
	cell_type TEXT
);
CREATE INDEX IF NOT EXISTS idx_files_page ON files(referenced_page);

CREATE TABLE IF NOT EXISTS source_info (
	content_id INTEGER PRIMARY KEY REFERENCES content(id),
	fingerprint TEXT,
	size INTEGER NOT NULL DEFAULT 0,
	last_modified INTEGER,
	last_modified_source TEXT,
	missing INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS site_info (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	title TEXT,
	author TEXT,
	description TEXT,
	logo TEXT,
	favicon TEXT,
	theme_default TEXT,
	theme_light TEXT,
	theme_dark TEXT,
	language TEXT,
	github_url TEXT,
	footer_text TEXT,
	header TEXT
);

CREATE TABLE IF NOT EXISTS conversion_capabilities (
	source_format TEXT NOT NULL,
	target_format TEXT NOT NULL,
	is_enabled INTEGER NOT NULL DEFAULT 1,
	UNIQUE(source_format, target_format)
);

CREATE TABLE IF NOT EXISTS conversion_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content_id INTEGER NOT NULL REFERENCES content(id),
	source_format TEXT NOT NULL,
	target_format TEXT NOT NULL,
	output_path TEXT,
	status TEXT NOT NULL,
	message TEXT,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	converted_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversion_content ON conversion_results(content_id);

CREATE TABLE IF NOT EXISTS accessibility_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content_id INTEGER NOT NULL REFERENCES content(id),
	output_path TEXT NOT NULL,
	checker TEXT NOT NULL,
	wcag_level TEXT,
	issues_json TEXT,
	error_count INTEGER NOT NULL DEFAULT 0,
	warning_count INTEGER NOT NULL DEFAULT 0,
	notice_count INTEGER NOT NULL DEFAULT 0,
	badge_html TEXT,
	failure TEXT,
	checked_at INTEGER NOT NULL,
	UNIQUE(content_id, wcag_level)
);

CREATE TABLE IF NOT EXISTS builds (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	finished_at INTEGER,
	outcome TEXT,
	nodes INTEGER NOT NULL DEFAULT 0,
	pages INTEGER NOT NULL DEFAULT 0
);
`
