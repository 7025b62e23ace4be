package model

import "strings"

var mimeTypes = map[string]string{
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".webp":  "image/webp",
	".bmp":   "image/bmp",
	".ico":   "image/x-icon",
	".mp4":   "video/mp4",
	".webm":  "video/webm",
	".mov":   "video/quicktime",
	".mp3":   "audio/mpeg",
	".wav":   "audio/wav",
	".ogg":   "audio/ogg",
	".pdf":   "application/pdf",
	".doc":   "application/msword",
	".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".ppt":   "application/vnd.ms-powerpoint",
	".pptx":  "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xls":   "application/vnd.ms-excel",
	".xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".zip":   "application/zip",
	".csv":   "text/csv",
	".json":  "application/json",
	".xml":   "application/xml",
	".yaml":  "application/yaml",
	".yml":   "application/yaml",
	".txt":   "text/plain",
	".tex":   "application/x-tex",
	".md":    "text/markdown",
	".marp":  "text/markdown",
	".ipynb": "application/x-ipynb+json",
	".html":  "text/html",
	".py":    "text/x-python",
	".r":     "text/x-r",
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".bmp": true,
}

// MimeTypeFor returns the mime type for an extension, or "" if unknown.
func MimeTypeFor(ext string) string {
	return mimeTypes[strings.ToLower(ext)]
}

// IsImageExtension reports whether ext is a web image format.
func IsImageExtension(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}

// ExtensionForMime maps the notebook output mime types back to extensions.
func ExtensionForMime(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	}
	return ""
}
