package imageproc

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	MIMEJPEG    = "image/jpeg"
	MIMEPNG     = "image/png"
	MIMEWebP    = "image/webp"
	MIMEGeneric = "application/octet-stream"
)

var extensionTypes = map[string]string{
	".jpg":  MIMEJPEG,
	".jpeg": MIMEJPEG,
	".png":  MIMEPNG,
	".webp": MIMEWebP,
}

// typeAliases maps non-standard labels browsers still send onto the
// registered type.
var typeAliases = map[string]string{
	"image/jpg":   MIMEJPEG,
	"image/pjpeg": MIMEJPEG,
	"image/x-png": MIMEPNG,
}

// ResolveContentType returns the content type to send for an upload. A
// declared type wins unless it is missing or generic, in which case the
// filename extension is consulted. Unknown extensions keep the generic type
// so the downstream API makes the final call.
func ResolveContentType(filename, declared string) string {
	ct := normalizeMediaType(declared)
	if alias, ok := typeAliases[ct]; ok {
		ct = alias
	}
	if ct != "" && !isGeneric(ct) {
		return ct
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if inferred, ok := extensionTypes[ext]; ok {
		return inferred
	}
	if ct == "" {
		return MIMEGeneric
	}
	return ct
}

func normalizeMediaType(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(raw); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(raw)
}

func isGeneric(ct string) bool {
	switch ct {
	case MIMEGeneric, "binary/octet-stream", "application/unknown":
		return true
	}
	return false
}

// extensionFor returns the file extension matching the bytes Encode produces.
func extensionFor(contentType string) string {
	if contentType == MIMEJPEG {
		return ".jpg"
	}
	return ".png"
}
