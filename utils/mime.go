package utils

import (
	"path/filepath"
	"strings"
)

var extensionMediaTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
}

// InferMimeType infers MIME type from file extension
func InferMimeType(filename string) string {
	return extensionMediaTypes[strings.ToLower(filepath.Ext(filename))]
}

// DocumentMediaType prefers the uploader-reported type and falls back to the
// extension when the type is missing or generic.
func DocumentMediaType(reported, filename string) string {
	reported = strings.ToLower(strings.TrimSpace(reported))
	if i := strings.Index(reported, ";"); i >= 0 {
		reported = strings.TrimSpace(reported[:i])
	}
	if reported == "" || reported == "application/octet-stream" {
		return InferMimeType(filename)
	}
	return reported
}

// IsSupportedDocument accepts PDFs and any image type
func IsSupportedDocument(mediaType string) bool {
	mediaType = strings.ToLower(mediaType)
	return mediaType == "application/pdf" || strings.HasPrefix(mediaType, "image/")
}
