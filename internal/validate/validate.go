// Package validate checks candidate uploads against the backend's type and
// size policy before any bytes leave the machine.
package validate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the inclusive upload size ceiling (10 MiB).
const MaxUploadBytes = 10 * 1024 * 1024

// mediaTypeDOCX is the word-processing XML document type.
const mediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// allowedTypes maps each accepted media type to its user-facing label.
// Matching is exact and case-sensitive.
var allowedTypes = map[string]string{
	"application/pdf": "PDF",
	mediaTypeDOCX:     "DOCX",
	"text/plain":      "TXT",
	"text/csv":        "CSV",
}

// labelOrder fixes the order labels appear in the accepted-formats message.
var labelOrder = []string{"application/pdf", mediaTypeDOCX, "text/plain", "text/csv"}

// ValidationError is a client-local rejection; it never reaches the backend.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AcceptedLabels returns the labels of all accepted formats in display order.
func AcceptedLabels() []string {
	labels := make([]string, 0, len(labelOrder))
	for _, mt := range labelOrder {
		labels = append(labels, allowedTypes[mt])
	}
	return labels
}

// Check validates a candidate file's declared media type and byte size.
// The type check runs before the size check, so only one reason is ever
// reported. A file of exactly MaxUploadBytes is accepted.
func Check(mediaType string, size int64) error {
	if _, ok := allowedTypes[mediaType]; !ok {
		return &ValidationError{
			Reason: fmt.Sprintf("invalid file type: accepted formats are %s", strings.Join(AcceptedLabels(), ", ")),
		}
	}
	if size > MaxUploadBytes {
		return &ValidationError{Reason: "file exceeds the 10MB size limit"}
	}
	return nil
}

// MediaTypeForPath returns the declared media type for a file path based on
// its extension, or "" when the extension maps to no accepted format.
func MediaTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return mediaTypeDOCX
	case ".txt":
		return "text/plain"
	case ".csv":
		return "text/csv"
	default:
		return ""
	}
}
