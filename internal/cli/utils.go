// Package cli provides output helpers for the one-shot docchat subcommands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/docchat/internal/models"
)

// OutputFormat is the format for answer output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAnswer writes an ask response to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnswer(w io.Writer, question string, answer *models.AskResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	default:
		writeAnswerText(w, question, answer)
		return nil
	}
}

func writeAnswerText(w io.Writer, question string, answer *models.AskResponse) {
	fmt.Fprintf(w, "Q: %s\n\n", question)
	fmt.Fprintf(w, "%s\n", answer.Answer)
	if len(answer.Context) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Context ---")
		for i, snippet := range answer.Context {
			fmt.Fprintf(w, "[%d] %s\n", i+1, Truncate(snippet, 300))
		}
	}
}

// WriteUploadAck writes the upload confirmation for a file descriptor.
func WriteUploadAck(w io.Writer, file *models.UploadedFile, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(file)
	default:
		fmt.Fprintf(w, "Uploaded %s (%s)\n", file.Name, FormatSize(file.Size))
		return nil
	}
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// FormatSize renders a byte count as B, KB, or MB for display.
func FormatSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
