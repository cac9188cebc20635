// Package extract turns stored documents into plain text for prompting and
// search. Extraction is best-effort: failures come back as readable error
// strings embedded in the text, never as errors, so ingestion always proceeds.
package extract

import (
	"fmt"
	"strings"
)

// Text extracts plain text from the file at path. The format is selected by
// ext (lowercase, with leading dot). Unsupported formats yield a deterministic
// message rather than an error.
func Text(path, ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return fromPDF(path)
	case ".docx", ".doc":
		return fromDOCX(path)
	default:
		return fmt.Sprintf("Format de fichier non supporté: %s", ext)
	}
}
