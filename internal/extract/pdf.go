package extract

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// fromPDF extracts text page by page, non-empty pages separated by a blank
// line. The library-based strategy runs first; on any failure a raw
// content-stream scan takes over. When both fail the failure reason is
// returned as text.
func fromPDF(path string) string {
	text, err := pdfPages(path)
	if err == nil {
		return text
	}
	text, rawErr := pdfRawScan(path)
	if rawErr == nil {
		return text
	}
	return fmt.Sprintf("Erreur lors de l'extraction du PDF: %v", rawErr)
}

// pdfPages is the primary strategy. The pdf library panics on some malformed
// files, so panics are converted to errors here.
func pdfPages(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var parts []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) != "" {
			parts = append(parts, strings.TrimSpace(pageText))
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

var (
	pdfStreamRe = regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)
	pdfTextRe   = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|TJ|')`)
)

// pdfRawScan is the fallback strategy: decompress every content stream and
// pull the literal strings out of the text-showing operators. Crude, but it
// recovers text from files the structured reader rejects.
func pdfRawScan(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var parts []string
	for _, m := range pdfStreamRe.FindAllSubmatch(data, -1) {
		raw := m[1]
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			if dec, err := io.ReadAll(zr); err == nil {
				raw = dec
			}
			zr.Close()
		}
		var page []string
		for _, tm := range pdfTextRe.FindAllSubmatch(raw, -1) {
			s := unescapePDFString(string(tm[1]))
			if strings.TrimSpace(s) != "" {
				page = append(page, s)
			}
		}
		if len(page) > 0 {
			parts = append(parts, strings.Join(page, " "))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content found in %d bytes", len(data))
	}
	return strings.Join(parts, "\n\n"), nil
}

func unescapePDFString(s string) string {
	r := strings.NewReplacer(
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
	)
	return r.Replace(s)
}
