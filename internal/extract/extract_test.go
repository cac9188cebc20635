package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDocx(t *testing.T, dir, documentXML string) string {
	t.Helper()
	path := filepath.Join(dir, "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

const sampleDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Premier paragraphe</w:t></w:r></w:p>
<w:p><w:r><w:t></w:t></w:r></w:p>
<w:p><w:r><w:t>Deuxième </w:t></w:r><w:r><w:t>paragraphe</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Poste</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Prix</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Étude</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>1000</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t> </w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body></w:document>`

func TestTextDOCX(t *testing.T) {
	path := writeDocx(t, t.TempDir(), sampleDocumentXML)
	got := Text(path, ".docx")
	want := "Premier paragraphe\nDeuxième paragraphe\nPoste | Prix\nÉtude | 1000"
	if got != want {
		t.Fatalf("unexpected text:\n%q\nwant:\n%q", got, want)
	}
}

func TestTextDOCXCorruptFileReturnsErrorString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := Text(path, ".docx")
	if !strings.Contains(got, "Erreur lors de l'extraction du DOCX") {
		t.Fatalf("expected embedded error string, got %q", got)
	}
}

func TestTextUnsupportedFormat(t *testing.T) {
	got := Text("whatever.xyz", ".xyz")
	if !strings.Contains(got, ".xyz") {
		t.Fatalf("expected extension in message, got %q", got)
	}
	if !strings.Contains(got, "non supporté") {
		t.Fatalf("expected unsupported-format message, got %q", got)
	}
}

func TestTextPDFCorruptFileReturnsErrorString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := Text(path, ".pdf")
	if !strings.Contains(got, "Erreur lors de l'extraction du PDF") {
		t.Fatalf("expected embedded error string, got %q", got)
	}
}

func TestPDFRawScanUncompressedStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.pdf")
	content := "%PDF-1.4\n1 0 obj\n<< /Length 44 >>\nstream\nBT (Bonjour) Tj (le monde) Tj ET\nendstream\nendobj\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := pdfRawScan(path)
	if err != nil {
		t.Fatalf("raw scan: %v", err)
	}
	if !strings.Contains(got, "Bonjour") || !strings.Contains(got, "le monde") {
		t.Fatalf("unexpected raw scan output: %q", got)
	}
}
