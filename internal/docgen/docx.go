package docgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tenderloom/tenderloom/internal/utils"
)

// WriteDocument renders the block sequence into a .docx file at outputPath.
// The document opens with a centered title and a centered bold reference
// line, then renders every block in order. When templatePath names an
// existing Word document, its content and styles are kept and the generated
// body is appended; otherwise a fresh document is written.
func WriteDocument(blocks []Block, title, reference, outputPath, templatePath string) error {
	body := renderBody(blocks, title, reference)
	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			if err := writeFromTemplate(outputPath, templatePath, body); err == nil {
				return nil
			}
			// Unusable template: fall through to a fresh document.
		}
	}
	return writeFresh(outputPath, body)
}

func renderBody(blocks []Block, title, reference string) string {
	var b strings.Builder
	b.WriteString(`<w:p><w:pPr><w:pStyle w:val="Title"/><w:jc w:val="center"/></w:pPr>` + run(title, false) + `</w:p>`)
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` + run("Référence: "+reference, true) + `</w:p>`)
	b.WriteString(`<w:p/>`)
	for _, blk := range blocks {
		switch blk.Kind {
		case KindHeading:
			level := blk.Level
			if level < 1 || level > 3 {
				level = 1
			}
			fmt.Fprintf(&b, `<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr>%s</w:p>`, level, run(blk.Text, false))
		case KindParagraph:
			b.WriteString(`<w:p>` + run(blk.Text, false) + `</w:p>`)
		case KindList:
			for _, item := range blk.Items {
				b.WriteString(`<w:p><w:pPr><w:pStyle w:val="ListBullet"/><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>` + run(item, false) + `</w:p>`)
			}
		case KindTable:
			b.WriteString(renderTable(blk.Rows))
		}
	}
	return b.String()
}

func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := len(rows[0])
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4"/><w:left w:val="single" w:sz="4"/>` +
		`<w:bottom w:val="single" w:sz="4"/><w:right w:val="single" w:sz="4"/>` +
		`<w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/>` +
		`</w:tblBorders></w:tblPr>`)
	for _, row := range rows {
		b.WriteString(`<w:tr>`)
		for j := 0; j < cols; j++ {
			var cell string
			if j < len(row) {
				cell = row[j]
			}
			b.WriteString(`<w:tc><w:p>` + run(cell, false) + `</w:p></w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
	return b.String()
}

func run(text string, bold bool) string {
	props := ""
	if bold {
		props = `<w:rPr><w:b/><w:sz w:val="24"/></w:rPr>`
	}
	return `<w:r>` + props + `<w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r>`
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentFooter = `<w:sectPr/></w:body></w:document>`

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>` +
	`</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:rPr><w:b/><w:sz w:val="48"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:rPr><w:b/><w:sz w:val="28"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="ListBullet"><w:name w:val="List Bullet"/></w:style>` +
	`</w:styles>`

const numberingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/></w:lvl></w:abstractNum>` +
	`<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>` +
	`</w:numbering>`

// writeFresh writes a minimal self-contained OOXML package.
func writeFresh(outputPath, body string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := map[string]string{
		"[Content_Types].xml":          contentTypesXML,
		"_rels/.rels":                  relsXML,
		"word/_rels/document.xml.rels": documentRelsXML,
		"word/styles.xml":              stylesXML,
		"word/numbering.xml":           numberingXML,
		"word/document.xml":            documentHeader + body + documentFooter,
	}
	// Fixed order keeps output byte-stable for identical input.
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/_rels/document.xml.rels", "word/styles.xml", "word/numbering.xml", "word/document.xml"} {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close docx: %w", err)
	}
	return utils.SafeWriteFile(outputPath, buf.Bytes())
}

// writeFromTemplate copies the template package and appends the generated
// body to its document, before any trailing section properties, so the
// template's styling and existing content are preserved.
func writeFromTemplate(outputPath, templatePath, body string) error {
	zr, err := zip.OpenReader(templatePath)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	foundDocument := false
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
		if f.Name == "word/document.xml" {
			foundDocument = true
			data = appendToBody(data, body)
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if !foundDocument {
		return fmt.Errorf("template has no word/document.xml")
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close docx: %w", err)
	}
	return utils.SafeWriteFile(outputPath, buf.Bytes())
}

func appendToBody(doc []byte, body string) []byte {
	s := string(doc)
	insert := body
	if i := strings.LastIndex(s, "<w:sectPr"); i >= 0 {
		return []byte(s[:i] + insert + s[i:])
	}
	if i := strings.LastIndex(s, "</w:body>"); i >= 0 {
		return []byte(s[:i] + insert + s[i:])
	}
	return append(doc, []byte(insert)...)
}
