package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// fromDOCX extracts the paragraphs of a Word document one per line, followed
// by its table rows with cells joined by " | ". Empty paragraphs and rows are
// skipped. Failures are returned as text, same policy as PDF extraction.
func fromDOCX(path string) string {
	text, err := docxText(path)
	if err != nil {
		return fmt.Sprintf("Erreur lors de l'extraction du DOCX: %v", err)
	}
	return text
}

func docxText(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("open document.xml: %w", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", fmt.Errorf("read document.xml: %w", err)
			}
			break
		}
	}
	if len(docXML) == 0 {
		return "", fmt.Errorf("document.xml not found")
	}
	return walkDocumentXML(docXML)
}

// walkDocumentXML streams through the OOXML body collecting paragraph text
// and table rows separately, mirroring how the document reads top to bottom
// outside and inside tables.
func walkDocumentXML(docXML []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var (
		parts    []string
		rows     []string
		para     strings.Builder
		cell     strings.Builder
		cells    []string
		tblDepth int
		inText   bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tr":
				if tblDepth > 0 {
					cells = cells[:0]
				}
			case "tc":
				if tblDepth > 0 {
					cell.Reset()
				}
			case "p":
				if tblDepth == 0 {
					para.Reset()
				}
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "tr":
				if tblDepth > 0 && len(cells) > 0 {
					rows = append(rows, strings.Join(cells, " | "))
				}
			case "tc":
				if tblDepth > 0 {
					if s := strings.TrimSpace(cell.String()); s != "" {
						cells = append(cells, s)
					}
				}
			case "p":
				if tblDepth == 0 {
					if s := strings.TrimSpace(para.String()); s != "" {
						parts = append(parts, s)
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				if tblDepth > 0 {
					cell.Write(t)
				} else {
					para.Write(t)
				}
			}
		}
	}
	parts = append(parts, rows...)
	return strings.Join(parts, "\n"), nil
}
