// Package docgen structures the model's free-form markdown-like output and
// renders it into a Word document.
package docgen

import (
	"regexp"
	"strings"
)

// BlockKind tags the structural variants a generated document is made of.
type BlockKind string

const (
	KindHeading   BlockKind = "heading"
	KindParagraph BlockKind = "paragraph"
	KindList      BlockKind = "list"
	KindTable     BlockKind = "table"
)

// Block is one structural unit of parsed generated content.
type Block struct {
	Kind  BlockKind
	Text  string     // heading, paragraph
	Level int        // heading: 1-3
	Items []string   // list
	Rows  [][]string // table
}

// Heading builds a heading block.
func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

// Paragraph builds a paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: KindParagraph, Text: text}
}

// List builds a list block.
func List(items ...string) Block {
	return Block{Kind: KindList, Items: items}
}

var ordinalPrefix = regexp.MustCompile(`^\d+\.\s`)

// Parse turns generated text into an ordered block sequence. It is a pure
// single-pass line scan with one pending-list accumulator: consecutive bullet
// or ordinal lines accumulate into a single list, flushed by a blank line, a
// heading, a paragraph or the end of input.
func Parse(content string) []Block {
	var (
		blocks  []Block
		pending []string
	)
	flush := func() {
		if len(pending) > 0 {
			blocks = append(blocks, Block{Kind: KindList, Items: pending})
			pending = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "# "):
			flush()
			blocks = append(blocks, Heading(1, line[2:]))
		case strings.HasPrefix(line, "## "):
			flush()
			blocks = append(blocks, Heading(2, line[3:]))
		case strings.HasPrefix(line, "### "):
			flush()
			blocks = append(blocks, Heading(3, line[4:]))
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			pending = append(pending, line[2:])
		case ordinalPrefix.MatchString(line):
			pending = append(pending, ordinalPrefix.ReplaceAllString(line, ""))
		default:
			flush()
			blocks = append(blocks, Paragraph(line))
		}
	}
	flush()
	return blocks
}
