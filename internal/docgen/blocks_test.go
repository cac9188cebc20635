package docgen

import (
	"reflect"
	"testing"
)

func TestParseHeadingParagraphList(t *testing.T) {
	got := Parse("# Title\n\nBody text\n\n- a\n- b\n")
	want := []Block{
		Heading(1, "Title"),
		Paragraph("Body text"),
		List("a", "b"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks: %+v", got)
	}
}

func TestParseHeadingLevels(t *testing.T) {
	got := Parse("# One\n## Two\n### Three\n")
	want := []Block{
		Heading(1, "One"),
		Heading(2, "Two"),
		Heading(3, "Three"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks: %+v", got)
	}
}

func TestParseOrdinalList(t *testing.T) {
	got := Parse("1. first\n2. second\n")
	want := []Block{List("first", "second")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks: %+v", got)
	}
}

func TestParseMixedBulletMarkers(t *testing.T) {
	got := Parse("- dash\n* star\n3. numbered\n")
	want := []Block{List("dash", "star", "numbered")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks: %+v", got)
	}
}

func TestParseBlankLineSplitsLists(t *testing.T) {
	got := Parse("- a\n- b\n\n- c\n")
	want := []Block{List("a", "b"), List("c")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected two separate lists, got: %+v", got)
	}
}

func TestParseHeadingFlushesPendingList(t *testing.T) {
	got := Parse("- a\n# Section\n")
	want := []Block{List("a"), Heading(1, "Section")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks: %+v", got)
	}
}

func TestParseTrailingListFlushedAtEOF(t *testing.T) {
	got := Parse("Intro\n- a\n- b")
	want := []Block{Paragraph("Intro"), List("a", "b")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blocks: %+v", got)
	}
}

func TestParseDeterministic(t *testing.T) {
	input := "# T\n\ntext\n\n1. x\n2. y\n\nmore\n"
	first := Parse(input)
	second := Parse(input)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parse is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestParseEmptyInput(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Fatalf("expected no blocks, got %+v", got)
	}
}
