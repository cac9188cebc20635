package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tenderloom/tenderloom/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		min  int
	}{
		{"empty", "", 0},
		{"simple", "hello world", 2},
		{"long", strings.Repeat("a", 4000), 900}, // heuristic ~ 1 tok ≈ 4 chars
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got < c.min {
			t.Errorf("%s: got %d < min %d", c.name, got, c.min)
		}
	}
}

func TestTruncateToTokenLimit(t *testing.T) {
	text := strings.Repeat("abcd ", 1000) // ~5000 chars
	trunc := utils.TruncateToTokenLimit(text, 300)
	n := utils.CountTokens(trunc)
	if n > 300 {
		t.Fatalf("tokens=%d exceeds limit", n)
	}
	if len(trunc) == 0 {
		t.Fatalf("expected non-empty truncation")
	}
	if utils.TruncateToTokenLimit(text, 0) != "" {
		t.Fatalf("zero budget must yield empty text")
	}
}

func TestSafeWriteFileReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	if err := utils.SafeWriteFile(path, []byte("v1")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := utils.SafeWriteFile(path, []byte("v2")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "v2" {
		t.Fatalf("unexpected content %q", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if !strings.Contains(string(b), "\n") {
		t.Fatalf("expected indented output: %s", b)
	}
}
