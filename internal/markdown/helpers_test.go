package markdown_test

import (
	"strings"
	"testing"

	"platingreport/internal/markdown"
)

func TestEscapeV2(t *testing.T) {
	got := markdown.EscapeV2("硫酸實際值(g/l) 62-68. ok!")
	want := `硫酸實際值\(g/l\) 62\-68\. ok\!`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEscapeV2LeavesPlainTextAlone(t *testing.T) {
	if got := markdown.EscapeV2("OK 12"); got != "OK 12" {
		t.Fatalf("unexpected escape %q", got)
	}
}

func TestPreEscapesOnlyCodeCharacters(t *testing.T) {
	got := markdown.Pre("a_b `c` \\d")
	want := "```\na_b \\`c\\` \\\\d\n```"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSplitPrefersLineBoundaries(t *testing.T) {
	text := "line one\nline two\nline three\n"

	chunks := markdown.Split(text, 18)

	if len(chunks) != 2 || chunks[0] != "line one\nline two\n" {
		t.Fatalf("unexpected chunks %q", chunks)
	}
	if strings.Join(chunks, "") != text {
		t.Fatalf("chunks must reassemble to the input")
	}
}

func TestSplitCutsLongLinesOnRunes(t *testing.T) {
	text := strings.Repeat("電", 10)

	chunks := markdown.Split(text, 7)

	for _, c := range chunks {
		if len(c) > 7 || !strings.HasPrefix(c, "電") {
			t.Fatalf("chunk %q breaks a rune or the limit", c)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Fatalf("chunks must reassemble to the input")
	}
}
