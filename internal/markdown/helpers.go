package markdown

import "strings"

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `_*[]()~` + "`" + `>#+-=|{}.!\`

// Inside pre and code entities only these two need escaping.
const mdV2CodeSpecialChars = "`\\"

//nolint:gochecknoglobals // Lookup tables meant to be immutable.
var (
	mdV2Lookup     = lookup(mdV2SpecialChars)
	mdV2CodeLookup = lookup(mdV2CodeSpecialChars)
)

// EscapeV2 escapes text for a MarkdownV2 message body.
func EscapeV2(input string) string {
	return escape(input, &mdV2Lookup)
}

// Pre wraps input in a MarkdownV2 pre block.
func Pre(input string) string {
	return "```\n" + escape(input, &mdV2CodeLookup) + "\n```"
}

func Bold(input string) string {
	return "*" + EscapeV2(input) + "*"
}

// Split breaks text into chunks of at most limit bytes, preferring line
// boundaries. A single line longer than limit is cut on rune boundaries.
func Split(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
		}
	}

	for line := range strings.Lines(text) {
		if b.Len()+len(line) > limit {
			flush()
		}
		for len(line) > limit {
			cut := runeBoundary(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		b.WriteString(line)
	}
	flush()

	return chunks
}

func runeBoundary(s string, limit int) int {
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func escape(input string, table *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if table[input[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if table[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func lookup(chars string) [256]bool {
	var m [256]bool
	for i := range len(chars) {
		m[chars[i]] = true
	}
	return m
}
