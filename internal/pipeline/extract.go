package pipeline

import "strings"

// sqlVerbs are the statement starts extraction accepts. Anything that does
// not begin at one of these is treated as commentary, never executed.
var sqlVerbs = []string{"SELECT", "INSERT", "UPDATE", "DELETE"}

var fenceToken = "```"

// Extract recovers a single executable statement from raw generator output.
// Code-fence markers are stripped, then the statement is the first contiguous
// run beginning at a SQL verb keyword (case-insensitive, on a word boundary)
// and ending at the first semicolon or end of string. Output with no verb
// fails with ExtractionError carrying the raw text for diagnosis. This is the
// last checkpoint before a string reaches the database.
func Extract(raw string) (string, error) {
	text := stripFences(raw)

	start := statementStart(text)
	if start < 0 {
		return "", &ExtractionError{RawOutput: raw}
	}

	stmt := text[start:]
	if i := strings.IndexByte(stmt, ';'); i >= 0 {
		stmt = stmt[:i+1]
	}
	return strings.TrimSpace(stmt), nil
}

// stripFences removes markdown code-fence tokens (``` with an optional
// language tag) wherever the model placed them, keeping the fenced content.
func stripFences(s string) string {
	for {
		i := strings.Index(s, fenceToken)
		if i < 0 {
			break
		}
		end := i + len(fenceToken)
		for end < len(s) && isASCIILetter(s[end]) {
			end++
		}
		s = s[:i] + s[end:]
	}
	return strings.TrimSpace(s)
}

// statementStart returns the index of the earliest SQL verb occurring on a
// word boundary, or -1 when the text contains none.
func statementStart(text string) int {
	upper := upperASCII(text)

	start := -1
	for _, verb := range sqlVerbs {
		from := 0
		for {
			i := strings.Index(upper[from:], verb)
			if i < 0 {
				break
			}
			i += from
			if boundedWord(upper, i, len(verb)) {
				if start < 0 || i < start {
					start = i
				}
				break
			}
			from = i + len(verb)
		}
	}
	return start
}

// boundedWord reports whether s[i:i+n] is delimited by non-word characters,
// so "SELECTION" and "UPDATED" do not count as statement starts.
func boundedWord(s string, i, n int) bool {
	if i > 0 && isWordChar(s[i-1]) {
		return false
	}
	if i+n < len(s) && isWordChar(s[i+n]) {
		return false
	}
	return true
}

// upperASCII uppercases ASCII letters only, leaving every other byte in
// place. Full Unicode case mapping can change a rune's encoded length, which
// would make verb offsets found in the copy invalid in the original text.
// The verbs are pure ASCII, so nothing is lost.
func upperASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func isWordChar(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('A' <= b && b <= 'Z') || ('a' <= b && b <= 'z')
}

func isASCIILetter(b byte) bool {
	return ('A' <= b && b <= 'Z') || ('a' <= b && b <= 'z')
}
