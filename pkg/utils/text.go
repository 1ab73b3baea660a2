package utils

import "strings"

// NormalizeAnswerLabel strips dashes and spaces and upper-cases an answer
// marker such as "- b" or "C –".
func NormalizeAnswerLabel(input string) string {
	replacer := strings.NewReplacer(
		"—", "",
		"–", "",
		"-", "",
		" ", "",
		"\t", "",
	)
	return strings.ToUpper(replacer.Replace(input))
}

// OptionIndex maps an option label A-D to its zero-based index.
func OptionIndex(label string) (int, bool) {
	switch NormalizeAnswerLabel(label) {
	case "A":
		return 0, true
	case "B":
		return 1, true
	case "C":
		return 2, true
	case "D":
		return 3, true
	}
	return -1, false
}

// OptionLabel returns the A-D label for a zero-based option index.
func OptionLabel(idx int) string {
	if idx < 0 || idx > 3 {
		return "?"
	}
	return string("ABCD"[idx])
}

// StripOptionLabels removes "A." / "b)" style labels from option lines, but
// only when every line carries the label matching its position. Otherwise the
// lines are returned trimmed and verbatim, so answers like "D.C." survive.
func StripOptionLabels(lines []string) []string {
	out := make([]string, len(lines))
	labelled := len(lines) > 0
	for i, line := range lines {
		line = strings.TrimSpace(line)
		out[i] = line
		if rest, ok := cutOptionLabel(line, i); ok {
			out[i] = rest
		} else {
			labelled = false
		}
	}
	if labelled {
		return out
	}
	for i, line := range lines {
		out[i] = strings.TrimSpace(line)
	}
	return out
}

func cutOptionLabel(line string, idx int) (string, bool) {
	if len(line) < 2 || (line[1] != '.' && line[1] != ')') {
		return "", false
	}
	if got, ok := OptionIndex(line[:1]); !ok || got != idx {
		return "", false
	}
	return strings.TrimSpace(line[2:]), true
}
