// block locates the diagram fence relevant to a cursor position.
package block

import "strings"

const marker = "```"

// OpensFence reports whether a line opens a diagram fence: the marker
// directly followed by the diagram tag, nothing else but trailing blanks.
func OpensFence(line string, tag string) bool {
	return strings.TrimRight(line, " \t") == marker+tag
}

// ClosesFence reports whether a line closes a fence: the marker alone.
// The first closing marker after an opening one terminates the block;
// nesting is not supported.
func ClosesFence(line string) bool {
	return strings.TrimRight(line, " \t") == marker
}

// Wrap encloses text in a single fence delimiter pair.
func Wrap(tag string, text string) string {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return marker + tag + "\n" + text + marker
}
