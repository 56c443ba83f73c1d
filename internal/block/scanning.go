package block

import "strings"

// ScanningLocator is the fallback when structural parsing yields nothing.
// It scans upward from the cursor for an opening fence line, then forward
// for the matching close. It deliberately only looks backward for the
// opening: a block that starts below the cursor is never considered, even
// where the structural strategy would also reject it for other reasons.
type ScanningLocator struct {
	tag string
}

func NewScanningLocator(tag string) *ScanningLocator {
	return &ScanningLocator{tag: tag}
}

func (l *ScanningLocator) Locate(source []byte, cursorLine int) (string, error) {
	lines := strings.Split(string(source), "\n")

	start := cursorLine - 1
	if start > len(lines)-1 {
		start = len(lines) - 1
	}

	open := -1
	for i := start; i >= 0; i-- {
		if OpensFence(lines[i], l.tag) {
			open = i
			break
		}
	}
	if open == -1 {
		return "", ErrNoBlock
	}

	for j := open + 1; j < len(lines); j++ {
		if ClosesFence(lines[j]) {
			return strings.Join(lines[open+1:j], "\n"), nil
		}
	}
	return "", ErrNoBlock
}
