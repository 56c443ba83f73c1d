package block

import "errors"

// ErrNoBlock means no diagram block was found for the cursor position.
var ErrNoBlock = errors.New("no diagram block found")

// Locator finds the inner text of the diagram block a 1-based cursor
// line refers to. Extraction is all or nothing; there are no partial results.
type Locator interface {
	Locate(source []byte, cursorLine int) (string, error)
}

// Chain tries locators in order and returns the first success.
type Chain []Locator

func (c Chain) Locate(source []byte, cursorLine int) (string, error) {
	for _, locator := range c {
		text, err := locator.Locate(source, cursorLine)
		if err == nil {
			return text, nil
		}
	}
	return "", ErrNoBlock
}
