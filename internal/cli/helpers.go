package cli

import (
	"bufio"
	"io"
)

// newLineScanner creates a line scanner from a reader, used by term's
// interactive REPL loop.
func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}
