package command

import (
	"bufio"
	"io"
	"strings"
)

// lineReader hands out input lines one by one across prompts of a run.
type lineReader struct {
	sc *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{sc: bufio.NewScanner(r)}
}

func (l *lineReader) next() (string, error) {
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(l.sc.Text()), nil
}
