package runtime

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// LineReader supplies input lines to the `read` primitive. ReadLine
// returns the line without its terminator and io.EOF once input is
// exhausted.
type LineReader interface {
	ReadLine() (string, error)
}

// NewLineReader wraps r in a buffered LineReader.
func NewLineReader(r io.Reader) LineReader {
	return &bufferedLineReader{r: bufio.NewReader(r)}
}

type bufferedLineReader struct {
	r *bufio.Reader
}

func (b *bufferedLineReader) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// ---------------------------------------------------------------------------
// Escapes
// ---------------------------------------------------------------------------

// Unescape expands C-style backslash escapes: \n \t \r \a \b \f \v, octal
// \NNN, hex \xHH, and any other escaped character stands for itself. A
// trailing lone backslash is dropped.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'x':
			if i+1 < len(s) && isHex(s[i+1]) {
				v := hexVal(s[i+1])
				i++
				if i+1 < len(s) && isHex(s[i+1]) {
					v = v*16 + hexVal(s[i+1])
					i++
				}
				b.WriteByte(v)
			} else {
				b.WriteByte('x')
			}
		default:
			if c >= '0' && c <= '7' {
				v := c - '0'
				for n := 0; n < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
					i++
					v = v*8 + (s[i] - '0')
				}
				b.WriteByte(v)
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	}
	return c - 'A' + 10
}
