package extract

import (
	"strconv"
	"strings"
)

// wordGap is the TJ kerning adjustment (thousandths of an em) treated as a
// space between words.
const wordGap = -200

// ContentStreamText decodes the string operands of the text showing operators
// (Tj, TJ, ' and ") in a PDF page content stream. Line moves become newlines.
// Fonts with custom encodings are not mapped.
func ContentStreamText(stream []byte) string {
	var out strings.Builder
	var pending strings.Builder

	newline := func() {
		s := out.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}

	i := 0
	for i < len(stream) {
		c := stream[i]
		switch {
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case c == '(':
			s, next := readLiteral(stream, i+1)
			pending.WriteString(s)
			i = next
			continue
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			i += 2
			continue
		case c == '>' && i+1 < len(stream) && stream[i+1] == '>':
			i += 2
			continue
		case c == '<':
			s, next := readHex(stream, i+1)
			pending.WriteString(s)
			i = next
			continue
		case c == '[' || c == ']' || c == '{' || c == '}' || isSpace(c):
		default:
			tok, next := readToken(stream, i)
			i = next
			switch tok {
			case "Tj", "TJ":
				out.WriteString(pending.String())
				pending.Reset()
			case "'", "\"":
				newline()
				out.WriteString(pending.String())
				pending.Reset()
			case "T*", "Td", "TD", "ET":
				newline()
			default:
				if n, err := strconv.ParseFloat(tok, 64); err == nil && n <= wordGap && pending.Len() > 0 {
					pending.WriteByte(' ')
				} else if err != nil {
					// operands of other operators are dropped
					pending.Reset()
				}
			}
			continue
		}
		i++
	}
	return strings.TrimSpace(out.String())
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isSpace(c)
}

func readToken(b []byte, i int) (string, int) {
	start := i
	if b[i] == '/' {
		i++
	}
	for i < len(b) && !isDelimiter(b[i]) {
		i++
	}
	if i == start {
		i++
	}
	return string(b[start:i]), i
}

func readLiteral(b []byte, i int) (string, int) {
	var sb strings.Builder
	depth := 1
	for i < len(b) {
		c := b[i]
		switch c {
		case '\\':
			i++
			if i >= len(b) {
				return sb.String(), i
			}
			e := b[i]
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\r':
				if i+1 < len(b) && b[i+1] == '\n' {
					i++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					val := 0
					j := 0
					for j < 3 && i < len(b) && b[i] >= '0' && b[i] <= '7' {
						val = val*8 + int(b[i]-'0')
						i++
						j++
					}
					sb.WriteByte(byte(val))
					continue
				}
				sb.WriteByte(e)
			}
			i++
		case '(':
			depth++
			sb.WriteByte(c)
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return sb.String(), i
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i
}

func readHex(b []byte, i int) (string, int) {
	var digits []byte
	for i < len(b) && b[i] != '>' {
		if !isSpace(b[i]) {
			digits = append(digits, b[i])
		}
		i++
	}
	if i < len(b) {
		i++
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	var sb strings.Builder
	for j := 0; j+1 < len(digits); j += 2 {
		v, err := strconv.ParseUint(string(digits[j:j+2]), 16, 8)
		if err != nil {
			return "", i
		}
		// two-byte glyph ids are not text; keep printable ASCII only
		if v >= 0x20 && v < 0x7f {
			sb.WriteByte(byte(v))
		}
	}
	return sb.String(), i
}
