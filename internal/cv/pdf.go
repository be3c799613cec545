package cv

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
)

var pdfcpuInit sync.Once

// pdfcpuPages reads every page's content stream with pdfcpu and pulls the
// shown strings out of it. A page without text yields "".
func pdfcpuPages(data []byte) ([]string, error) {
	pdfcpuInit.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, eris.Wrap(err, "pdfcpu read")
	}

	pages := make([]string, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pages[pageNr-1] = pageText(ctx, pageNr)
	}
	return pages, nil
}

func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// textFromContentStream walks a page content stream and collects the operands
// of the text-showing operators (Tj, TJ, ' and "). Positioning operators
// become whitespace so adjacent runs do not fuse.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	var pending []string

	flush := func() {
		for _, s := range pending {
			sb.WriteString(decodeShownString(s))
		}
		pending = pending[:0]
	}
	space := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte(' ')
		}
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '(':
			s, n := readLiteralString(data[i:])
			pending = append(pending, s)
			i += n
		case c == '<' && i+1 < len(data) && data[i+1] != '<':
			s, n := readHexString(data[i:])
			pending = append(pending, s)
			i += n
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case isPDFRegular(c):
			j := i
			for j < len(data) && isPDFRegular(data[j]) {
				j++
			}
			switch string(data[i:j]) {
			case "Tj", "TJ":
				flush()
			case "'", `"`:
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				flush()
			case "T*":
				sb.WriteByte('\n')
			case "Td", "TD", "Tm", "ET":
				space()
			}
			pending = pendingReset(pending, string(data[i:j]))
			i = j
		default:
			i++
		}
	}

	return strings.TrimSpace(sb.String())
}

// pendingReset drops collected strings when an operator other than a
// text-showing one consumes them.
func pendingReset(pending []string, op string) []string {
	switch op {
	case "Tj", "TJ", "'", `"`:
		return pending
	}
	if len(op) > 0 && (op[0] == '-' || op[0] == '.' || (op[0] >= '0' && op[0] <= '9')) {
		// numeric operand, e.g. kerning inside a TJ array
		return pending
	}
	return pending[:0]
}

func isPDFRegular(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0,
		'(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

// readLiteralString decodes a balanced (...) literal starting at data[0] and
// returns the text and the number of bytes consumed.
func readLiteralString(data []byte) (string, int) {
	var sb strings.Builder
	depth := 0
	i := 0
	for ; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '\\' && i+1 < len(data):
			i++
			switch e := data[i]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for k := 0; k < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; k++ {
						i++
						val = val*8 + int(data[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
				}
			}
		case c == '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), i
}

// readHexString decodes a <...> hex string into its raw bytes.
func readHexString(data []byte) (string, int) {
	end := bytes.IndexByte(data, '>')
	if end < 0 {
		return "", len(data)
	}
	var digits []byte
	for _, c := range data[1:end] {
		if hexVal(c) >= 0 {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	raw := make([]byte, 0, len(digits)/2)
	for k := 0; k < len(digits); k += 2 {
		raw = append(raw, byte(hexVal(digits[k])<<4|hexVal(digits[k+1])))
	}
	return string(raw), end + 1
}

// decodeShownString converts the bytes of a shown string to UTF-8, reading
// them as WinAnsi (Windows-1252), the encoding of the standard fonts. Strings
// holding NUL bytes are two-byte glyph ids of a CID font; without the font's
// ToUnicode map they carry no recoverable text and are dropped.
func decodeShownString(raw string) string {
	if strings.IndexByte(raw, 0) >= 0 {
		return ""
	}
	text, err := charmap.Windows1252.NewDecoder().String(raw)
	if err != nil {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
