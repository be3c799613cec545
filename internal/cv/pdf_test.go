package cv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "single Tj",
			stream: "BT /F1 12 Tf 72 712 Td (Hello World) Tj ET",
			want:   "Hello World",
		},
		{
			name:   "TJ array with kerning",
			stream: "BT /F1 12 Tf [(Ja) -20 (va)] TJ ET",
			want:   "Java",
		},
		{
			name:   "positioning separates runs",
			stream: "BT (Go) Tj 0 -14 Td (SQL) Tj ET",
			want:   "Go SQL",
		},
		{
			name:   "T* starts a new line",
			stream: "BT (Docker) Tj T* (Kubernetes) Tj ET",
			want:   "Docker\nKubernetes",
		},
		{
			name:   "quote operator",
			stream: "BT (first) Tj (second) ' ET",
			want:   "first\nsecond",
		},
		{
			name:   "escapes and nesting",
			stream: `BT (C\053\053 \(expert\)) Tj (a (nested) b) Tj ET`,
			want:   "C++ (expert)a (nested) b",
		},
		{
			name:   "hex string",
			stream: "BT <507974686F6E> Tj ET",
			want:   "Python",
		},
		{
			name:   "WinAnsi literal",
			stream: `BT (R\351sum\351 \226 Java) Tj ET`,
			want:   "Résumé – Java",
		},
		{
			name:   "WinAnsi hex",
			stream: "BT <43E9> Tj ET",
			want:   "Cé",
		},
		{
			name:   "CID glyph ids dropped",
			stream: "BT /F1 12 Tf <0024004F> Tj ET",
			want:   "",
		},
		{
			name:   "CID run next to plain text",
			stream: "BT (Go) Tj 0 -14 Td <002A0052> Tj 0 -14 Td (SQL) Tj ET",
			want:   "Go SQL",
		},
		{
			name:   "comment skipped",
			stream: "% (ignored) Tj\nBT (kept) Tj ET",
			want:   "kept",
		},
		{
			name:   "strings not shown are dropped",
			stream: "/Span << /ActualText (hidden) >> BDC EMC BT (shown) Tj ET",
			want:   "shown",
		},
		{
			name:   "empty stream",
			stream: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textFromContentStream([]byte(tt.stream)))
		})
	}
}

func TestReadHexString(t *testing.T) {
	s, n := readHexString([]byte("<41 4 >rest"))
	assert.Equal(t, "A@", s)
	assert.Equal(t, 7, n)

	s, _ = readHexString([]byte("<0001FE41>"))
	assert.Equal(t, "\x00\x01\xfeA", s)

	s, n = readHexString([]byte("<4142"))
	assert.Equal(t, "", s)
	assert.Equal(t, 5, n)
}

func TestDecodeShownString(t *testing.T) {
	assert.Equal(t, "Java", decodeShownString("Java"))
	assert.Equal(t, "Zürich", decodeShownString("Z\xfcrich"))
	assert.Equal(t, "", decodeShownString("\x00\x24\x00\x4f"))
	assert.Equal(t, "ab", decodeShownString("a\x01b"))
	assert.Equal(t, "a\nb", decodeShownString("a\nb"))
}
