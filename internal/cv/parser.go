package cv

import (
	"bytes"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Format identifies a supported résumé document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// PDF text backends. Auto prefers poppler, which decodes embedded fonts,
// and falls back to pdfcpu when pdftotext is not installed.
const (
	PDFBackendAuto    = "auto"
	PDFBackendPdfcpu  = "pdfcpu"
	PDFBackendPoppler = "poppler"
)

// pdfTextFunc returns the text of every page, in page order.
type pdfTextFunc func(data []byte) ([]string, error)

var lookPath = exec.LookPath

// CVParser turns an uploaded document into plain text.
type CVParser struct {
	backend  string
	pdfPages pdfTextFunc
}

// NewCVParser creates a parser using the named PDF backend. An empty or
// unknown backend means auto.
func NewCVParser(pdfBackend string) *CVParser {
	switch pdfBackend {
	case PDFBackendPoppler:
		return &CVParser{backend: PDFBackendPoppler, pdfPages: popplerPages}
	case PDFBackendPdfcpu:
		return &CVParser{backend: PDFBackendPdfcpu, pdfPages: pdfcpuPages}
	case PDFBackendAuto, "":
	default:
		zap.L().Warn("unknown pdf backend, using auto", zap.String("backend", pdfBackend))
	}

	if _, err := lookPath("pdftotext"); err != nil {
		zap.L().Info("pdftotext not found, using pdfcpu for PDF text")
		return &CVParser{backend: PDFBackendPdfcpu, pdfPages: pdfcpuPages}
	}
	return &CVParser{backend: PDFBackendPoppler, pdfPages: popplerPages}
}

// DetectFormat determines the document format from the filename extension.
// Content is never sniffed.
func DetectFormat(filename string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		if ext == "" {
			ext = filename
		}
		return "", eris.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
}

// ParseFile extracts plain text from a PDF or DOCX stream. The caller owns
// the reader and is responsible for closing it.
func (p *CVParser) ParseFile(filename string, reader io.Reader) (string, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}
	return p.Parse(format, reader)
}

// Parse extracts plain text from a stream of a known format.
func (p *CVParser) Parse(format Format, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", eris.Wrap(err, "read upload")
	}

	switch format {
	case FormatPDF:
		pages, err := p.pdfPages(data)
		if err != nil {
			return "", eris.Wrapf(ErrCorruptDocument, "pdf: %v", err)
		}
		return strings.Join(pages, "\n"), nil
	case FormatDOCX:
		text, err := docxBodyText(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", eris.Wrapf(ErrCorruptDocument, "docx: %v", err)
		}
		return text, nil
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "%q", string(format))
	}
}
