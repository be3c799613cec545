package cv

import (
	"bytes"
	"strings"

	"code.sajari.com/docconv"
	"github.com/rotisserie/eris"
)

// popplerPages converts a PDF through docconv, which shells out to poppler's
// pdftotext. docconv suppresses page breaks, so the whole document usually
// comes back as a single page.
func popplerPages(data []byte) ([]string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, eris.New("missing %PDF header")
	}
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "pdftotext")
	}
	return strings.Split(strings.TrimRight(body, "\f\n"), "\f"), nil
}
