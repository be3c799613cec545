package cv

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	officeDocumentRel = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	defaultDocxMain   = "word/document.xml"
	maxDocxPartBytes  = 64 << 20

	wordprocessingMLNS     = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	wordprocessingStrictNS = "http://purl.oclc.org/ooxml/wordprocessingml/main"
)

// Subtrees of the body whose text is not part of the main flow.
var docxSkippedElements = map[string]bool{
	"object":           true,
	"drawing":          true,
	"pict":             true,
	"AlternateContent": true,
	"instrText":        true,
	"delText":          true,
}

// docxBodyText returns the inner text of the main document body. Headers,
// footers, footnotes and embedded objects live in other parts or skipped
// subtrees. A document without <w:body> yields "".
func docxBodyText(r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", eris.Wrap(err, "open zip")
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	mainPart := files[mainDocumentPartName(files)]
	if mainPart == nil {
		return "", eris.New("main document part not found in archive")
	}

	rc, err := mainPart.Open()
	if err != nil {
		return "", eris.Wrap(err, "open main document part")
	}
	defer rc.Close()

	return bodyInnerText(io.LimitReader(rc, maxDocxPartBytes))
}

// mainDocumentPartName resolves the officeDocument relationship from
// _rels/.rels, falling back to word/document.xml.
func mainDocumentPartName(files map[string]*zip.File) string {
	rels := files["_rels/.rels"]
	if rels == nil {
		return defaultDocxMain
	}
	rc, err := rels.Open()
	if err != nil {
		return defaultDocxMain
	}
	defer rc.Close()

	var doc struct {
		Relationships []struct {
			Type   string `xml:"Type,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.NewDecoder(io.LimitReader(rc, 1<<20)).Decode(&doc); err != nil {
		return defaultDocxMain
	}
	for _, rel := range doc.Relationships {
		if rel.Type == officeDocumentRel {
			target := strings.TrimPrefix(path.Clean("/"+rel.Target), "/")
			if _, ok := files[target]; ok {
				return target
			}
		}
	}
	return defaultDocxMain
}

func bodyInnerText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	var inBody, inText bool
	skipDepth := 0
	paragraphs := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", eris.Wrap(err, "parse document xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if !inBody {
				inBody = t.Name.Local == "body" && isWordML(t.Name)
				continue
			}
			switch {
			case docxSkippedElements[t.Name.Local]:
				skipDepth = 1
			case t.Name.Local == "p" && isWordML(t.Name):
				if paragraphs > 0 {
					sb.WriteByte('\n')
				}
				paragraphs++
			case t.Name.Local == "t" && isWordML(t.Name):
				inText = true
			}

		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name.Local == "body" && isWordML(t.Name):
				return sb.String(), nil
			}

		case xml.CharData:
			if inBody && inText && skipDepth == 0 {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

// isWordML accepts the transitional and strict WordprocessingML namespaces,
// plus unqualified names.
func isWordML(name xml.Name) bool {
	switch name.Space {
	case "", wordprocessingMLNS, wordprocessingStrictNS:
		return true
	}
	return false
}
