package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// zipTextTarget describes where a zip-packaged document format keeps its
// text: which zip entries to read and which XML text nodes to collect.
// Covers OOXML (docx, pptx) and OpenDocument (odp, ods) packages.
type zipTextTarget struct {
	// matches reports whether a zip entry holds document text.
	matches func(name string) bool
	// textNodes extract the inner text of each text node. Separate patterns
	// per tag so opening and closing tags agree.
	textNodes []*regexp.Regexp
}

// OpenDocument text elements, shared by odp and ods content.xml.
var (
	odfTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odfTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odfTextH    = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

func isODFContent(name string) bool { return name == "content.xml" }

var (
	// DOCX keeps body text in word/document.xml as <w:t> nodes.
	docxTarget = zipTextTarget{
		matches:   func(name string) bool { return name == "word/document.xml" },
		textNodes: []*regexp.Regexp{regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)},
	}
	// PPTX keeps slide text in ppt/slides/slideN.xml as <a:t> nodes.
	pptxTarget = zipTextTarget{
		matches: func(name string) bool {
			return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
		},
		textNodes: []*regexp.Regexp{regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)},
	}
	// ODP (presentation) text lives in content.xml paragraph, span, and
	// heading nodes.
	odpTarget = zipTextTarget{
		matches:   isODFContent,
		textNodes: []*regexp.Regexp{odfTextP, odfTextSpan, odfTextH},
	}
	// ODS (spreadsheet) cell text lives in content.xml paragraph and span
	// nodes.
	odsTarget = zipTextTarget{
		matches:   isODFContent,
		textNodes: []*regexp.Regexp{odfTextP, odfTextSpan},
	}
)

// extractZipText pulls the text nodes out of a zip-packaged document.
// Attribute variations on the text tags are tolerated; everything else is
// ignored.
func extractZipText(content []byte, target zipTextTarget) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open document package: not a zip: %w", err)
	}
	var b strings.Builder
	for _, f := range zr.File {
		if !target.matches(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name, err)
		}
		for _, node := range target.textNodes {
			for _, m := range node.FindAllStringSubmatch(string(data), -1) {
				text := strings.TrimSpace(m[1])
				if text == "" {
					continue
				}
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}
	}
	return b.String(), nil
}
