package processor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// extractDOCX returns the paragraphs of a Word document joined by single spaces.
func extractDOCX(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", docxBody, err)
		}
		defer rc.Close()

		paragraphs, err := docxParagraphs(rc)
		if err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", docxBody, err)
		}
		return strings.Join(paragraphs, " "), nil
	}

	return "", fmt.Errorf("failed to find %s in archive", docxBody)
}

// docxParagraphs walks WordprocessingML and collects the text runs of each w:p element.
// Paragraphs nested in text boxes are kept separate and placed after the paragraph
// that anchors them.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	type open struct {
		depth int
		text  strings.Builder
	}

	var (
		paragraphs []string
		stack      []*open
		nested     []string
		inText     bool
	)
	current := func() *strings.Builder {
		if len(stack) == 0 {
			return nil
		}
		return &stack[len(stack)-1].text
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				stack = append(stack, &open{depth: len(stack)})
			case "t":
				inText = true
			case "tab":
				if b := current(); b != nil {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if b := current(); b != nil {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if len(stack) == 0 {
					continue
				}
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if p.depth > 0 {
					nested = append(nested, p.text.String())
					continue
				}
				paragraphs = append(paragraphs, p.text.String())
				paragraphs = append(paragraphs, nested...)
				nested = nested[:0]
			}
		case xml.CharData:
			if b := current(); inText && b != nil {
				b.Write(t)
			}
		}
	}

	return paragraphs, nil
}
