package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// WordText extracts text from a .docx document. Word has no hard page
// boundaries, so pages are approximated as 50 paragraphs and a requested
// range selects the matching paragraph window. Returns the text and the
// estimated page count. Legacy .doc files are not parseable and fail here.
func WordText(filePath string, startPage, endPage *int) (string, int, error) {
	paragraphs, err := wordParagraphs(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("Failed to extract Word text: %v", err)
	}

	estimatedPages := max(1, len(paragraphs)/50)

	if startPage != nil || endPage != nil {
		parasPerPage := max(1, len(paragraphs)/estimatedPages)
		startIdx := 0
		if startPage != nil {
			startIdx = (*startPage - 1) * parasPerPage
		}
		endIdx := len(paragraphs)
		if endPage != nil {
			endIdx = *endPage * parasPerPage
		}
		startIdx = min(startIdx, len(paragraphs))
		endIdx = min(endIdx, len(paragraphs))
		if endIdx < startIdx {
			endIdx = startIdx
		}
		paragraphs = paragraphs[startIdx:endIdx]
	}

	return strings.Join(paragraphs, "\n\n"), estimatedPages, nil
}

// wordParagraphs pulls the non-blank paragraph texts out of the document
// part of a .docx archive. Only w:t runs carry text; tabs and breaks map to
// their plain text forms.
func wordParagraphs(filePath string) ([]string, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	var docFile *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, errors.New("no word/document.xml in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inParagraph {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "p":
				inParagraph = false
				if text := current.String(); strings.TrimSpace(text) != "" {
					paragraphs = append(paragraphs, text)
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}

	return paragraphs, nil
}
