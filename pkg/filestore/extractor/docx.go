// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// extractDOCX returns the text of every body paragraph in document order,
// joined by a single space. Paragraphs nested in tables are skipped, matching
// what word processors list as the document's paragraphs.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open DOCX archive: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("open DOCX: missing %s", docxBodyPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", docxBodyPart, err)
	}
	return strings.Join(paragraphs, " "), nil
}

// docxParagraphs walks WordprocessingML and collects the text of each
// w:p that is a direct child of w:body.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		stack      []string
		para       *strings.Builder
		paraDepth  int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "p" && para == nil && len(stack) > 0 && stack[len(stack)-1] == "body":
				para = &strings.Builder{}
				paraDepth = len(stack)
			case para != nil && name == "t":
				inText = true
			case para != nil && name == "tab":
				para.WriteByte('\t')
			case para != nil && (name == "br" || name == "cr"):
				para.WriteByte('\n')
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch {
			case t.Name.Local == "t":
				inText = false
			case t.Name.Local == "p" && para != nil && len(stack) == paraDepth:
				paragraphs = append(paragraphs, para.String())
				para = nil
			}

		case xml.CharData:
			if para != nil && inText {
				para.Write(t)
			}
		}
	}

	return paragraphs, nil
}
