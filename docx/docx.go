// Package docx renders plain text with light markdown markers into a
// minimal Word document (a zip of WordprocessingML parts). It covers
// what generated legal documents need: headings, bold paragraphs, and
// body text.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentFooter = `</w:body></w:document>`

// Render converts content into DOCX bytes. Blank-line separated
// blocks become paragraphs; leading '#' marks become headings and
// '**...**' wrapping becomes a bold paragraph, matching the markdown
// conventions the document generator emits.
func Render(content string) ([]byte, error) {
	var body strings.Builder
	body.WriteString(documentHeader)

	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		switch {
		case strings.HasPrefix(block, "#"):
			level := len(block) - len(strings.TrimLeft(block, "#"))
			if level > 3 {
				level = 3
			}
			text := strings.TrimSpace(strings.TrimLeft(block, "#"))
			body.WriteString(headingXML(text, level))
		case strings.HasPrefix(block, "**") && strings.HasSuffix(block, "**") && len(block) > 4:
			body.WriteString(boldParagraphXML(strings.TrimSuffix(strings.TrimPrefix(block, "**"), "**")))
		default:
			body.WriteString(paragraphXML(block))
		}
	}

	body.WriteString(documentFooter)

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	parts := []struct {
		name, content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", body.String()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize document: %w", err)
	}

	return buf.Bytes(), nil
}

func escape(text string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(text))
	return buf.String()
}

func paragraphXML(text string) string {
	var runs strings.Builder
	// Line breaks inside a block stay inside the paragraph.
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			runs.WriteString(`<w:r><w:br/></w:r>`)
		}
		runs.WriteString(`<w:r><w:t xml:space="preserve">` + escape(line) + `</w:t></w:r>`)
	}
	return `<w:p>` + runs.String() + `</w:p>`
}

func boldParagraphXML(text string) string {
	return `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p>`
}

func headingXML(text string, level int) string {
	return fmt.Sprintf(`<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, level, escape(text))
}
