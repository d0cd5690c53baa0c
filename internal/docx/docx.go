package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const documentXMLPath = "word/document.xml"

// MimeType is the content type of an OOXML word-processing document.
const MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Document is an in-memory OOXML package. Only word/document.xml is touched;
// every other archive entry is carried through byte for byte so a rewrite
// never loses styles, media or relationships.
type Document struct {
	names   []string
	entries map[string][]byte
	xml     string
}

// Paragraph is one w:p element of the document body. Paragraphs inside table
// cells appear in the same flat sequence with InTable set.
type Paragraph struct {
	Index   int
	Text    string
	InTable bool

	innerStart int
	innerEnd   int
}

// Open parses a DOCX byte stream. It fails if the stream is not a zip archive
// or carries no word/document.xml part.
func Open(data []byte) (*Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}

	doc := &Document{entries: make(map[string][]byte)}
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %s: %w", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", file.Name, err)
		}
		doc.names = append(doc.names, file.Name)
		doc.entries[file.Name] = content
	}

	body, ok := doc.entries[documentXMLPath]
	if !ok {
		return nil, fmt.Errorf("not a word document: missing %s", documentXMLPath)
	}
	doc.xml = string(body)
	return doc, nil
}

// Paragraphs returns every w:p element in document order, table-cell
// paragraphs included.
func (d *Document) Paragraphs() []Paragraph {
	var paragraphs []Paragraph
	pos := 0
	index := 0

	for {
		open := findParagraphOpen(d.xml, pos)
		if open == -1 {
			break
		}
		tagEnd := strings.Index(d.xml[open:], ">")
		if tagEnd == -1 {
			break
		}
		tagEnd += open + 1

		// Self-closing paragraphs carry no text.
		if strings.HasSuffix(d.xml[open:tagEnd], "/>") {
			pos = tagEnd
			continue
		}

		closeIdx := strings.Index(d.xml[tagEnd:], "</w:p>")
		if closeIdx == -1 {
			break
		}
		closeIdx += tagEnd

		inner := d.xml[tagEnd:closeIdx]
		paragraphs = append(paragraphs, Paragraph{
			Index:      index,
			Text:       stripTags(inner),
			InTable:    d.inTable(open),
			innerStart: tagEnd,
			innerEnd:   closeIdx,
		})
		index++
		pos = closeIdx + len("</w:p>")
	}

	return paragraphs
}

// Text returns the visible text of the whole document, one line per
// paragraph. Used by the validator and by the text-only analysis fallback.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, p := range d.Paragraphs() {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// ParagraphCount reports how many paragraphs carry non-empty text.
func (d *Document) ParagraphCount() int {
	count := 0
	for _, p := range d.Paragraphs() {
		if strings.TrimSpace(p.Text) != "" {
			count++
		}
	}
	return count
}

// HasTables reports whether the body contains at least one w:tbl element.
func (d *Document) HasTables() bool {
	return strings.Contains(d.xml, "<w:tbl>") || strings.Contains(d.xml, "<w:tbl ")
}

// RewriteParagraphs calls fn for every paragraph and replaces the content of
// each paragraph for which fn returns a new text with ok=true. Paragraph
// properties (w:pPr) are preserved; the remaining runs are collapsed into a
// single run, which loses intra-paragraph rich formatting. Returns the number
// of rewritten paragraphs.
func (d *Document) RewriteParagraphs(fn func(p Paragraph) (string, bool)) int {
	paragraphs := d.Paragraphs()
	rewritten := 0

	// Apply edits back to front so earlier offsets stay valid.
	for i := len(paragraphs) - 1; i >= 0; i-- {
		p := paragraphs[i]
		newText, ok := fn(p)
		if !ok {
			continue
		}
		inner := d.xml[p.innerStart:p.innerEnd]
		props := paragraphProps(inner)
		replacement := props + "<w:r><w:t xml:space=\"preserve\">" + escapeText(newText) + "</w:t></w:r>"
		d.xml = d.xml[:p.innerStart] + replacement + d.xml[p.innerEnd:]
		rewritten++
	}
	return rewritten
}

// Bytes serializes the package back into a DOCX byte stream.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, name := range d.names {
		entry, err := writer.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive entry %s: %w", name, err)
		}
		content := d.entries[name]
		if name == documentXMLPath {
			content = []byte(d.xml)
		}
		if _, err := entry.Write(content); err != nil {
			return nil, fmt.Errorf("failed to write archive entry %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

// inTable reports whether the element starting at pos sits inside an open
// w:tbl element.
func (d *Document) inTable(pos int) bool {
	before := d.xml[:pos]
	open := strings.LastIndex(before, "<w:tbl>")
	if o := strings.LastIndex(before, "<w:tbl "); o > open {
		open = o
	}
	closed := strings.LastIndex(before, "</w:tbl>")
	return open > closed
}

// findParagraphOpen locates the next "<w:p" that really opens a paragraph,
// skipping tags that merely share the prefix (w:pPr, w:pgSz, ...).
func findParagraphOpen(s string, from int) int {
	for {
		idx := strings.Index(s[from:], "<w:p")
		if idx == -1 {
			return -1
		}
		idx += from
		rest := idx + len("<w:p")
		if rest < len(s) {
			switch s[rest] {
			case '>', ' ', '/':
				return idx
			}
		}
		from = idx + 1
	}
}

// paragraphProps returns the leading w:pPr block of a paragraph's inner XML,
// or "" when the paragraph has none.
func paragraphProps(inner string) string {
	if !strings.HasPrefix(inner, "<w:pPr") {
		return ""
	}
	end := strings.Index(inner, "</w:pPr>")
	if end == -1 {
		// Self-closing properties element.
		if selfEnd := strings.Index(inner, "/>"); selfEnd != -1 {
			return inner[:selfEnd+2]
		}
		return ""
	}
	return inner[:end+len("</w:pPr>")]
}

// stripTags removes XML markup and decodes the basic entities, yielding the
// visible text of a fragment.
func stripTags(content string) string {
	var sb strings.Builder
	inTag := false
	for _, char := range content {
		if char == '<' {
			inTag = true
		} else if char == '>' {
			inTag = false
		} else if !inTag {
			sb.WriteRune(char)
		}
	}
	return unescapeText(sb.String())
}

func escapeText(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}

func unescapeText(s string) string {
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	return replacer.Replace(s)
}
