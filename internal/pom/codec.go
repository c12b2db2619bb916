// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"

	"oagen-cli/internal/backup"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	cdataOpen  = []byte("<![CDATA[")
	encodingRe = regexp.MustCompile(`^\s*<\?xml[^>]*\bencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", `"`, "&quot;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;",
	)
)

// ParseFile reads and parses the descriptor at path. Read failures are
// reported as *backup.FileSystemError, malformed content as *ParseError.
func ParseFile(path string, opts FormatOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &backup.FileSystemError{Op: "read", Path: path, Err: err}
	}
	doc, err := parse(data, opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse reads a whole descriptor from r.
//
// Element text is trimmed and kept as a string; nothing is coerced into
// numbers or booleans. Comments, processing instructions and directives are
// dropped. Documents declaring a non-UTF-8 encoding are transcoded first.
//
// Mixed content is flattened: the text runs of an element are joined with a
// single space and serialized ahead of its children, so `<d>a<b>1</b>c</d>`
// comes back as "a c" followed by <b>.
func Parse(r io.Reader, opts FormatOptions) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return parse(data, opts)
}

func parse(data []byte, _ FormatOptions) (*Document, error) {
	data, err := toUTF8(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	d := xml.NewDecoder(bytes.NewReader(data))
	// Input is UTF-8 at this point; keep the declared label from triggering a
	// second conversion.
	d.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }

	var (
		root  *Node
		stack []*Node
	)

	for {
		start := d.InputOffset()
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, syntaxError(d, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: qualify(t.Name)}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: qualify(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, positioned(d, fmt.Errorf("second root element <%s>", n.Name))
				}
				root = n
			} else {
				stack[len(stack)-1].AppendChild(n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			name := qualify(t.Name)
			if len(stack) == 0 {
				return nil, positioned(d, fmt.Errorf("unexpected closing tag </%s>", name))
			}
			if top := stack[len(stack)-1]; top.Name != name {
				return nil, positioned(d, fmt.Errorf("closing tag </%s> does not match <%s>", name, top.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			isCDATA := start < int64(len(data)) && bytes.HasPrefix(data[start:], cdataOpen)
			text := string(t)
			if !isCDATA {
				text = strings.TrimSpace(text)
			}
			if len(stack) == 0 {
				if text != "" {
					return nil, positioned(d, errors.New("text outside the root element"))
				}
				continue
			}
			top := stack[len(stack)-1]
			if !isCDATA && text != "" && top.Text != "" && top.HasChildren() {
				top.Text += " "
			}
			top.Text += text
			if isCDATA {
				top.CDATA = true
			}
		}
	}

	if len(stack) > 0 {
		return nil, positioned(d, fmt.Errorf("element <%s> is not closed", stack[len(stack)-1].Name))
	}
	if root == nil {
		return nil, &ParseError{Err: errors.New("no root element")}
	}
	return &Document{Root: root}, nil
}

// Serialize writes doc as indented XML without the declaration line.
func Serialize(w io.Writer, doc *Document, opts FormatOptions) error {
	if doc == nil || doc.Root == nil {
		return errors.New("serialize: empty document")
	}
	bw := bufio.NewWriter(w)
	s := serializer{w: bw, opts: opts}
	s.node(doc.Root, 0)
	return bw.Flush()
}

// Render returns the declaration line followed by the serialized document.
func Render(doc *Document, opts FormatOptions) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Declaration)
	buf.WriteByte('\n')
	if err := Serialize(&buf, doc, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type serializer struct {
	w    *bufio.Writer
	opts FormatOptions
}

func (s serializer) node(n *Node, depth int) {
	indent := strings.Repeat(s.opts.Indent, depth)

	s.w.WriteString(indent)
	s.w.WriteByte('<')
	s.w.WriteString(n.Name)
	for _, a := range n.Attrs {
		s.w.WriteByte(' ')
		s.w.WriteString(a.Name)
		s.w.WriteString(`="`)
		s.w.WriteString(attrEscaper.Replace(a.Value))
		s.w.WriteByte('"')
	}
	s.w.WriteByte('>')

	if !n.HasChildren() {
		s.text(n)
		s.closeTag(n.Name)
		return
	}

	s.w.WriteByte('\n')
	if n.Text != "" {
		s.w.WriteString(indent + s.opts.Indent)
		s.text(n)
		s.w.WriteByte('\n')
	}
	for _, slot := range n.Slots {
		for _, child := range slot.Nodes {
			s.node(child, depth+1)
		}
	}
	s.w.WriteString(indent)
	s.closeTag(n.Name)
}

func (s serializer) text(n *Node) {
	if n.Text == "" {
		return
	}
	if n.CDATA && s.opts.PreserveCDATA {
		s.w.WriteString("<![CDATA[")
		s.w.WriteString(strings.ReplaceAll(n.Text, "]]>", "]]]]><![CDATA[>"))
		s.w.WriteString("]]>")
		return
	}
	s.w.WriteString(textEscaper.Replace(n.Text))
}

func (s serializer) closeTag(name string) {
	s.w.WriteString("</")
	s.w.WriteString(name)
	s.w.WriteString(">\n")
}

// Map projects the document onto generic maps: a leaf element without
// attributes becomes its text, attributes are grouped under
// opts.AttributeKey, text next to attributes or children goes under
// opts.TextKey, and sequence slots become slices.
func (d *Document) Map(opts FormatOptions) map[string]any {
	if d == nil || d.Root == nil {
		return map[string]any{}
	}
	opts = opts.withDefaults()
	return map[string]any{d.Root.Name: nodeValue(d.Root, opts)}
}

func nodeValue(n *Node, opts FormatOptions) any {
	if len(n.Attrs) == 0 && !n.HasChildren() {
		return n.Text
	}

	m := make(map[string]any, len(n.Slots)+2)
	if len(n.Attrs) > 0 {
		attrs := make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			attrs[a.Name] = a.Value
		}
		m[opts.AttributeKey] = attrs
	}
	if n.Text != "" {
		m[opts.TextKey] = n.Text
	}
	for _, slot := range n.Slots {
		switch {
		case len(slot.Nodes) == 0:
			continue
		case slot.Kind == SlotSingle && len(slot.Nodes) == 1:
			m[slot.Name] = nodeValue(slot.Nodes[0], opts)
		default:
			list := make([]any, 0, len(slot.Nodes))
			for _, child := range slot.Nodes {
				list = append(list, nodeValue(child, opts))
			}
			m[slot.Name] = list
		}
	}
	return m
}

func qualify(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// toUTF8 strips a UTF-8 byte order mark and transcodes documents whose
// declaration names another encoding.
func toUTF8(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	m := encodingRe.FindSubmatch(head)
	if m == nil {
		return data, nil
	}
	label := strings.ToLower(string(m[1]))
	if label == "utf-8" || label == "utf8" || label == "us-ascii" {
		return data, nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	converted, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("transcode from %q: %w", label, err)
	}
	return converted, nil
}

func syntaxError(d *xml.Decoder, err error) error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &ParseError{Line: se.Line, Err: errors.New(se.Msg)}
	}
	return positioned(d, err)
}

func positioned(d *xml.Decoder, err error) error {
	line, _ := d.InputPos()
	return &ParseError{Line: line, Err: err}
}
