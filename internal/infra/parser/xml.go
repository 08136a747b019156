package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// element is a captured XML element. text holds only the character data that
// precedes the first child element; data after a child is not part of it.
type element struct {
	name     xml.Name
	text     strings.Builder
	children []*element
	// closedText is set once the first child starts.
	closedText bool
}

// child returns the first direct child with the given name, or nil.
func (e *element) child(name xml.Name) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// childText returns the raw text of the first direct child with the given
// name, or "" when there is none.
func (e *element) childText(name xml.Name) string {
	if c := e.child(name); c != nil {
		return c.text.String()
	}
	return ""
}

// childTrimmed is childText with surrounding whitespace removed.
func (e *element) childTrimmed(name xml.Name) string {
	return strings.TrimSpace(e.childText(name))
}

// pathTrimmed returns the trimmed text of the first grandchild named leaf
// below any direct child named parent, or "".
func (e *element) pathTrimmed(parent, leaf xml.Name) string {
	for _, c := range e.children {
		if c.name != parent {
			continue
		}
		if l := c.child(leaf); l != nil {
			return strings.TrimSpace(l.text.String())
		}
	}
	return ""
}

// walkOptions controls which elements walk captures.
type walkOptions struct {
	match func(xml.Name) bool
	// includeRoot lets the document element itself match.
	includeRoot bool
}

// walk streams through data and returns every element accepted by opts.match
// in document order, with its subtree. Matches nested inside other matches
// are returned as well. Any syntax error, including an empty document, is
// reported as ErrMalformedXML.
func walk(data []byte, opts walkOptions) ([]*element, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedXML)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		found   []*element
		open    []*element // nil entries are elements outside any match
		sawRoot bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			isRoot := !sawRoot
			sawRoot = true
			matched := (!isRoot || opts.includeRoot) && opts.match(t.Name)

			var parent *element
			if len(open) > 0 {
				parent = open[len(open)-1]
			}
			var el *element
			if matched || parent != nil {
				el = &element{name: t.Name}
				if parent != nil {
					parent.closedText = true
					parent.children = append(parent.children, el)
				}
				if matched {
					found = append(found, el)
				}
			}
			open = append(open, el)
		case xml.EndElement:
			open = open[:len(open)-1]
		case xml.CharData:
			if n := len(open); n > 0 && open[n-1] != nil && !open[n-1].closedText {
				open[n-1].text.Write(t)
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedXML)
	}
	return found, nil
}

// localName matches a non-namespaced element by local name.
func localName(name string) func(xml.Name) bool {
	return func(n xml.Name) bool {
		return n.Space == "" && n.Local == name
	}
}

// plain builds a non-namespaced xml.Name.
func plain(local string) xml.Name {
	return xml.Name{Local: local}
}
