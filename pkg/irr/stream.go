package irr

import (
	"bytes"
	"html"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// EventKind distinguishes element starts from element ends.
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
)

// String returns the event kind name.
func (k EventKind) String() string {
	if k == EventEnd {
		return "end"
	}
	return "start"
}

// Attr is one attribute of an element start.
type Attr struct {
	Name  string
	Value string
}

// Event is one element boundary reported by an ElementStream.
type Event struct {
	Kind  EventKind
	Name  string
	Attrs []Attr // start events only
}

// Is reports whether the element name equals name, ignoring case.
func (e Event) Is(name string) bool {
	return strings.EqualFold(e.Name, name)
}

// Attr returns the value of the named attribute and whether it was present.
// An exact match wins over a case-insensitive one.
func (e Event) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

// ElementStream yields element events in document order. Next returns io.EOF
// after the last event; any other error is fatal for the stream.
type ElementStream interface {
	Next() (Event, error)
}

// XMLStream is an ElementStream over XML text. Text, comments and
// processing instructions are skipped. Self-closing elements produce a start
// and an end event.
type XMLStream struct {
	lex     *xml.Lexer
	pending []Event
	cur     *Event
}

// NewXMLStream returns a stream reading UTF-8 XML from r.
func NewXMLStream(r io.Reader) *XMLStream {
	return &XMLStream{lex: xml.NewLexer(parse.NewInput(r))}
}

// Next implements ElementStream.
func (s *XMLStream) Next() (Event, error) {
	for {
		if len(s.pending) > 0 {
			ev := s.pending[0]
			s.pending = s.pending[1:]
			return ev, nil
		}

		tt, data := s.lex.Next()
		switch tt {
		case xml.ErrorToken:
			err := s.lex.Err()
			if err == nil || err == io.EOF {
				if s.cur != nil {
					// Truncated start tag: report what was read.
					ev := *s.cur
					s.cur = nil
					return ev, nil
				}
				return Event{}, io.EOF
			}
			return Event{}, errors.Wrap(err, "tokenize scene")

		case xml.StartTagToken:
			s.cur = &Event{Kind: EventStart, Name: tagName(s.lex.Text(), data, "<")}

		case xml.AttributeToken:
			if s.cur == nil {
				continue
			}
			s.cur.Attrs = append(s.cur.Attrs, Attr{
				Name:  string(s.lex.Text()),
				Value: attrValue(s.lex.AttrVal()),
			})

		case xml.StartTagCloseToken:
			if s.cur != nil {
				s.pending = append(s.pending, *s.cur)
				s.cur = nil
			}

		case xml.StartTagCloseVoidToken:
			if s.cur != nil {
				s.pending = append(s.pending, *s.cur, Event{Kind: EventEnd, Name: s.cur.Name})
				s.cur = nil
			}

		case xml.EndTagToken:
			s.pending = append(s.pending, Event{Kind: EventEnd, Name: tagName(s.lex.Text(), data, "</")})
		}
	}
}

// tagName returns the element name from the lexer text, falling back to the
// raw token data.
func tagName(text, data []byte, prefix string) string {
	if len(text) > 0 {
		return string(text)
	}
	name := bytes.TrimPrefix(data, []byte(prefix))
	name = bytes.TrimRight(name, "> \t\r\n/")
	return string(bytes.TrimSpace(name))
}

func attrValue(raw []byte) string {
	v := bytes.TrimSpace(raw)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		v = v[1 : len(v)-1]
	}
	return html.UnescapeString(string(v))
}
