package entity

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// parseState tracks where the scanner is relative to the current entity
// element. The dump format is at most two levels deep inside the root
// container, so three states cover every legal position.
type parseState int

const (
	// stateOutside: between entity elements, directly inside the root.
	stateOutside parseState = iota
	// stateInEntity: an entity element is open, no sub-element is.
	stateInEntity
	// stateInSub: a single-text sub-element of the current entity is open.
	stateInSub
)

// ParseError is a fatal XML error. The whole run aborts; the parser makes
// no attempt at recovery or partial output.
type ParseError struct {
	Offset int64 // byte offset into the stream where decoding failed
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse consumes an entities.xml byte stream in a single pass and returns
// the populated Store. Memory is bounded by the parsed entities, not the
// raw stream: the decoder never builds a document tree.
//
// The stream must be a single root container wrapping a flat sequence of
// entity elements. Each entity carries its fields as XML attributes or as
// child elements holding only character data. Anything nested deeper is
// malformed and fails the parse.
func Parse(r io.Reader) (*Store, error) {
	store := newStore()
	dec := xml.NewDecoder(bufio.NewReader(r))

	state := stateOutside
	rootSeen := false
	var current *Record
	var subName string
	var subText strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Offset: dec.InputOffset(), Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch state {
			case stateOutside:
				if !rootSeen {
					// The root container itself is not an entity.
					rootSeen = true
					continue
				}
				current = &Record{
					Tag:    t.Name.Local,
					Fields: make(map[string]string, len(t.Attr)),
				}
				for _, a := range t.Attr {
					current.Fields[a.Name.Local] = a.Value
				}
				state = stateInEntity
			case stateInEntity:
				subName = t.Name.Local
				subText.Reset()
				state = stateInSub
			case stateInSub:
				return nil, &ParseError{
					Offset: dec.InputOffset(),
					Err:    fmt.Errorf("element <%s> nested below sub-element <%s>", t.Name.Local, subName),
				}
			}

		case xml.CharData:
			// Text directly inside an entity (no sub open) is formatting
			// whitespace in the dump encoding and is discarded.
			if state == stateInSub {
				subText.Write(t)
			}

		case xml.EndElement:
			switch state {
			case stateInSub:
				current.Fields[subName] = subText.String()
				state = stateInEntity
			case stateInEntity:
				store.add(current)
				current = nil
				state = stateOutside
			case stateOutside:
				// Closing the root container.
			}

		default:
			// Comments, directives, and processing instructions carry no
			// entity data.
		}
	}

	if state != stateOutside {
		return nil, &ParseError{Offset: dec.InputOffset(), Err: errors.New("truncated input: unclosed element")}
	}
	return store, nil
}
