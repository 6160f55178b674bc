// Package outstream implements the Output Stream: the ordered record of
// text, tags, glue markers and control markers the engine appends to as
// it steps, and the assembly pass that reduces it to current-text plus
// current-tags for the caller.
package outstream

import "strings"

// EntryKind discriminates what an Entry carries.
type EntryKind int

const (
	EntryText EntryKind = iota
	EntryGlue
	EntryTagBegin
	EntryTagEnd
	EntryFunctionStart // marks a Function frame's output-stream boundary
	EntryFunctionEnd
)

// Entry is one element appended to a Stream.
type Entry struct {
	Kind EntryKind
	Text string // EntryText
}

// Stream accumulates Entry values in story order.
type Stream struct {
	Entries []Entry
}

// New returns an empty stream.
func New() *Stream { return &Stream{} }

func (s *Stream) PushText(text string) { s.Entries = append(s.Entries, Entry{Kind: EntryText, Text: text}) }
func (s *Stream) PushGlue()            { s.Entries = append(s.Entries, Entry{Kind: EntryGlue}) }
func (s *Stream) PushTagBegin()        { s.Entries = append(s.Entries, Entry{Kind: EntryTagBegin}) }
func (s *Stream) PushTagEnd()          { s.Entries = append(s.Entries, Entry{Kind: EntryTagEnd}) }

// Len returns the number of entries, used as a snapshot boundary marker
// (e.g. FunctionStartInOutputStream).
func (s *Stream) Len() int { return len(s.Entries) }

// Truncate discards entries beyond n, used by endString to remove the
// entries it has just collected into a string value.
func (s *Stream) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.Entries) {
		s.Entries = s.Entries[:n]
	}
}

// Copy returns an independent copy, used for newline-lookahead snapshots.
func (s *Stream) Copy() *Stream {
	out := &Stream{Entries: make([]Entry, len(s.Entries))}
	copy(out.Entries, s.Entries)
	return out
}

func isAllWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Assembled is the result of reducing a Stream to display form.
type Assembled struct {
	Text string
	Tags []string
}

// Assemble reduces the stream in three passes (tokenize, resolve glue,
// concatenate): glue resolves by trimming whitespace on both sides of its
// position, beginTag/endTag regions are pulled into Tags rather than
// Text, consecutive newlines collapse, and leading whitespace right
// after a newline (or at stream start) is trimmed.
func Assemble(s *Stream) Assembled {
	var tokens []token
	var tags []string
	inTag := false
	var tagBuf strings.Builder

	flushWords := func(text string) []token {
		var out []token
		for len(text) > 0 {
			nl := strings.IndexByte(text, '\n')
			if nl == -1 {
				out = append(out, splitWords(text)...)
				break
			}
			out = append(out, splitWords(text[:nl])...)
			out = append(out, token{isNL: true})
			text = text[nl+1:]
		}
		return out
	}

	for _, e := range s.Entries {
		switch e.Kind {
		case EntryText:
			if inTag {
				tagBuf.WriteString(e.Text)
				continue
			}
			tokens = append(tokens, flushWords(e.Text)...)
		case EntryGlue:
			if inTag {
				continue
			}
			tokens = append(tokens, token{isGlue: true})
		case EntryTagBegin:
			inTag = true
			tagBuf.Reset()
		case EntryTagEnd:
			inTag = false
			tag := strings.TrimSpace(tagBuf.String())
			if tag != "" {
				tags = append(tags, tag)
			}
		case EntryFunctionStart, EntryFunctionEnd:
			// boundary markers carry no text of their own
		}
	}

	// Resolve glue: drop every whitespace token (newlines included) in the
	// run immediately preceding and the run immediately following a glue
	// marker, then drop the marker itself.
	resolved := make([]token, 0, len(tokens))
	for i, t := range tokens {
		if !t.isGlue {
			resolved = append(resolved, t)
			continue
		}
		// trim trailing whitespace already emitted
		for len(resolved) > 0 && isWhitespaceToken(resolved[len(resolved)-1]) {
			resolved = resolved[:len(resolved)-1]
		}
		// mark the next whitespace token (if any) to be skipped
		j := i + 1
		for j < len(tokens) && isWhitespaceToken(tokens[j]) {
			tokens[j] = token{} // neutralize: becomes an empty text token, dropped below
			j++
		}
	}

	// Concatenate, collapsing consecutive newlines and trimming leading
	// whitespace after a newline or at the start.
	var b strings.Builder
	atLineStart := true
	lastWasNL := false
	for _, t := range resolved {
		if t.isNL {
			if lastWasNL {
				continue // drop consecutive newlines
			}
			b.WriteByte('\n')
			lastWasNL = true
			atLineStart = true
			continue
		}
		if t.text == "" {
			continue
		}
		if atLineStart && isAllWhitespace(t.text) {
			continue
		}
		b.WriteString(t.text)
		atLineStart = false
		lastWasNL = false
	}

	return Assembled{Text: b.String(), Tags: tags}
}

// token is an assembly-pass intermediate: either a run of same-class
// characters (word or whitespace), a single newline marker, or a glue
// marker.
type token struct {
	text   string
	isGlue bool
	isNL   bool
}

func isWhitespaceToken(t token) bool {
	if t.isNL {
		return true
	}
	return t.text != "" && isAllWhitespace(t.text)
}

// splitWords breaks text into alternating word/space tokens so glue
// resolution can drop a single adjoining whitespace token without
// disturbing the words on either side of it.
func splitWords(text string) []token {
	var out []token
	i := 0
	for i < len(text) {
		j := i
		space := text[i] == ' ' || text[i] == '\t'
		for j < len(text) && ((text[j] == ' ' || text[j] == '\t') == space) {
			j++
		}
		out = append(out, token{text: text[i:j]})
		i = j
	}
	return out
}
