package formats

import "strings"

// Scanner reads lines from in-memory text. Line endings may be "\n" or "\r\n".
type Scanner struct {
	text    string
	pos     int
	line    int
	comment byte
}

// NewScanner creates a scanner over text with no comment character.
func NewScanner(text string) *Scanner {
	return &Scanner{text: text}
}

// SetComment sets the character that starts a comment running to the end of the line.
// Zero disables comment stripping.
func (s *Scanner) SetComment(c byte) {
	s.comment = c
}

// Line returns the 1-based number of the line most recently returned by ReadNextLine.
func (s *Scanner) Line() int {
	return s.line
}

// HasNextLine reports whether another line can be read.
func (s *Scanner) HasNextLine() bool {
	return s.pos < len(s.text)
}

// ReadNextLine returns the next line without its terminator and without any comment suffix.
func (s *Scanner) ReadNextLine() (string, error) {
	if !s.HasNextLine() {
		return "", ErrNoMoreTokens
	}

	rest := s.text[s.pos:]
	end := strings.IndexByte(rest, '\n')
	var line string
	if end < 0 {
		line = rest
		s.pos = len(s.text)
	} else {
		line = rest[:end]
		s.pos += end + 1
	}
	line = strings.TrimSuffix(line, "\r")
	s.line++

	if s.comment != 0 {
		if i := strings.IndexByte(line, s.comment); i >= 0 {
			line = line[:i]
		}
	}
	return line, nil
}

// Tokens is a lazy sequence of substrings of a line split on a set of separator bytes.
type Tokens struct {
	s         string
	seps      string
	skipEmpty bool
	pos       int
	done      bool
}

// SplitTokens splits line on any byte in separators. With skipEmpty set, runs of
// separators collapse and leading or trailing runs produce no tokens.
func SplitTokens(line, separators string, skipEmpty bool) *Tokens {
	return &Tokens{s: line, seps: separators, skipEmpty: skipEmpty}
}

// HasNext reports whether Next will return a token.
func (t *Tokens) HasNext() bool {
	if t.done {
		return false
	}
	if t.skipEmpty {
		for t.pos < len(t.s) && strings.IndexByte(t.seps, t.s[t.pos]) >= 0 {
			t.pos++
		}
		if t.pos >= len(t.s) {
			t.done = true
		}
	}
	return !t.done
}

// Next returns the next token or ErrNoMoreTokens.
func (t *Tokens) Next() (string, error) {
	if !t.HasNext() {
		return "", ErrNoMoreTokens
	}

	rest := t.s[t.pos:]
	i := strings.IndexAny(rest, t.seps)
	if i < 0 {
		t.pos = len(t.s)
		if !t.skipEmpty {
			t.done = true
		}
		return rest, nil
	}
	t.pos += i
	if !t.skipEmpty {
		// consume exactly one separator so that empty fields survive
		t.pos++
	}
	return rest[:i], nil
}

// All drains the remaining tokens.
func (t *Tokens) All() []string {
	var out []string
	for t.HasNext() {
		tok, _ := t.Next()
		out = append(out, tok)
	}
	return out
}
