// Package thriftparse extracts include statements from thrift source text.
// It is a lexical scan only: the thrift grammar is not validated.
package thriftparse

import "strings"

const includeKeyword = "include"

// ParseImports returns the paths of all quoted include statements in the
// given content, in order of appearance.  Paths are returned verbatim.  The
// closing quote may be of either kind, regardless of the opening quote.
func ParseImports(content string) []string {
	var imports []string
	s := scanner{src: content}
	for s.next() {
		imports = append(imports, s.imp)
	}
	return imports
}

// scanner walks the source looking for the include keyword, then whitespace,
// then a quoted path.
type scanner struct {
	src string
	pos int
	imp string
}

func (s *scanner) next() bool {
	for {
		i := strings.Index(s.src[s.pos:], includeKeyword)
		if i < 0 {
			s.pos = len(s.src)
			return false
		}
		start := s.pos + i
		s.pos = start + len(includeKeyword)
		if start > 0 && isIdentByte(s.src[start-1]) {
			continue
		}
		if imp, end, ok := quotedArg(s.src, s.pos); ok {
			s.imp = imp
			s.pos = end
			return true
		}
	}
}

// quotedArg skips whitespace from pos and captures the text between an
// opening quote and the next quote of either kind.  It returns the position
// after the closing quote.  A path is never empty and never spans lines.
func quotedArg(src string, pos int) (string, int, bool) {
	for pos < len(src) && isSpace(src[pos]) {
		pos++
	}
	if pos >= len(src) || !isQuote(src[pos]) {
		return "", pos, false
	}
	open := pos + 1
	end := strings.IndexAny(src[open:], "'\"\n")
	if end <= 0 || src[open+end] == '\n' {
		return "", pos, false
	}
	return src[open : open+end], open + end + 1, true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"'
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
