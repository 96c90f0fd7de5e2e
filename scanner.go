package confdoc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind classifies lexical tokens of host-module source text.
type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenNumber
	tokenString
	tokenOp
	tokenComment
	tokenNewline
)

// token is a lexical token with its position and byte span.
type token struct {
	kind tokenKind
	text string // comment tokens hold the text with the "# " prefix stripped
	line int
	col  int
	off  int
	end  int
}

// DocAnnotation is documentation recovered for a variable: a block of
// preceding comment lines (outermost first) and at most one inline
// comment.
type DocAnnotation struct {
	Preceding []string
	Inline    string
}

// HasPreceding reports whether any preceding comment lines were found.
func (d DocAnnotation) HasPreceding() bool { return len(d.Preceding) > 0 }

// HasInline reports whether an inline comment was found.
func (d DocAnnotation) HasInline() bool { return d.Inline != "" }

// Variable describes one top-level assignment discovered in
// host-module source text. Variables are ephemeral scanner output,
// rebuilt on every generation pass; RawValue is the text span of the
// value expression.
type Variable struct {
	Name     string
	RawValue string
	Doc      DocAnnotation

	spanStart int
	open      bool
}

// tokenize performs a lexical scan of source text. It recognizes
// identifiers, numbers, strings, '#' comments, newlines and
// operator/punctuation characters. An unterminated string yields a
// ScanError identifying the line; no recovery is attempted.
func tokenize(src string) ([]token, error) {
	var toks []token
	line, lineStart := 1, 0
	i := 0

	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			toks = append(toks, token{kind: tokenNewline, line: line, col: i - lineStart, off: i, end: i + 1})
			i++
			line++
			lineStart = i

		case c == ' ' || c == '\t' || c == '\r':
			i++

		case c == '\\' && i+1 < len(src) && src[i+1] == '\n':
			// explicit line continuation: no newline token
			i += 2
			line++
			lineStart = i

		case c == '#':
			start := i
			for i < len(src) && src[i] != '\n' {
				i++
			}
			toks = append(toks, token{
				kind: tokenComment,
				text: strings.TrimLeft(src[start:i], "# "),
				line: line, col: start - lineStart, off: start, end: i,
			})

		case c == '"' || c == '\'':
			start := i
			i++
			for {
				if i >= len(src) || src[i] == '\n' {
					return nil, &ScanError{Line: line, Msg: "unterminated string literal"}
				}
				if src[i] == '\\' && i+1 < len(src) && src[i+1] != '\n' {
					i += 2
					continue
				}
				if src[i] == c {
					i++
					break
				}
				i++
			}
			toks = append(toks, token{kind: tokenString, text: src[start:i], line: line, col: start - lineStart, off: start, end: i})

		case c >= '0' && c <= '9':
			start := i
			for i < len(src) && (isIdentByte(src[i]) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokenNumber, text: src[start:i], line: line, col: start - lineStart, off: start, end: i})

		default:
			r, size := utf8.DecodeRuneInString(src[i:])
			if r == '_' || unicode.IsLetter(r) {
				start := i
				i += size
				for i < len(src) {
					r, size = utf8.DecodeRuneInString(src[i:])
					if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
						break
					}
					i += size
				}
				toks = append(toks, token{kind: tokenIdent, text: src[start:i], line: line, col: start - lineStart, off: start, end: i})
				continue
			}
			// "==" must stay a single token so comparisons are not
			// mistaken for assignments
			end := i + size
			if c == '=' && i+1 < len(src) && src[i+1] == '=' {
				end = i + 2
			}
			toks = append(toks, token{kind: tokenOp, text: src[i:end], line: line, col: i - lineStart, off: i, end: end})
			i = end
		}
	}
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// DiscoverVariables scans host-module source text and reports the
// ordered set of top-level variable assignments, each with the text
// span of its value expression and any doc comments adjacent to it.
//
// This is a token-level heuristic, not a grammar parse. Lines starting
// indented, or with "from"/"import", are skipped. A known false
// positive is preserved: when a value expression spans multiple lines
// and a continuation line begins at column zero with `identifier=`,
// the inner identifier is reported as a second top-level variable.
// For example:
//
//	my_variable = dict(key1=value1,
//	key2=value2)
//
// reports both my_variable and key2.
func DiscoverVariables(src string) ([]Variable, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	var (
		order         []*Variable
		line          []token
		commentsQueue []string
		openSpans     []*Variable
		depth         int
		ignoreLine    bool
	)
	byName := make(map[string]*Variable)
	lineCommentOff := -1

	ensure := func(name string) *Variable {
		if v, ok := byName[name]; ok {
			return v
		}
		v := &Variable{Name: name}
		byName[name] = v
		order = append(order, v)
		return v
	}

	// The estimation bit: a physical line declares a variable when it
	// begins, unindented, with `identifier =`.
	lineDeclares := func() bool {
		return len(line) >= 2 &&
			line[0].kind == tokenIdent && line[0].col == 0 &&
			line[1].kind == tokenOp && line[1].text == "="
	}

	endLine := func(nlOff int) {
		if len(line) > 0 {
			if line[0].kind != tokenComment {
				if lineDeclares() {
					v := ensure(line[0].text)
					v.Doc.Preceding = append(v.Doc.Preceding, commentsQueue...)
					if len(line) >= 3 && !v.open {
						v.spanStart = line[2].off
						v.open = true
						openSpans = append(openSpans, v)
					}
				}
				commentsQueue = commentsQueue[:0]
			}
			line = line[:0]
		} else {
			// blank line breaks any series of preceding comments
			commentsQueue = commentsQueue[:0]
		}

		// a value expression ends when bracket nesting returns to zero
		// at a statement-terminating newline
		if depth == 0 && len(openSpans) > 0 {
			end := nlOff
			if lineCommentOff >= 0 && lineCommentOff < end {
				end = lineCommentOff
			}
			for _, v := range openSpans {
				if v.spanStart <= end {
					v.RawValue = strings.TrimSpace(src[v.spanStart:end])
				}
				v.open = false
			}
			openSpans = openSpans[:0]
		}
		lineCommentOff = -1
	}

	for _, tok := range toks {
		if ignoreLine {
			if tok.kind == tokenNewline {
				ignoreLine = false
				lineCommentOff = -1
			}
			continue
		}

		switch tok.kind {
		case tokenNewline:
			endLine(tok.off)

		case tokenComment:
			lineCommentOff = tok.off
			if len(line) == 0 {
				commentsQueue = append(commentsQueue, tok.text)
				line = append(line, tok)
			} else if lineDeclares() {
				ensure(line[0].text).Doc.Inline = tok.text
			} else if len(openSpans) > 0 {
				openSpans[len(openSpans)-1].Doc.Inline = tok.text
			}

		default:
			if len(line) == 0 && depth == 0 {
				if tok.col > 0 || (tok.kind == tokenIdent && (tok.text == "from" || tok.text == "import")) {
					commentsQueue = commentsQueue[:0]
					ignoreLine = true
					continue
				}
			}
			if tok.kind == tokenOp {
				switch tok.text {
				case "(", "[", "{":
					depth++
				case ")", "]", "}":
					if depth > 0 {
						depth--
					}
				}
			}
			line = append(line, tok)
		}
	}
	endLine(len(src))

	out := make([]Variable, len(order))
	for i, v := range order {
		out[i] = *v
	}
	return out, nil
}
