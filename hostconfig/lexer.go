package hostconfig

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokVariable
	tokString
	tokNumber
	tokIdent
	tokPunct
)

// token is a lexical unit; start and end are byte offsets into the source.
type token struct {
	kind  tokenKind
	text  string // raw source text; for variables the name without "$"
	value string // decoded value of string literals
	start int
	end   int
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// Longest first.
var multiCharPunct = []string{
	"<<=", ">>=", "**=", "??=", "===", "!==", "<=>", "...",
	"==", "!=", "<>", "<=", ">=", "=>", "->", "::", "++", "--",
	"+=", "-=", "*=", "/=", ".=", "%=", "&=", "|=", "^=",
	"&&", "||", "??", "<<", ">>", "**",
}

// lexer tokenizes the subset of PHP found in host config files.
// Text outside <?php ... ?> is skipped, as are comments.
type lexer struct {
	src   string
	pos   int
	inPHP bool
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}
	var out []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			out = append(out, tok)
			return out, nil
		}
		out = append(out, tok)
	}
}

func (lx *lexer) next() (token, error) {
	for {
		if !lx.inPHP {
			idx := strings.Index(lx.src[lx.pos:], "<?")
			if idx < 0 {
				lx.pos = len(lx.src)
				return token{kind: tokEOF, start: lx.pos, end: lx.pos}, nil
			}
			lx.pos += idx + 2
			if strings.HasPrefix(strings.ToLower(lx.src[lx.pos:]), "php") {
				lx.pos += 3
			}
			lx.inPHP = true
			continue
		}

		if lx.pos >= len(lx.src) {
			return token{kind: tokEOF, start: lx.pos, end: lx.pos}, nil
		}

		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			lx.pos++
		case c == '#' && !strings.HasPrefix(lx.src[lx.pos:], "#["):
			lx.skipLineComment()
		case strings.HasPrefix(lx.src[lx.pos:], "//"):
			lx.skipLineComment()
		case strings.HasPrefix(lx.src[lx.pos:], "/*"):
			end := strings.Index(lx.src[lx.pos+2:], "*/")
			if end < 0 {
				return token{}, fmt.Errorf("unterminated comment at offset %d", lx.pos)
			}
			lx.pos += end + 4
		case strings.HasPrefix(lx.src[lx.pos:], "?>"):
			// A closing tag terminates the statement.
			start := lx.pos
			lx.pos += 2
			lx.inPHP = false
			return token{kind: tokPunct, text: ";", start: start, end: lx.pos}, nil
		default:
			return lx.lexToken()
		}
	}
}

// skipLineComment stops at the end of line or a closing tag.
func (lx *lexer) skipLineComment() {
	for lx.pos < len(lx.src) {
		if lx.src[lx.pos] == '\n' || strings.HasPrefix(lx.src[lx.pos:], "?>") {
			return
		}
		lx.pos++
	}
}

func (lx *lexer) lexToken() (token, error) {
	start := lx.pos
	c := lx.src[lx.pos]

	switch {
	case c == '$' && lx.pos+1 < len(lx.src) && isIdentStart(lx.src[lx.pos+1]):
		lx.pos++
		for lx.pos < len(lx.src) && isIdentChar(lx.src[lx.pos]) {
			lx.pos++
		}
		return token{kind: tokVariable, text: lx.src[start+1 : lx.pos], start: start, end: lx.pos}, nil

	case c == '\'':
		return lx.lexSingleQuoted()

	case c == '"':
		return lx.lexDoubleQuoted()

	case strings.HasPrefix(lx.src[lx.pos:], "<<<"):
		return lx.lexHeredoc()

	case c >= '0' && c <= '9':
		for lx.pos < len(lx.src) && (isIdentChar(lx.src[lx.pos]) || lx.src[lx.pos] == '.') {
			lx.pos++
		}
		return token{kind: tokNumber, text: lx.src[start:lx.pos], start: start, end: lx.pos}, nil

	case isIdentStart(c) || c == '\\':
		for lx.pos < len(lx.src) && (isIdentChar(lx.src[lx.pos]) || lx.src[lx.pos] == '\\') {
			lx.pos++
		}
		return token{kind: tokIdent, text: lx.src[start:lx.pos], start: start, end: lx.pos}, nil
	}

	for _, p := range multiCharPunct {
		if strings.HasPrefix(lx.src[lx.pos:], p) {
			lx.pos += len(p)
			return token{kind: tokPunct, text: p, start: start, end: lx.pos}, nil
		}
	}
	lx.pos++
	return token{kind: tokPunct, text: lx.src[start:lx.pos], start: start, end: lx.pos}, nil
}

func (lx *lexer) lexSingleQuoted() (token, error) {
	start := lx.pos
	lx.pos++
	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\' && lx.pos+1 < len(lx.src) && (lx.src[lx.pos+1] == '\'' || lx.src[lx.pos+1] == '\\'):
			b.WriteByte(lx.src[lx.pos+1])
			lx.pos += 2
		case c == '\'':
			lx.pos++
			return token{kind: tokString, text: lx.src[start:lx.pos], value: b.String(), start: start, end: lx.pos}, nil
		default:
			b.WriteByte(c)
			lx.pos++
		}
	}
	return token{}, fmt.Errorf("unterminated string at offset %d", start)
}

var doubleQuotedEscapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', 'v': '\v', 'f': '\f', 'e': 0x1b,
	'\\': '\\', '$': '$', '"': '"', '0': 0,
}

// lexDoubleQuoted decodes simple escapes; interpolated variables are kept verbatim.
func (lx *lexer) lexDoubleQuoted() (token, error) {
	start := lx.pos
	lx.pos++
	var b strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\' && lx.pos+1 < len(lx.src):
			if r, ok := doubleQuotedEscapes[lx.src[lx.pos+1]]; ok {
				b.WriteByte(r)
			} else {
				b.WriteString(lx.src[lx.pos : lx.pos+2])
			}
			lx.pos += 2
		case c == '"':
			lx.pos++
			return token{kind: tokString, text: lx.src[start:lx.pos], value: b.String(), start: start, end: lx.pos}, nil
		default:
			b.WriteByte(c)
			lx.pos++
		}
	}
	return token{}, fmt.Errorf("unterminated string at offset %d", start)
}

// lexHeredoc reads <<<ID ... ID and <<<'ID' ... ID as a single string token.
func (lx *lexer) lexHeredoc() (token, error) {
	start := lx.pos
	lx.pos += 3
	for lx.pos < len(lx.src) && (lx.src[lx.pos] == ' ' || lx.src[lx.pos] == '\t') {
		lx.pos++
	}

	quote := byte(0)
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == '\'' || lx.src[lx.pos] == '"') {
		quote = lx.src[lx.pos]
		lx.pos++
	}
	idStart := lx.pos
	for lx.pos < len(lx.src) && isIdentChar(lx.src[lx.pos]) {
		lx.pos++
	}
	id := lx.src[idStart:lx.pos]
	if id == "" {
		return token{}, fmt.Errorf("invalid heredoc at offset %d", start)
	}
	if quote != 0 {
		if lx.pos >= len(lx.src) || lx.src[lx.pos] != quote {
			return token{}, fmt.Errorf("invalid heredoc at offset %d", start)
		}
		lx.pos++
	}

	nl := strings.IndexByte(lx.src[lx.pos:], '\n')
	if nl < 0 {
		return token{}, fmt.Errorf("unterminated heredoc at offset %d", start)
	}
	bodyStart := lx.pos + nl + 1

	for lineStart := bodyStart; lineStart <= len(lx.src); {
		lineEnd := strings.IndexByte(lx.src[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(lx.src)
		} else {
			lineEnd += lineStart
		}
		line := strings.TrimLeft(lx.src[lineStart:lineEnd], " \t")
		if strings.HasPrefix(line, id) && (len(line) == len(id) || !isIdentChar(line[len(id)])) {
			closeAt := lineEnd - len(line) + len(id)
			body := ""
			if lineStart > bodyStart {
				body = lx.src[bodyStart : lineStart-1]
			}
			lx.pos = closeAt
			return token{kind: tokString, text: lx.src[start:closeAt], value: body, start: start, end: closeAt}, nil
		}
		if lineEnd == len(lx.src) {
			break
		}
		lineStart = lineEnd + 1
	}
	return token{}, fmt.Errorf("unterminated heredoc at offset %d", start)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
