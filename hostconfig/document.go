// Package hostconfig reads and rewrites the host's PHP configuration file.
//
// The document keeps the raw source and the byte spans of every value
// bound to a key of the configuration mapping, so a single key can be
// rewritten while every other byte of the file stays untouched.
package hostconfig

import (
	"fmt"
	"sort"
	"strings"
)

// Mapping identifies which top-level variable holds the configuration.
type Mapping int

const (
	// MappingConfig is the current "$config" array.
	MappingConfig Mapping = iota
	// MappingLegacy is the "$rcmail_config" array used by older hosts.
	MappingLegacy
)

// Variable returns the PHP variable name, without "$".
func (m Mapping) Variable() string {
	if m == MappingLegacy {
		return "rcmail_config"
	}
	return "config"
}

// String returns the variable as written in source.
func (m Mapping) String() string {
	return "$" + m.Variable()
}

// ValueKind classifies a parsed expression.
type ValueKind int

const (
	KindOpaque ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindNull
	KindArray
)

// Value is a parsed right-hand side expression.
type Value struct {
	Kind ValueKind
	// Str holds the decoded string, or the raw source for other kinds.
	Str string
	// Items holds the unkeyed elements of an array literal.
	Items []Value
	// Entries holds the keyed elements of an array literal, in source order.
	Entries []Entry
	Start   int
	End     int
}

// Entry is a keyed array element.
type Entry struct {
	Key   string
	Value Value
}

// Strings returns the value as a list of strings: a string yields itself,
// an array of string literals yields its items. ok is false otherwise.
func (v Value) Strings() (out []string, ok bool) {
	switch v.Kind {
	case KindString:
		return []string{v.Str}, true
	case KindArray:
		if len(v.Entries) > 0 {
			return nil, false
		}
		for _, it := range v.Items {
			if it.Kind != KindString {
				return nil, false
			}
			out = append(out, it.Str)
		}
		return out, true
	}
	return nil, false
}

// span is a source range bound to a key.
type span struct {
	start, end int
}

// mappingState accumulates what the source does to one top-level variable.
type mappingState struct {
	values map[string]Value
	spans  map[string][]span
}

func newMappingState() *mappingState {
	return &mappingState{
		values: make(map[string]Value),
		spans:  make(map[string][]span),
	}
}

// Document is a parsed host configuration file.
type Document struct {
	raw      string
	mapping  Mapping
	mappings map[Mapping]*mappingState
}

// Parse reads a configuration script. The mapping is resolved once:
// "$config" unless it is empty and "$rcmail_config" is not.
func Parse(src []byte) (*Document, error) {
	raw := string(src)
	toks, err := tokenize(raw)
	if err != nil {
		return nil, err
	}

	d := &Document{
		raw: raw,
		mappings: map[Mapping]*mappingState{
			MappingConfig: newMappingState(),
			MappingLegacy: newMappingState(),
		},
	}

	p := &parser{src: raw, toks: toks}
	for p.peek().kind != tokEOF {
		if !p.tryAssignment(d) {
			p.advance()
		}
	}

	if len(d.mappings[MappingConfig].values) == 0 && len(d.mappings[MappingLegacy].values) > 0 {
		d.mapping = MappingLegacy
	}
	return d, nil
}

// Mapping returns the resolved configuration variable.
func (d *Document) Mapping() Mapping {
	return d.mapping
}

// Get returns the effective value of key in the resolved mapping.
func (d *Document) Get(key string) (Value, bool) {
	v, ok := d.mappings[d.mapping].values[key]
	return v, ok
}

// Keys returns the keys set in the resolved mapping, sorted.
func (d *Document) Keys() []string {
	values := d.mappings[d.mapping].values
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bytes returns the original source.
func (d *Document) Bytes() []byte {
	return []byte(d.raw)
}

// Replace returns the source with every expression bound to key in the
// resolved mapping replaced by expr. ok is false if key has no binding.
func (d *Document) Replace(key, expr string) (out []byte, ok bool) {
	spans := d.mappings[d.mapping].spans[key]
	if len(spans) == 0 {
		return nil, false
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(d.raw[last:s.start])
		b.WriteString(expr)
		last = s.end
	}
	b.WriteString(d.raw[last:])
	return []byte(b.String()), true
}

// ListLiteral renders a PHP array literal of string items, e.g. array('larry',).
func ListLiteral(items ...string) string {
	var b strings.Builder
	b.WriteString("array(")
	for _, it := range items {
		b.WriteString(QuoteString(it))
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// QuoteString renders a single-quoted PHP string literal.
func QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() token {
	t := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func mappingOf(name string) (Mapping, bool) {
	switch name {
	case MappingConfig.Variable():
		return MappingConfig, true
	case MappingLegacy.Variable():
		return MappingLegacy, true
	}
	return 0, false
}

// tryAssignment recognizes `$var['key'] = expr` and `$var = array(...)`
// for both configuration variables and records them in d.
func (p *parser) tryAssignment(d *Document) bool {
	t := p.peek()
	if t.kind != tokVariable {
		return false
	}
	m, ok := mappingOf(t.text)
	if !ok {
		return false
	}
	if p.pos > 0 {
		if prev := p.toks[p.pos-1]; prev.is(tokPunct, "->") || prev.is(tokPunct, "::") || prev.is(tokPunct, "$") {
			return false
		}
	}
	state := d.mappings[m]

	// $config['key'] = expr
	if p.peekAt(1).is(tokPunct, "[") && p.peekAt(2).kind == tokString &&
		p.peekAt(3).is(tokPunct, "]") {
		key := p.peekAt(2).value
		if p.peekAt(4).is(tokPunct, "[") {
			// Nested write such as $config['a']['b'] = 1 still makes the key present.
			if _, seen := state.values[key]; !seen {
				state.values[key] = Value{Kind: KindOpaque}
			}
			return false
		}
		if !p.peekAt(4).is(tokPunct, "=") {
			return false
		}
		p.pos += 5
		v := p.parseExpr()
		state.values[key] = v
		state.spans[key] = append(state.spans[key], span{v.Start, v.End})
		return true
	}

	// $config = array(...) or [...]
	if p.peekAt(1).is(tokPunct, "=") {
		p.pos += 2
		v := p.parseExpr()
		if v.Kind != KindArray {
			// Contents are only known at runtime, so nothing set earlier is
			// known to survive.
			state.values = make(map[string]Value)
			state.spans = make(map[string][]span)
			return true
		}
		state.values = make(map[string]Value, len(v.Entries))
		for _, e := range v.Entries {
			state.values[e.Key] = e.Value
			state.spans[e.Key] = append(state.spans[e.Key], span{e.Value.Start, e.Value.End})
		}
		return true
	}

	return false
}

func isTerminator(t token) bool {
	if t.kind == tokEOF {
		return true
	}
	if t.kind != tokPunct {
		return false
	}
	switch t.text {
	case ";", ",", ")", "]", "}", "=>":
		return true
	}
	return false
}

// parseExpr parses up to the next terminator at nesting depth zero.
// Anything that is not a plain literal becomes an opaque value.
func (p *parser) parseExpr() Value {
	startTok := p.peek()
	if isTerminator(startTok) {
		return Value{Kind: KindOpaque, Start: startTok.start, End: startTok.start}
	}

	saved := p.pos
	v, ok := p.parseLiteral()
	if ok && isTerminator(p.peek()) {
		return v
	}
	if !ok {
		p.pos = saved
	}

	end := p.skipBalanced()
	if end < startTok.end {
		end = startTok.end
	}
	return Value{
		Kind:  KindOpaque,
		Str:   p.src[startTok.start:end],
		Start: startTok.start,
		End:   end,
	}
}

// skipBalanced consumes tokens until a terminator at depth zero and
// returns the end offset of the last consumed token.
func (p *parser) skipBalanced() int {
	depth := 0
	end := p.peek().start
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return end
		}
		if depth == 0 && isTerminator(t) {
			return end
		}
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			}
		}
		end = t.end
		p.advance()
	}
}

func (p *parser) parseLiteral() (Value, bool) {
	t := p.peek()
	switch t.kind {
	case tokString:
		p.advance()
		return Value{Kind: KindString, Str: t.value, Start: t.start, End: t.end}, true
	case tokNumber:
		p.advance()
		return Value{Kind: KindNumber, Str: t.text, Start: t.start, End: t.end}, true
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true", "false":
			p.advance()
			return Value{Kind: KindBool, Str: strings.ToLower(t.text), Start: t.start, End: t.end}, true
		case "null":
			p.advance()
			return Value{Kind: KindNull, Str: "null", Start: t.start, End: t.end}, true
		case "array":
			if p.peekAt(1).is(tokPunct, "(") {
				p.advance()
				return p.parseArray(t.start, ")")
			}
		}
	case tokPunct:
		if t.text == "[" {
			return p.parseArray(t.start, "]")
		}
	}
	return Value{}, false
}

// parseArray expects the opening bracket at the current position.
func (p *parser) parseArray(start int, closer string) (Value, bool) {
	p.advance() // opening bracket
	v := Value{Kind: KindArray, Start: start}
	for {
		t := p.peek()
		if t.kind == tokEOF {
			return Value{}, false
		}
		if t.is(tokPunct, closer) {
			p.advance()
			v.End = t.end
			return v, true
		}
		if t.is(tokPunct, ",") {
			p.advance()
			continue
		}

		item := p.parseExpr()
		if item.Start == item.End {
			// Unexpected terminator inside the array.
			return Value{}, false
		}
		if p.peek().is(tokPunct, "=>") {
			p.advance()
			val := p.parseExpr()
			v.Entries = append(v.Entries, Entry{Key: item.Str, Value: val})
			continue
		}
		v.Items = append(v.Items, item)
	}
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return QuoteString(v.Str)
	case KindArray:
		parts := make([]string, 0, len(v.Items)+len(v.Entries))
		for _, it := range v.Items {
			parts = append(parts, it.String())
		}
		for _, e := range v.Entries {
			parts = append(parts, fmt.Sprintf("%s => %s", QuoteString(e.Key), e.Value.String()))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.Str
	}
}
