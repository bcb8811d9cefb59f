package selector

import (
	"fmt"
	"strings"
)

// parser is a small hand-rolled recursive-descent parser over the
// already-interpolated selector text the evaluator hands it (§4.4
// "Parse. From a string produced by interpolation"). It does not scan
// at the token level the way internal/scanner does: by the time a
// selector reaches here, interpolation has already been flattened to
// plain text, so a simple rune scanner over the selector grammar
// (much smaller than the full value grammar) is sufficient.
type parser struct {
	src        string
	pos        int
	allowParent bool
}

// ParseOptions controls selector-parse legality, mirroring "accepts `&`
// only when the parser is told parent references are legal" (§4.1).
type ParseOptions struct {
	AllowParent bool
}

// Parse parses src as a selector list.
func Parse(src string, opts ParseOptions) (*List, error) {
	p := &parser{src: strings.TrimSpace(src), allowParent: opts.AllowParent}
	list, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("selector: unexpected trailing input %q", p.src[p.pos:])
	}
	return list, nil
}

func (p *parser) parseList() (*List, error) {
	var list List
	for {
		p.skipSpace()
		c, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		list.Complex = append(list.Complex, c)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return &list, nil
}

func (p *parser) parseComplex() (Complex, error) {
	var complex Complex
	first := true
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.peek() == ',' {
			break
		}
		comb := Descendant
		if !first {
			switch p.peek() {
			case '>':
				comb = Child
				p.pos++
				p.skipSpace()
			case '+':
				comb = NextSibling
				p.pos++
				p.skipSpace()
			case '~':
				comb = SubsequentSibling
				p.pos++
				p.skipSpace()
			}
		} else if p.peek() == '>' || p.peek() == '+' || p.peek() == '~' {
			return Complex{}, fmt.Errorf("selector: bogus leading combinator %q", p.src)
		}
		if p.pos >= len(p.src) || p.peek() == ',' {
			if !first {
				return Complex{}, fmt.Errorf("selector: bogus trailing combinator %q", p.src)
			}
			break
		}
		compound, err := p.parseCompound()
		if err != nil {
			return Complex{}, err
		}
		complex.Components = append(complex.Components, CompoundCombinator{Combinator: comb, Compound: compound})
		first = false
	}
	if len(complex.Components) == 0 {
		return Complex{}, fmt.Errorf("selector: empty complex selector")
	}
	return complex, nil
}

func (p *parser) parseCompound() (Compound, error) {
	var compound Compound
	sawAny := false
	for p.pos < len(p.src) {
		c := p.peek()
		switch {
		case c == '&':
			if !p.allowParent {
				return Compound{}, fmt.Errorf("selector: \"&\" is not allowed here")
			}
			p.pos++
			suffix := p.consumeIdentTail()
			compound.Simples = append(compound.Simples, Parent{Suffix: suffix})
			sawAny = true
		case c == '*':
			p.pos++
			compound.Simples = append(compound.Simples, Type{Name: "*"})
			sawAny = true
		case c == '#':
			p.pos++
			name, err := p.parseIdent()
			if err != nil {
				return Compound{}, err
			}
			compound.Simples = append(compound.Simples, ID{Name: name})
			sawAny = true
		case c == '.':
			p.pos++
			name, err := p.parseIdent()
			if err != nil {
				return Compound{}, err
			}
			compound.Simples = append(compound.Simples, Class{Name: name})
			sawAny = true
		case c == '%':
			p.pos++
			name, err := p.parseIdent()
			if err != nil {
				return Compound{}, err
			}
			compound.Simples = append(compound.Simples, Placeholder{Name: name})
			sawAny = true
		case c == '[':
			attr, err := p.parseAttribute()
			if err != nil {
				return Compound{}, err
			}
			compound.Simples = append(compound.Simples, attr)
			sawAny = true
		case c == ':':
			pseudo, err := p.parsePseudo()
			if err != nil {
				return Compound{}, err
			}
			compound.Simples = append(compound.Simples, pseudo)
			sawAny = true
		case isNameStart(c):
			name, err := p.parseIdent()
			if err != nil {
				return Compound{}, err
			}
			ns := ""
			if p.peek() == '|' && p.peekAt(1) != '|' {
				p.pos++
				ns = name
				name, err = p.parseIdent()
				if err != nil {
					return Compound{}, err
				}
			}
			compound.Simples = append(compound.Simples, Type{Namespace: ns, Name: name})
			sawAny = true
		default:
			if sawAny {
				return compound, nil
			}
			return Compound{}, fmt.Errorf("selector: expected simple selector, got %q", p.src[p.pos:])
		}
	}
	if !sawAny {
		return Compound{}, fmt.Errorf("selector: expected simple selector")
	}
	return compound, nil
}

func (p *parser) parseAttribute() (Attribute, error) {
	p.pos++ // '['
	p.skipSpace()
	ns := ""
	name, err := p.parseIdent()
	if err != nil {
		return Attribute{}, err
	}
	if p.peek() == '|' && p.peekAt(1) != '=' {
		p.pos++
		ns = name
		name, err = p.parseIdent()
		if err != nil {
			return Attribute{}, err
		}
	}
	p.skipSpace()
	attr := Attribute{Namespace: ns, Name: name}
	if p.peek() == ']' {
		p.pos++
		return attr, nil
	}
	ops := []string{"~=", "|=", "^=", "$=", "*=", "="}
	matched := ""
	for _, op := range ops {
		if strings.HasPrefix(p.src[p.pos:], op) {
			matched = op
			break
		}
	}
	if matched == "" {
		return Attribute{}, fmt.Errorf("selector: expected attribute operator")
	}
	attr.Op = matched
	p.pos += len(matched)
	p.skipSpace()
	if p.peek() == '"' || p.peek() == '\'' {
		val, err := p.parseQuoted()
		if err != nil {
			return Attribute{}, err
		}
		attr.Value, attr.Quoted = val, true
	} else {
		val, err := p.parseIdent()
		if err != nil {
			return Attribute{}, err
		}
		attr.Value = val
	}
	p.skipSpace()
	if p.peek() == 'i' || p.peek() == 's' || p.peek() == 'I' || p.peek() == 'S' {
		attr.Flags = string(p.peek())
		p.pos++
		p.skipSpace()
	}
	if p.peek() != ']' {
		return Attribute{}, fmt.Errorf("selector: expected ']'")
	}
	p.pos++
	return attr, nil
}

func (p *parser) parsePseudo() (Pseudo, error) {
	p.pos++ // first ':'
	element := false
	if p.peek() == ':' {
		element = true
		p.pos++
	}
	name, err := p.parseIdent()
	if err != nil {
		return Pseudo{}, err
	}
	pseudo := Pseudo{Element: element, Name: name}
	if p.peek() != '(' {
		return pseudo, nil
	}
	p.pos++
	depth := 1
	start := p.pos
	for p.pos < len(p.src) && depth > 0 {
		switch p.src[p.pos] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				goto done
			}
		}
		p.pos++
	}
done:
	arg := p.src[start:p.pos]
	p.pos++ // ')'
	if isSelectorArgPseudo(strings.ToLower(name)) {
		nested, err := Parse(arg, ParseOptions{AllowParent: p.allowParent})
		if err != nil {
			return Pseudo{}, fmt.Errorf("selector: invalid argument to :%s(): %w", name, err)
		}
		pseudo.Selectors = nested
	} else {
		pseudo.Argument = strings.TrimSpace(arg)
	}
	return pseudo, nil
}

func isSelectorArgPseudo(name string) bool {
	switch name {
	case "not", "is", "matches", "where", "has", "current", "any":
		return true
	}
	return false
}

func (p *parser) parseQuoted() (string, error) {
	q := p.src[p.pos]
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != q {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", fmt.Errorf("selector: unterminated quoted string")
	}
	s := p.src[start:p.pos]
	p.pos++
	return s, nil
}

func (p *parser) parseIdent() (string, error) {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	if p.pos >= len(p.src) || !isNameStart(p.src[p.pos]) {
		return "", fmt.Errorf("selector: expected identifier, got %q", p.src[p.pos:])
	}
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) consumeIdentTail() string {
	start := p.pos
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(n int) byte {
	if p.pos+n >= len(p.src) {
		return 0
	}
	return p.src[p.pos+n]
}

func isNameStart(c byte) bool {
	return c == '_' || c == '\\' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-'
}
