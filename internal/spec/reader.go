package spec

// reader turns a flat token stream into the untyped value tree defined
// in value.go. It has no notion of Table/field/relationship semantics;
// that conversion happens in parser.go.
type reader struct {
	lx   *lexer
	peek *token
}

func newReader(src string) *reader {
	return &reader{lx: newLexer(src)}
}

func (r *reader) advance() (token, error) {
	if r.peek != nil {
		t := *r.peek
		r.peek = nil
		return t, nil
	}
	return r.lx.next()
}

func (r *reader) peekTok() (token, error) {
	if r.peek == nil {
		t, err := r.lx.next()
		if err != nil {
			return token{}, err
		}
		r.peek = &t
	}
	return *r.peek, nil
}

// readValue reads exactly one value from the stream.
func (r *reader) readValue() (value, error) {
	t, err := r.advance()
	if err != nil {
		return value{}, err
	}
	switch t.kind {
	case tokEOF:
		return value{}, invalidf("unexpected end of input")
	case tokLParen:
		return r.readSeq(tokRParen, kindList, t.line)
	case tokLBracket:
		return r.readSeq(tokRBracket, kindVec, t.line)
	case tokLBrace:
		return r.readMap(t.line)
	case tokRParen, tokRBracket, tokRBrace:
		return value{}, invalidf("line %d: unexpected %q", t.line, t.text)
	case tokString:
		return value{kind: kindStr, text: t.text, line: t.line}, nil
	case tokSymbol:
		return value{kind: kindSym, text: t.text, line: t.line}, nil
	case tokKeyword:
		return value{kind: kindKey, text: t.text, line: t.line}, nil
	default:
		return value{}, invalidf("line %d: unrecognized token %q", t.line, t.text)
	}
}

func (r *reader) readSeq(closing tokenKind, kind valueKind, line int) (value, error) {
	var items []value
	for {
		t, err := r.peekTok()
		if err != nil {
			return value{}, err
		}
		if t.kind == closing {
			r.advance()
			return value{kind: kind, items: items, line: line}, nil
		}
		if t.kind == tokEOF {
			return value{}, invalidf("line %d: unterminated form", line)
		}
		v, err := r.readValue()
		if err != nil {
			return value{}, err
		}
		items = append(items, v)
	}
}

// readMap reads a brace-delimited form as an ordered sequence of key/value
// pairs; a trailing unpaired key is an error.
func (r *reader) readMap(line int) (value, error) {
	var pairs [][2]value
	for {
		t, err := r.peekTok()
		if err != nil {
			return value{}, err
		}
		if t.kind == tokRBrace {
			r.advance()
			return value{kind: kindMap, pairs: pairs, line: line}, nil
		}
		if t.kind == tokEOF {
			return value{}, invalidf("line %d: unterminated map", line)
		}
		k, err := r.readValue()
		if err != nil {
			return value{}, err
		}
		t, err = r.peekTok()
		if err != nil {
			return value{}, err
		}
		if t.kind == tokRBrace || t.kind == tokEOF {
			return value{}, invalidf("line %d: map has a key %v with no value", line, k)
		}
		vv, err := r.readValue()
		if err != nil {
			return value{}, err
		}
		pairs = append(pairs, [2]value{k, vv})
	}
}

// readAll reads every top-level form until EOF.
func (r *reader) readAll() ([]value, error) {
	var vs []value
	for {
		t, err := r.peekTok()
		if err != nil {
			return nil, err
		}
		if t.kind == tokEOF {
			return vs, nil
		}
		v, err := r.readValue()
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
}
