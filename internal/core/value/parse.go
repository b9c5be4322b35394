package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/zeusync/zeuscore/internal/core/geom"
)

// definitionLexer splits definition text into flat tokens. Quoted strings are
// matched as a whole, so brackets and separators inside quotes never reach
// the reducer as punctuation.
var definitionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Float", Pattern: `(?:[-+]?(?:\d+\.\d*|\.\d+)(?:[eE][-+]?\d+)?|[-+]?\d+[eE][-+]?\d+)`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[{}\[\]():,]`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

type tokKind uint8

const (
	tokString tokKind = iota
	tokFloat
	tokInt
	tokIdent
	tokPunct
)

type token struct {
	kind tokKind
	text string
	pos  lexer.Position
}

func (t token) is(punct string) bool { return t.kind == tokPunct && t.text == punct }

// ctorArity lists the literal constructors and their fixed argument counts
var ctorArity = map[string]int{
	"Vec3": 3,
	"Vec4": 4,
	"Quat": 4,
	"Ang3": 3,
	"Mat3": 9,
	"Mat4": 16,
}

// Parse builds a Value from its textual definition. Empty input yields Null.
// Malformed input returns a *ParseError; Parse never panics on user data.
func Parse(text string) (Value, error) {
	toks, err := tokenize(text)
	if err != nil {
		return Value{}, err
	}
	if len(toks) == 0 {
		return Null(), nil
	}
	return reduce(toks, false)
}

// MustParse is Parse for definitions embedded in source code
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("value: MustParse(%q): %v", text, err))
	}
	return v
}

func tokenize(text string) ([]token, error) {
	lex, err := definitionLexer.LexString("", text)
	if err != nil {
		return nil, lexError(err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, lexError(err)
	}

	symbols := definitionLexer.Symbols()
	kinds := map[lexer.TokenType]tokKind{
		symbols["String"]: tokString,
		symbols["Float"]:  tokFloat,
		symbols["Int"]:    tokInt,
		symbols["Ident"]:  tokIdent,
		symbols["Punct"]:  tokPunct,
	}

	toks := make([]token, 0, len(raw))
	for _, t := range raw {
		kind, ok := kinds[t.Type]
		if !ok {
			// whitespace, comments, EOF
			continue
		}
		toks = append(toks, token{kind: kind, text: t.Value, pos: t.Pos})
	}
	return toks, nil
}

// lexError carries the lexer's own position into a *ParseError
func lexError(err error) *ParseError {
	var le *lexer.Error
	if errors.As(err, &le) {
		return &ParseError{Pos: le.Pos, Err: fmt.Errorf("%w: %s", ErrBadLiteral, le.Msg)}
	}
	return &ParseError{Pos: lexer.Position{Line: 1, Column: 1}, Err: fmt.Errorf("%w: %v", ErrBadLiteral, err)}
}

// reduce turns a token slice into a value. In list mode toks are the contents
// of a {} or [] block and the result is always an array; otherwise exactly
// one value is expected.
func reduce(toks []token, list bool) (Value, error) {
	var (
		root     Value
		haveRoot bool
		items    []Value
		pending  *token
		name     string
		needSep  bool
	)

	attach := func(v Value, at token) error {
		if needSep {
			return errAt(at, ErrUnexpectedToken)
		}
		if pending != nil {
			v = Component(name, v)
			pending = nil
		}
		if list {
			items = append(items, v)
			needSep = true
			return nil
		}
		if haveRoot {
			return errAt(at, ErrUnexpectedToken)
		}
		root, haveRoot = v, true
		return nil
	}

	for i := 0; i < len(toks); {
		t := toks[i]
		var n token
		hasNext := i+1 < len(toks)
		if hasNext {
			n = toks[i+1]
		}

		switch {
		case t.is(","):
			if pending != nil {
				return Value{}, errAt(*pending, ErrMissingValue)
			}
			if !list || !needSep {
				return Value{}, errAt(t, ErrUnexpectedToken)
			}
			needSep = false
			i++

		case (t.kind == tokIdent || t.kind == tokString) && hasNext && n.is(":"):
			if pending != nil {
				return Value{}, errAt(*pending, ErrMissingValue)
			}
			if needSep || (!list && haveRoot) {
				return Value{}, errAt(t, ErrUnexpectedToken)
			}
			fieldName := t.text
			if t.kind == tokString {
				s, err := unquote(t)
				if err != nil {
					return Value{}, err
				}
				fieldName = s
			}
			pending, name = &toks[i], fieldName
			i += 2

		case t.is("{") || t.is("["):
			end, err := matchClose(toks, i)
			if err != nil {
				return Value{}, err
			}
			inner, err := reduce(toks[i+1:end], true)
			if err != nil {
				return Value{}, err
			}
			if err = attach(inner, t); err != nil {
				return Value{}, err
			}
			i = end + 1

		case t.is("}") || t.is("]"):
			return Value{}, errAt(t, ErrUnbalanced)

		case t.kind == tokPunct:
			return Value{}, errAt(t, ErrUnexpectedToken)

		case t.kind == tokIdent && hasNext && n.is("("):
			v, end, err := reduceCtor(toks, i)
			if err != nil {
				return Value{}, err
			}
			if err = attach(v, t); err != nil {
				return Value{}, err
			}
			i = end

		default:
			v, err := scalar(t)
			if err != nil {
				return Value{}, err
			}
			if err = attach(v, t); err != nil {
				return Value{}, err
			}
			i++
		}
	}

	if pending != nil {
		return Value{}, errAt(*pending, ErrMissingValue)
	}
	if list {
		return Array(items...), nil
	}
	return root, nil
}

// matchClose finds the token closing the block opened at toks[open], keeping
// separate depth counters for braces and brackets.
func matchClose(toks []token, open int) (int, error) {
	var braces, brackets int
	for j := open; j < len(toks); j++ {
		t := toks[j]
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "{":
			braces++
		case "}":
			braces--
		case "[":
			brackets++
		case "]":
			brackets--
		default:
			continue
		}
		if braces < 0 || brackets < 0 {
			return 0, errAt(t, ErrUnbalanced)
		}
		if braces == 0 && brackets == 0 {
			if (toks[open].text == "{") != (t.text == "}") {
				return 0, errAt(t, ErrUnbalanced)
			}
			return j, nil
		}
	}
	return 0, errAt(toks[open], ErrUnbalanced)
}

// reduceCtor reads Name(arg, ...) starting at toks[at] and returns the index
// just past the closing paren.
func reduceCtor(toks []token, at int) (Value, int, error) {
	nameTok := toks[at]
	arity, ok := ctorArity[nameTok.text]
	if !ok {
		return Value{}, 0, &ParseError{Pos: nameTok.pos, Token: nameTok.text, Err: fmt.Errorf("%w: unknown constructor", ErrBadLiteral)}
	}

	args := make([]float32, 0, arity)
	expectNum := true
	for j := at + 2; ; j++ {
		if j >= len(toks) {
			return Value{}, 0, errAt(toks[at+1], ErrUnbalanced)
		}
		t := toks[j]
		switch {
		case t.is(")") && (!expectNum || len(args) == 0):
			if len(args) != arity {
				return Value{}, 0, &ParseError{
					Pos:   nameTok.pos,
					Token: nameTok.text,
					Err:   fmt.Errorf("%w: %s takes %d, got %d", ErrArity, nameTok.text, arity, len(args)),
				}
			}
			return ctorValue(nameTok.text, args), j + 1, nil
		case expectNum && (t.kind == tokInt || t.kind == tokFloat):
			f, err := strconv.ParseFloat(t.text, 32)
			if err != nil {
				return Value{}, 0, errAt(t, ErrBadLiteral)
			}
			args = append(args, float32(f))
			expectNum = false
		case !expectNum && t.is(","):
			expectNum = true
		default:
			return Value{}, 0, errAt(t, ErrUnexpectedToken)
		}
	}
}

func ctorValue(name string, a []float32) Value {
	switch name {
	case "Vec3":
		return Vec3(geom.Vec3{X: a[0], Y: a[1], Z: a[2]})
	case "Vec4":
		return Vec4(geom.Vec4{X: a[0], Y: a[1], Z: a[2], W: a[3]})
	case "Quat":
		return Quat(geom.Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]})
	case "Ang3":
		return Angles(geom.Angles{Yaw: a[0], Pitch: a[1], Roll: a[2]})
	case "Mat3":
		var m geom.Mat3
		copy(m[:], a)
		return Mat3(m)
	default:
		var m geom.Mat4
		copy(m[:], a)
		return Mat4(m)
	}
}

func scalar(t token) (Value, error) {
	switch t.kind {
	case tokInt:
		i, err := strconv.ParseInt(t.text, 10, 64)
		if err != nil {
			return Value{}, errAt(t, ErrBadLiteral)
		}
		return Int(i), nil
	case tokFloat:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return Value{}, errAt(t, ErrBadLiteral)
		}
		return Float(f), nil
	case tokString:
		s, err := unquote(t)
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case tokIdent:
		if t.text == "null" {
			return Null(), nil
		}
		// bare identifiers are string literals
		return String(t.text), nil
	}
	return Value{}, errAt(t, ErrUnexpectedToken)
}

func unquote(t token) (string, error) {
	body := t.text[1 : len(t.text)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		default:
			return "", &ParseError{Pos: t.pos, Token: t.text, Err: fmt.Errorf("%w: unknown escape \\%c", ErrBadLiteral, body[i])}
		}
	}
	return sb.String(), nil
}

func errAt(t token, err error) *ParseError {
	return &ParseError{Pos: t.pos, Token: t.text, Err: err}
}
