package annotations

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// JavaLexer tokenizes Java source for the participle grammars
var JavaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*[\s\S]*?\*/`},
	{Name: "TextBlock", Pattern: `"""[\s\S]*?"""`},
	{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`},
	{Name: "Char", Pattern: `'(\\.|[^'\\\n])+'`},
	{Name: "Number", Pattern: `(0[xXbB][0-9a-fA-F_]+|[0-9][0-9_]*(\.[0-9][0-9_]*)?([eE][+-]?[0-9]+)?)[lLfFdD]?`},
	{Name: "Ident", Pattern: `[\p{L}_$][\p{L}\p{N}_$]*`},
	{Name: "Punct", Pattern: `\.\.\.|::|->|[-+*/%&|^!~?:;,.(){}\[\]<>=@#\\]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// ArgumentList is the grammar for the text between an annotation's parentheses
type ArgumentList struct {
	Pairs []*ElementPair `parser:"( @@ ( ',' @@ )* )? ','?"`
}

// ElementPair is 'name = value' or a bare positional value
type ElementPair struct {
	Key   string        `parser:"( @Ident '=' )?"`
	Value *ElementValue `parser:"@@"`
}

// ElementValue is an array initializer or a '+'-joined expression
type ElementValue struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Array *ArrayValue `parser:"  @@"`
	Terms []*Operand  `parser:"| @@ ( '+' @@ )*"`
}

// ArrayValue is '{ a, b }'
type ArrayValue struct {
	Open  string          `parser:"@'{'"`
	Items []*ElementValue `parser:"( @@ ( ',' @@ )* )? ','? '}'"`
}

// Operand is one term of an element expression
type Operand struct {
	String *string       `parser:"  @(String | TextBlock)"`
	Char   *string       `parser:"| @Char"`
	Number *string       `parser:"| @('-'? Number)"`
	Nested *NestedRef    `parser:"| '@' @@"`
	Ref    []string      `parser:"| @Ident ( '.' @Ident )*"`
	Group  *ElementValue `parser:"| '(' @@ ')'"`
}

// NestedRef is an annotation used as an element value
type NestedRef struct {
	Name []string      `parser:"@Ident ( '.' @Ident )*"`
	Args *ArgumentList `parser:"( '(' @@ ')' )?"`
}

// ParticipleParser parses annotation argument lists with alecthomas/participle
type ParticipleParser struct {
	parser *participle.Parser[ArgumentList]
}

// NewParticipleParser creates a new argument parser
func NewParticipleParser() *ParticipleParser {
	return &ParticipleParser{
		parser: participle.MustBuild[ArgumentList](
			participle.Lexer(JavaLexer),
			participle.Elide("Whitespace", "Comment"),
			participle.UseLookahead(4),
		),
	}
}

var defaultArgumentParser = NewParticipleParser()

// Parse parses an argument list
func (p *ParticipleParser) Parse(args string) (Arguments, error) {
	list, err := p.parser.ParseString("", args)
	if err != nil {
		return Arguments{}, err
	}
	return argumentsFromList(list, args), nil
}

// ParseArguments parses the text between an annotation's parentheses into
// positional and named values. Input the grammar rejects is split lexically.
func ParseArguments(args string) Arguments {
	if strings.TrimSpace(args) == "" {
		return Arguments{Named: map[string]Value{}}
	}
	if parsed, err := defaultArgumentParser.Parse(args); err == nil {
		return parsed
	}
	return splitArguments(args)
}

func argumentsFromList(list *ArgumentList, source string) Arguments {
	out := Arguments{Named: map[string]Value{}}
	if list == nil {
		return out
	}
	for _, pair := range list.Pairs {
		value := convertValue(pair.Value, source)
		if pair.Key != "" {
			out.Named[pair.Key] = value
			continue
		}
		out.Positional = append(out.Positional, value)
	}
	return out
}

func convertValue(v *ElementValue, source string) Value {
	if v == nil {
		return Value{}
	}
	value := Value{Raw: rawText(v, source)}

	if v.Array != nil {
		value.Quoted = len(v.Array.Items) > 0
		for _, item := range v.Array.Items {
			converted := convertValue(item, source)
			value.Elements = append(value.Elements, converted.First())
			value.Quoted = value.Quoted && converted.Quoted
		}
		return value
	}

	var joined strings.Builder
	quoted := len(v.Terms) > 0
	for _, term := range v.Terms {
		switch {
		case term.String != nil:
			joined.WriteString(Unquote(*term.String))
		case term.Group != nil:
			inner := convertValue(term.Group, source)
			quoted = quoted && inner.Quoted
			joined.WriteString(inner.First())
		default:
			quoted = false
		}
	}
	if quoted {
		value.Elements = []string{joined.String()}
		value.Quoted = true
		return value
	}
	if len(v.Terms) == 1 && v.Terms[0].Char != nil {
		value.Elements = []string{Unquote(*v.Terms[0].Char)}
		return value
	}
	value.Elements = []string{value.Raw}
	return value
}

func rawText(v *ElementValue, source string) string {
	start, end := v.Pos.Offset, v.EndPos.Offset
	if start < 0 || end > len(source) || start >= end {
		return ""
	}
	return NormalizeWhitespace(source[start:end])
}

var namedArgPattern = regexp.MustCompile(`^([\p{L}_$][\p{L}\p{N}_$]*)\s*=([^=][\s\S]*)$`)

// splitArguments is the lexical fallback for argument lists the grammar rejects
func splitArguments(args string) Arguments {
	out := Arguments{Named: map[string]Value{}}
	for _, part := range SplitTopLevel(args, ',') {
		if part == "" {
			continue
		}
		if m := namedArgPattern.FindStringSubmatch(part); m != nil {
			out.Named[m[1]] = lexicalValue(strings.TrimSpace(m[2]))
			continue
		}
		out.Positional = append(out.Positional, lexicalValue(part))
	}
	return out
}

func lexicalValue(raw string) Value {
	value := Value{Raw: NormalizeWhitespace(raw)}
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		items := SplitTopLevel(raw[1:len(raw)-1], ',')
		value.Quoted = len(items) > 0
		for _, item := range items {
			value.Elements = append(value.Elements, Unquote(item))
			value.Quoted = value.Quoted && IsStringLiteral(item)
		}
		return value
	}
	if IsStringLiteral(raw) {
		value.Elements = []string{Unquote(raw)}
		value.Quoted = true
		return value
	}
	value.Elements = []string{value.Raw}
	return value
}
