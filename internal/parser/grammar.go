package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/contractscan/internal/annotations"
)

// The grammar covers the declaration structure of a Java compilation unit.
// Method bodies, initializers and enum or annotation-type bodies are kept as
// balanced token blocks and never interpreted.

type compilationUnit struct {
	Package *packageDecl  `parser:"@@?"`
	Imports []*importDecl `parser:"@@*"`
	Types   []*typeDecl   `parser:"( @@ | ';' )*"`
}

type packageDecl struct {
	Name []string `parser:"'package' @Ident ( '.' @Ident )* ';'"`
}

type importDecl struct {
	Static   bool     `parser:"'import' @'static'?"`
	Path     []string `parser:"@Ident ( '.' @Ident )*"`
	Wildcard bool     `parser:"( '.' @'*' )? ';'"`
}

type typeDecl struct {
	Pos lexer.Position

	Annotations []*annotationUse `parser:"@@*"`
	Modifiers   []string         `parser:"@( 'public' | 'protected' | 'private' | 'static' | 'abstract' | 'final' | 'sealed' | 'strictfp' | 'non' '-' 'sealed' )*"`
	Spec        *typeSpec        `parser:"@@"`
}

type typeSpec struct {
	Opaque *opaqueTypeSpec `parser:"  @@"`
	Class  *classSpec      `parser:"| @@"`
}

// classSpec is a class, interface or record declaration
type classSpec struct {
	Pos lexer.Position

	Kind       string        `parser:"@( 'class' | 'interface' | 'record' )"`
	Name       string        `parser:"@Ident"`
	TypeParams *typeArgs     `parser:"@@?"`
	Components *formalParams `parser:"@@?"`
	Clauses    []string      `parser:"( @~'{' )*"`
	Body       *classBody    `parser:"@@"`
}

// opaqueTypeSpec is an enum or annotation type whose body is not needed
type opaqueTypeSpec struct {
	Kind string   `parser:"@( 'enum' | '@' 'interface' )"`
	Name string   `parser:"@Ident"`
	Rest []string `parser:"( @~'{' )*"`
	Body *block   `parser:"@@"`
}

type classBody struct {
	Members []*member `parser:"'{' @@* '}'"`
}

type member struct {
	Empty       bool        `parser:"  @';'"`
	Initializer *block      `parser:"| 'static'? @@"`
	Decl        *memberDecl `parser:"| @@"`
}

type memberDecl struct {
	Pos lexer.Position

	Annotations []*annotationUse `parser:"@@*"`
	Modifiers   []string         `parser:"@( 'public' | 'protected' | 'private' | 'static' | 'abstract' | 'final' | 'default' | 'synchronized' | 'native' | 'transient' | 'volatile' | 'strictfp' | 'sealed' | 'non' '-' 'sealed' )*"`
	TypeParams  *typeArgs        `parser:"@@?"`

	Type        *typeSpec        `parser:"(  @@"`
	Constructor *constructorDecl `parser:" | @@"`
	Compact     *compactCtor     `parser:" | @@"`
	Method      *methodOrField   `parser:" | @@ )"`
}

type constructorDecl struct {
	Name   string        `parser:"@Ident (?= '(')"`
	Params *formalParams `parser:"@@"`
	Throws []string      `parser:"( 'throws' ( @~( '{' | ';' ) )+ )?"`
	Body   *block        `parser:"@@"`
}

// compactCtor is a record's canonical constructor without a parameter list
type compactCtor struct {
	Name string `parser:"@Ident (?= '{')"`
	Body *block `parser:"@@"`
}

type methodOrField struct {
	Type   *javaType   `parser:"@@"`
	Name   string      `parser:"@Ident"`
	Method *methodRest `parser:"(  @@"`
	Field  *fieldRest  `parser:" | @@ )"`
}

type methodRest struct {
	Params  *formalParams `parser:"@@"`
	Dims    []string      `parser:"( @'[' ']' )*"`
	Throws  []string      `parser:"( 'throws' ( @~( '{' | ';' ) )+ )?"`
	Body    *block        `parser:"(  @@"`
	Default []*fieldItem  `parser:" | ( 'default' @@+ )? ';' )"`
}

// fieldRest is everything after a field name up to the terminating ';',
// further declarators included
type fieldRest struct {
	Items []*fieldItem `parser:"@@* ';'"`
}

type fieldItem struct {
	Block *block `parser:"  @@"`
	Token string `parser:"| @~( ';' | '{' | '}' )"`
}

type formalParams struct {
	Params []*formalParam `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
}

type formalParam struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Modifiers []*paramModifier `parser:"@@*"`
	Type      *javaType        `parser:"@@"`
	Varargs   bool             `parser:"@'...'?"`
	Name      string           `parser:"@Ident"`
	Dims      []string         `parser:"( @'[' ']' )*"`
}

type paramModifier struct {
	Annotation *annotationUse `parser:"  @@"`
	Final      bool           `parser:"| @'final'"`
}

type annotationUse struct {
	Pos lexer.Position

	Name []string                  `parser:"'@' (?! 'interface') @Ident ( '.' @Ident )*"`
	Args *annotations.ArgumentList `parser:"( '(' @@? ')' )?"`
}

type javaType struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Annotations []*annotationUse `parser:"@@*"`
	Name        []string         `parser:"@Ident ( '.' @Ident )*"`
	Args        *typeArgs        `parser:"@@?"`
	Dims        []string         `parser:"( @'[' ']' )*"`
}

type typeArgs struct {
	Items []*typeArgItem `parser:"'<' @@* '>'"`
}

type typeArgItem struct {
	Nested *typeArgs `parser:"  @@"`
	Token  string    `parser:"| @~( '<' | '>' )"`
}

type block struct {
	Items []*blockItem `parser:"'{' @@* '}'"`
}

type blockItem struct {
	Nested *block `parser:"  @@"`
	Token  string `parser:"| @~( '{' | '}' )"`
}

func newJavaParser() *participle.Parser[compilationUnit] {
	return participle.MustBuild[compilationUnit](
		participle.Lexer(annotations.JavaLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(8),
	)
}
