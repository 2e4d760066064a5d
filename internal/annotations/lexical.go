package annotations

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}', '<': '>'}

// MatchingParen returns the index of the bracket closing the one at open,
// skipping string and char literals. It returns -1 when s[open] is not an
// opening bracket or the bracket is never closed.
func MatchingParen(s string, open int) int {
	if open < 0 || open >= len(s) {
		return -1
	}
	opener := s[open]
	closer, ok := closers[opener]
	if !ok {
		return -1
	}

	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"' || c == '\'':
			i = skipLiteral(s, i) - 1
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitTopLevel splits s at every sep that is not nested inside brackets,
// generics or literals. Segments are trimmed; an all-blank input yields nil.
func SplitTopLevel(s string, sep byte) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			i = skipLiteral(s, i) - 1
		case c == '(' || c == '[' || c == '{' || c == '<':
			depth++
		case c == ')' || c == ']' || c == '}' || c == '>':
			if c == '>' && i > 0 && s[i-1] == '-' {
				continue
			}
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// skipLiteral returns the index just past the literal starting at s[i]
func skipLiteral(s string, i int) int {
	quote := s[i]
	if quote == '"' && strings.HasPrefix(s[i:], `"""`) {
		if end := strings.Index(s[i+3:], `"""`); end >= 0 {
			return i + 3 + end + 3
		}
		return len(s)
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(s)
}

// BlankComments replaces the contents of comments with spaces, keeping
// newlines so offsets and line numbers stay valid.
func BlankComments(text string) string {
	if !strings.Contains(text, "//") && !strings.Contains(text, "/*") {
		return text
	}

	out := []byte(text)
	for i := 0; i < len(out); i++ {
		switch {
		case out[i] == '"' || out[i] == '\'':
			i = skipLiteral(text, i) - 1
		case out[i] == '/' && i+1 < len(out) && out[i+1] == '/':
			for ; i < len(out) && out[i] != '\n'; i++ {
				out[i] = ' '
			}
		case out[i] == '/' && i+1 < len(out) && out[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			stop := len(out)
			if end >= 0 {
				stop = i + 2 + end + 2
			}
			for ; i < stop; i++ {
				if out[i] != '\n' {
					out[i] = ' '
				}
			}
			i--
		}
	}
	return string(out)
}

// ReadTypeToken reads one type expression from the start of s, including
// qualified names, balanced generics, array brackets and varargs. It returns
// the type with internal whitespace removed and the unread remainder.
func ReadTypeToken(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isIdentRune(r) && r != '.' {
			break
		}
		if r == '.' && strings.HasPrefix(s[i:], "...") {
			break
		}
		i += size
	}
	if i == 0 {
		return "", s
	}

	j := skipSpaces(s, i)
	if j < len(s) && s[j] == '<' {
		end := MatchingParen(s, j)
		if end < 0 {
			return compactType(s), ""
		}
		i = end + 1
	}

	for {
		j = skipSpaces(s, i)
		switch {
		case strings.HasPrefix(s[j:], "[") && strings.HasPrefix(strings.TrimLeftFunc(s[j+1:], unicode.IsSpace), "]"):
			i = strings.Index(s[j:], "]") + j + 1
			continue
		case strings.HasPrefix(s[j:], "..."):
			i = j + 3
		}
		break
	}

	return compactType(s[:i]), s[i:]
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

// compactType removes whitespace, keeping a space after '?' wildcards bounds
func compactType(t string) string {
	fields := strings.Fields(t)
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			prev := fields[i-1]
			if f == "extends" || f == "super" || strings.HasSuffix(prev, "extends") || strings.HasSuffix(prev, "super") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(f)
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsIdentifier reports whether s is a single Java identifier
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r) || (i == 0 && unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// StripGenerics drops everything from the first '<'
func StripGenerics(t string) string {
	if idx := strings.IndexByte(t, '<'); idx >= 0 {
		t = t[:idx]
	}
	return strings.TrimSpace(t)
}

// SimpleName drops the package qualifier of a possibly generic type name
func SimpleName(t string) string {
	head, tail := t, ""
	if idx := strings.IndexByte(t, '<'); idx >= 0 {
		head, tail = t[:idx], t[idx:]
	}
	if idx := strings.LastIndexByte(head, '.'); idx >= 0 {
		head = head[idx+1:]
	}
	return head + tail
}

// Qualifier returns the package part of a qualified name, or ""
func Qualifier(t string) string {
	base := StripGenerics(t)
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		return base[:idx]
	}
	return ""
}

// TypeArguments returns the top-level generic arguments of t
func TypeArguments(t string) []string {
	open := strings.IndexByte(t, '<')
	if open < 0 {
		return nil
	}
	end := MatchingParen(t, open)
	if end < 0 {
		return nil
	}
	return SplitTopLevel(t[open+1:end], ',')
}

// UnwrapGeneric replaces a wrapper type such as ResponseEntity<T> by T. Only
// one layer is removed. Wildcards unwrap to their bound.
func UnwrapGeneric(t string, wrappers []string) string {
	name := SimpleName(StripGenerics(t))
	for _, w := range wrappers {
		if name != w {
			continue
		}
		args := TypeArguments(t)
		if len(args) == 0 {
			return t
		}
		inner := strings.TrimSpace(args[0])
		for _, prefix := range []string{"? extends ", "? super "} {
			if strings.HasPrefix(inner, prefix) {
				inner = strings.TrimSpace(strings.TrimPrefix(inner, prefix))
			}
		}
		return inner
	}
	return t
}

// LineAt returns the 1-based line containing offset
func LineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(text[:offset], "\n") + 1
}

// NormalizeWhitespace collapses runs of whitespace outside literals to one space
func NormalizeWhitespace(s string) string {
	var b strings.Builder
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\'' {
			end := skipLiteral(s, i)
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteString(s[i:end])
			i = end - 1
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteByte(c)
	}
	return b.String()
}

// Unquote decodes a Java string, char or text block literal. Input that is
// not a literal is returned unchanged.
func Unquote(lit string) string {
	switch {
	case len(lit) >= 6 && strings.HasPrefix(lit, `"""`) && strings.HasSuffix(lit, `"""`):
		body := strings.TrimPrefix(lit[3:len(lit)-3], "\n")
		return unescape(body)
	case len(lit) >= 2 && (lit[0] == '"' || lit[0] == '\'') && lit[len(lit)-1] == lit[0]:
		return unescape(lit[1 : len(lit)-1])
	}
	return lit
}

// IsStringLiteral reports whether lit is a double-quoted string or text block
func IsStringLiteral(lit string) bool {
	return len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"'
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 's':
			b.WriteByte(' ')
		case 'u':
			j := i
			for j < len(s) && s[j] == 'u' {
				j++
			}
			if j+4 <= len(s) {
				if code, err := strconv.ParseUint(s[j:j+4], 16, 32); err == nil {
					b.WriteRune(rune(code))
					i = j + 3
					continue
				}
			}
			b.WriteString(`\u`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
