package glsl

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	// versionRegex matches `#version N [profile]` and captures the number and profile.
	versionRegex = regexp.MustCompile(`^#\s*version\s+(\d+)(?:\s+(\w+))?$`)

	// versionPrefixRegex recognizes a #version directive, well-formed or not.
	versionPrefixRegex = regexp.MustCompile(`^#\s*version\b`)
)

// reserved are identifiers that can never name a variable or function.
var reserved = map[string]struct{}{
	"struct": {}, "layout": {}, "precision": {}, "if": {}, "else": {}, "for": {}, "while": {},
	"do": {}, "return": {}, "break": {}, "continue": {}, "discard": {}, "switch": {}, "case": {},
	"default": {}, "true": {}, "false": {}, "inout": {},
}

// parser walks the non-directive tokens of one source.
type parser struct {
	toks  []Token
	pos   int
	unit  *Unit
	types map[string]struct{}
}

// Parse checks the global-scope structure of a GLSL source and extracts its version, interface
// variables, struct names and functions.
//
// Parameters:
//   - source: the GLSL source text
//
// Returns:
//   - *Unit: the parsed structure
//   - error: a *SyntaxError describing the first problem found
func Parse(source string) (*Unit, error) {
	toks, err := Scan(source)
	if err != nil {
		return nil, err
	}

	p := &parser{
		unit:  &Unit{Version: 110},
		types: make(map[string]struct{}),
	}
	for i, t := range toks {
		if t.Kind != TokenDirective {
			p.toks = append(p.toks, t)
			continue
		}
		if err := p.directive(t, i == 0); err != nil {
			return nil, err
		}
	}

	for p.pos < len(p.toks) {
		if err := p.global(); err != nil {
			return nil, err
		}
	}
	return p.unit, nil
}

// directive handles #version; every other directive is ignored.
func (p *parser) directive(t Token, first bool) error {
	if !versionPrefixRegex.MatchString(t.Text) {
		return nil
	}
	if !first {
		return &SyntaxError{Line: t.Line, Column: t.Column, Msg: "#version must occur before anything else"}
	}
	m := versionRegex.FindStringSubmatch(t.Text)
	if m == nil {
		return &SyntaxError{Line: t.Line, Column: t.Column, Msg: "invalid #version directive"}
	}
	version, _ := strconv.Atoi(m[1])
	if _, ok := supportedVersions[version]; !ok {
		return &SyntaxError{Line: t.Line, Column: t.Column, Msg: fmt.Sprintf("GLSL %d is not supported", version)}
	}
	profile := m[2]
	es := version == 100 || version == 300 || version == 310 || version == 320
	switch profile {
	case "":
		if es && version != 100 {
			return &SyntaxError{Line: t.Line, Column: t.Column, Msg: fmt.Sprintf("GLSL %d requires the es profile", version)}
		}
	case "es":
		if !es {
			return &SyntaxError{Line: t.Line, Column: t.Column, Msg: fmt.Sprintf("GLSL %d has no es profile", version)}
		}
	case "core", "compatibility":
		if es {
			return &SyntaxError{Line: t.Line, Column: t.Column, Msg: fmt.Sprintf("GLSL ES %d has no %s profile", version, profile)}
		}
	default:
		return &SyntaxError{Line: t.Line, Column: t.Column, Msg: fmt.Sprintf("invalid profile '%s'", profile)}
	}
	p.unit.Version = version
	p.unit.Profile = profile
	return nil
}

// global consumes one global-scope item: a declaration ending in ';' or a construct with a body.
func (p *parser) global() error {
	depth := 0
	assign := false
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind != TokenPunct {
			continue
		}
		switch t.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
			if depth < 0 {
				return unexpected(t)
			}
		case "=":
			if depth == 0 {
				assign = true
			}
		case "{":
			if assign {
				depth++
				continue
			}
			if depth == 0 {
				head := p.toks[p.pos:i]
				p.pos = i + 1
				return p.block(head, t)
			}
			return unexpected(t)
		case "}":
			if assign && depth > 0 {
				depth--
				continue
			}
			return unexpected(t)
		case ";":
			if depth == 0 {
				head := p.toks[p.pos:i]
				p.pos = i + 1
				return p.declaration(head, t)
			}
		}
	}
	return p.eof()
}

// block handles a function definition, a struct definition or an interface block. p.pos is
// just past the opening brace.
func (p *parser) block(head []Token, brace Token) error {
	if len(head) == 0 {
		return unexpected(brace)
	}
	end, err := p.matchBrace()
	if err != nil {
		return err
	}
	body := p.toks[p.pos:end]
	p.pos = end + 1

	if last := head[len(head)-1]; last.Kind == TokenPunct && last.Text == ")" {
		fn, err := p.functionHead(head)
		if err != nil {
			return err
		}
		if err := checkBalanced(body); err != nil {
			return err
		}
		fn.Defined = true
		p.unit.Functions = append(p.unit.Functions, fn)
		return nil
	}

	storage, location, idx, err := p.qualifiers(head)
	if err != nil {
		return err
	}
	rest := head[idx:]

	if len(rest) == 2 && rest[0].Text == "struct" {
		name := rest[1]
		if err := p.checkName(name); err != nil {
			return err
		}
		p.types[name.Text] = struct{}{}
		p.unit.Structs = append(p.unit.Structs, name.Text)
		if err := p.members(body, StorageNone); err != nil {
			return err
		}
		return p.tailDeclarators(storage, name.Text, location)
	}

	if len(rest) == 1 && rest[0].Kind == TokenIdent && storage != StorageNone {
		if err := p.checkName(rest[0]); err != nil {
			return err
		}
		if err := p.members(body, storage); err != nil {
			return err
		}
		return p.tailDeclarators(StorageNone, "", -1)
	}

	if len(rest) > 0 {
		return unexpected(rest[0])
	}
	return unexpected(brace)
}

// declaration handles a ';'-terminated global declaration.
func (p *parser) declaration(head []Token, semi Token) error {
	if len(head) == 0 {
		return nil
	}
	if head[0].Text == "precision" {
		if len(head) != 3 {
			return unexpected(semi)
		}
		if _, ok := builtinTypes[head[2].Text]; !ok {
			return unexpected(head[2])
		}
		return nil
	}

	storage, location, idx, err := p.qualifiers(head)
	if err != nil {
		return err
	}
	if idx == len(head) {
		if idx == 0 {
			return unexpected(semi)
		}
		return nil
	}

	for i := idx; i < len(head) && head[i].Text != "="; i++ {
		if head[i].Kind == TokenPunct && head[i].Text == "(" {
			fn, err := p.functionHead(head)
			if err != nil {
				return err
			}
			p.unit.Functions = append(p.unit.Functions, fn)
			return nil
		}
	}

	vars, err := p.typedDeclarators(head[idx:], semi, storage, location)
	if err != nil {
		return err
	}
	p.unit.Variables = append(p.unit.Variables, vars...)
	return nil
}

// qualifiers consumes leading qualifiers, returning the storage class, the layout location and
// the index of the first token after them.
func (p *parser) qualifiers(toks []Token) (Storage, int, int, error) {
	storage := StorageNone
	location := -1
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.Kind != TokenIdent {
			break
		}
		if t.Text == "layout" {
			if i+1 >= len(toks) || toks[i+1].Text != "(" {
				return 0, 0, 0, &SyntaxError{Line: t.Line, Column: t.Column, Msg: "syntax error, expected '(' after layout"}
			}
			close := matchParen(toks, i+1)
			if close < 0 {
				return 0, 0, 0, unexpected(toks[len(toks)-1])
			}
			loc, err := layoutLocation(toks[i+2 : close])
			if err != nil {
				return 0, 0, 0, err
			}
			if loc >= 0 {
				location = loc
			}
			i = close + 1
			continue
		}
		if s, ok := qualifierStorage[t.Text]; ok {
			if storage != StorageNone && storage != s {
				return 0, 0, 0, &SyntaxError{Line: t.Line, Column: t.Column, Msg: "multiple storage qualifiers"}
			}
			storage = s
			i++
			continue
		}
		if _, ok := plainQualifiers[t.Text]; ok {
			i++
			continue
		}
		break
	}
	return storage, location, i, nil
}

// typedDeclarators parses `type[N] name[M] = init, name2, ...` into variables.
func (p *parser) typedDeclarators(toks []Token, end Token, storage Storage, location int) ([]Variable, error) {
	typ := toks[0]
	if typ.Kind != TokenIdent {
		return nil, unexpected(typ)
	}
	if !p.isType(typ.Text) {
		return nil, &SyntaxError{Line: typ.Line, Column: typ.Column, Msg: fmt.Sprintf("unknown type '%s'", typ.Text)}
	}
	i := 1
	if i < len(toks) && toks[i].Text == "[" {
		close := matchBracket(toks, i)
		if close < 0 {
			return nil, unexpected(end)
		}
		i = close + 1
	}

	var vars []Variable
	for i < len(toks) {
		name := toks[i]
		if err := p.checkName(name); err != nil {
			return nil, err
		}
		vars = append(vars, Variable{Storage: storage, Type: typ.Text, Name: name.Text, Location: location, Line: name.Line})
		location = -1
		i++
		if i < len(toks) && toks[i].Text == "[" {
			close := matchBracket(toks, i)
			if close < 0 {
				return nil, unexpected(end)
			}
			i = close + 1
		}
		if i < len(toks) && toks[i].Text == "=" {
			i = skipInitializer(toks, i+1)
			if i == len(toks) && toks[i-1].Text == "=" {
				return nil, unexpected(end)
			}
		}
		if i == len(toks) {
			break
		}
		if toks[i].Text != "," {
			return nil, unexpected(toks[i])
		}
		i++
		if i == len(toks) {
			return nil, unexpected(end)
		}
	}
	return vars, nil
}

// functionHead parses `qualifiers type name(params)` from a function prototype or definition.
func (p *parser) functionHead(head []Token) (Function, error) {
	_, _, idx, err := p.qualifiers(head)
	if err != nil {
		return Function{}, err
	}
	rest := head[idx:]
	if len(rest) < 4 || rest[2].Text != "(" {
		return Function{}, unexpected(head[len(head)-1])
	}
	ret, name := rest[0], rest[1]
	if ret.Kind != TokenIdent || !p.isType(ret.Text) {
		return Function{}, &SyntaxError{Line: ret.Line, Column: ret.Column, Msg: fmt.Sprintf("unknown type '%s'", ret.Text)}
	}
	if err := p.checkName(name); err != nil {
		return Function{}, err
	}
	if close := matchParen(rest, 2); close != len(rest)-1 {
		if close < 0 {
			return Function{}, unexpected(rest[len(rest)-1])
		}
		return Function{}, unexpected(rest[close+1])
	}
	return Function{Name: name.Text, ReturnType: ret.Text, Line: name.Line}, nil
}

// members parses the ';'-separated member declarations of a struct or interface block body.
func (p *parser) members(body []Token, storage Storage) error {
	start := 0
	for i, t := range body {
		if t.Kind != TokenPunct || t.Text != ";" {
			continue
		}
		decl := body[start:i]
		start = i + 1
		if len(decl) == 0 {
			continue
		}
		_, location, idx, err := p.qualifiers(decl)
		if err != nil {
			return err
		}
		if idx == len(decl) {
			return unexpected(t)
		}
		vars, err := p.typedDeclarators(decl[idx:], t, storage, location)
		if err != nil {
			return err
		}
		if storage != StorageNone {
			p.unit.Variables = append(p.unit.Variables, vars...)
		}
	}
	if start < len(body) {
		return unexpected(body[len(body)-1])
	}
	return nil
}

// tailDeclarators consumes the optional instance names after a closing brace up to ';'.
func (p *parser) tailDeclarators(storage Storage, typ string, location int) error {
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind != TokenPunct || t.Text != ";" {
			continue
		}
		tail := p.toks[p.pos:i]
		p.pos = i + 1
		if len(tail) == 0 || typ == "" {
			if len(tail) > 0 {
				if err := p.checkName(tail[0]); err != nil {
					return err
				}
			}
			return nil
		}
		synthetic := append([]Token{{Kind: TokenIdent, Text: typ, Line: tail[0].Line, Column: tail[0].Column}}, tail...)
		vars, err := p.typedDeclarators(synthetic, t, storage, location)
		if err != nil {
			return err
		}
		p.unit.Variables = append(p.unit.Variables, vars...)
		return nil
	}
	return p.eof()
}

// matchBrace returns the index of the '}' closing the block that starts at p.pos.
func (p *parser) matchBrace() (int, error) {
	depth := 1
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Text {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, p.eof()
}

func (p *parser) isType(name string) bool {
	if _, ok := builtinTypes[name]; ok {
		return true
	}
	_, ok := p.types[name]
	return ok
}

// checkName verifies t can name a variable, function or type.
func (p *parser) checkName(t Token) error {
	if t.Kind != TokenIdent {
		return unexpected(t)
	}
	if _, ok := reserved[t.Text]; ok {
		return unexpected(t)
	}
	if _, ok := qualifierStorage[t.Text]; ok {
		return unexpected(t)
	}
	if _, ok := plainQualifiers[t.Text]; ok {
		return unexpected(t)
	}
	if p.isType(t.Text) {
		return unexpected(t)
	}
	return nil
}

// eof reports an unexpected end of input at the last token.
func (p *parser) eof() error {
	line, col := 1, 1
	if n := len(p.toks); n > 0 {
		last := p.toks[n-1]
		line, col = last.Line, last.Column+len(last.Text)
	}
	return &SyntaxError{Line: line, Column: col, Msg: "syntax error, unexpected end of file"}
}

func unexpected(t Token) error {
	return &SyntaxError{Line: t.Line, Column: t.Column, Msg: fmt.Sprintf("syntax error, unexpected '%s'", t.Text)}
}

// layoutLocation extracts N from the comma-separated layout qualifier list if it holds `location = N`.
func layoutLocation(toks []Token) (int, error) {
	for i := 0; i < len(toks); i++ {
		if toks[i].Text != "location" {
			continue
		}
		if i+2 >= len(toks) || toks[i+1].Text != "=" || toks[i+2].Kind != TokenNumber {
			return -1, &SyntaxError{Line: toks[i].Line, Column: toks[i].Column, Msg: "location requires an integer value"}
		}
		n, err := strconv.ParseInt(toks[i+2].Text, 0, 32)
		if err != nil || n < 0 {
			return -1, &SyntaxError{Line: toks[i+2].Line, Column: toks[i+2].Column, Msg: fmt.Sprintf("invalid location '%s'", toks[i+2].Text)}
		}
		return int(n), nil
	}
	return -1, nil
}

// checkBalanced verifies parentheses and brackets pair up inside a function body.
func checkBalanced(body []Token) error {
	var stack []Token
	for _, t := range body {
		if t.Kind != TokenPunct {
			continue
		}
		switch t.Text {
		case "(", "[":
			stack = append(stack, t)
		case ")", "]":
			if len(stack) == 0 {
				return unexpected(t)
			}
			open := stack[len(stack)-1]
			if (open.Text == "(") != (t.Text == ")") {
				return unexpected(t)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return unexpected(stack[len(stack)-1])
	}
	return nil
}

// matchParen returns the index of the ')' matching the '(' at open, or -1.
func matchParen(toks []Token, open int) int {
	return matchPair(toks, open, "(", ")")
}

// matchBracket returns the index of the ']' matching the '[' at open, or -1.
func matchBracket(toks []Token, open int) int {
	return matchPair(toks, open, "[", "]")
}

func matchPair(toks []Token, open int, l, r string) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Text {
		case l:
			depth++
		case r:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipInitializer returns the index of the ',' ending an initializer at depth 0, or len(toks).
func skipInitializer(toks []Token, from int) int {
	depth := 0
	for i := from; i < len(toks); i++ {
		switch toks[i].Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ",":
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks)
}
