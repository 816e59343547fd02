// Package rustsrc extracts preset parameters from Rust preset source text.
//
// The source is lexed and split into declaration statements; extraction then
// matches a small grammar over those statements:
//
//	type Name = U64;                              type-level parameter
//	const NAME: u64 = 1_u64 << 26;                value-level constant
//	pub trait Preset ... { ... }                  shared defaults
//	impl Preset for Minimal { ... }               per-preset block
//	delegate_preset_items! { super Mainnet; type Name; ... }
//
// Derived type aliases such as Prod<..> or Quot<..> are not parameters and are
// left out.
package rustsrc

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/eigerco/presetcheck/internal/typenum"
	"github.com/eigerco/presetcheck/pkg/log"
)

const (
	TraitName     = "Preset"
	DelegateMacro = "delegate_preset_items"
)

var (
	ErrUnparseableConst     = errors.New("unparseable constant value")
	ErrBlockNotFound        = errors.New("preset block not found")
	ErrUnresolvedDelegation = errors.New("unresolved delegated preset items")
	ErrDelegationCycle      = errors.New("preset delegation cycle")
)

// numericTypes are the declared constant types whose values are compared.
var numericTypes = map[string]bool{"NonZeroU64": true, "u64": true, "Gwei": true, "usize": true, "u8": true}

// Preset holds what the Rust source declares for one preset.
type Preset struct {
	// Types maps type-level names (CamelCase) to their typenum token.
	Types map[string]string
	// Consts maps constant names (UPPER_SNAKE_CASE) to their value.
	Consts map[string]uint64
}

// File is a parsed Rust source file.
type File struct {
	src        string
	statements []Statement
}

// Parse lexes src and splits it into statements.
func Parse(src string) (*File, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	statements, err := parseStatements(toks)
	if err != nil {
		return nil, err
	}
	return &File{src: src, statements: statements}, nil
}

// Local extracts a preset maintained in its own file: every typenum type alias
// and every numeric constant anywhere in the file.
func (f *File) Local(preset string) (Preset, error) {
	out := Preset{Types: map[string]string{}, Consts: map[string]uint64{}}
	var err error
	walk(f.statements, func(st *Statement) bool {
		if name, token, ok := typeAlias(st); ok {
			out.Types[name] = token
			return true
		}
		if c, ok := constDecl(st); ok && c.hasValue && numericTypes[c.typeName] {
			v, evalErr := f.eval(c, preset+" preset")
			if evalErr != nil {
				err = evalErr
				return false
			}
			out.Consts[c.name] = v
		}
		return true
	})
	if err != nil {
		return Preset{}, err
	}
	log.Extract.Debug().Str("preset", preset).Int("types", len(out.Types)).Int("consts", len(out.Consts)).Msg("extracted local preset")
	return out, nil
}

// Upstream extracts the preset implemented by the named type: its impl block's
// type aliases and constants over the trait defaults, with delegated items
// resolved from the delegation target.
func (f *File) Upstream(implementor string) (Preset, error) {
	types, err := f.resolveTypes(implementor, nil)
	if err != nil {
		return Preset{}, err
	}
	consts, err := f.resolveConsts(implementor, nil)
	if err != nil {
		return Preset{}, err
	}
	log.Extract.Debug().Str("preset", implementor).Int("types", len(types)).Int("consts", len(consts)).Msg("extracted upstream preset")
	return Preset{Types: types, Consts: consts}, nil
}

// Defaults returns the constants with default values in the trait definition.
func (f *File) Defaults() (map[string]uint64, error) {
	trait, ok := f.findTrait(TraitName)
	if !ok {
		return nil, fmt.Errorf("%w: trait %s", ErrBlockNotFound, TraitName)
	}
	defaults := map[string]uint64{}
	for i := range trait.Body {
		c, ok := constDecl(&trait.Body[i])
		if !ok || !c.hasValue || !numericTypes[c.typeName] {
			continue
		}
		v, err := f.eval(c, TraitName+" trait defaults")
		if err != nil {
			return nil, err
		}
		defaults[c.name] = v
	}
	return defaults, nil
}

// implBlock is the direct content of one impl block.
type implBlock struct {
	types           map[string]string
	consts          map[string]uint64
	target          string
	delegatedTypes  []string
	delegatedConsts []string
}

func (f *File) implBlock(implementor string) (*implBlock, error) {
	st, ok := f.findImpl(TraitName, implementor)
	if !ok {
		return nil, fmt.Errorf("%w: impl %s for %s", ErrBlockNotFound, TraitName, implementor)
	}
	b := &implBlock{types: map[string]string{}, consts: map[string]uint64{}}
	for i := range st.Body {
		item := &st.Body[i]
		if name, token, ok := typeAlias(item); ok {
			b.types[name] = token
			continue
		}
		if c, ok := constDecl(item); ok && c.hasValue && numericTypes[c.typeName] {
			v, err := f.eval(c, implementor+" preset")
			if err != nil {
				return nil, err
			}
			b.consts[c.name] = v
			continue
		}
		if macroName(item) == DelegateMacro {
			if err := b.readDelegation(item); err != nil {
				return nil, fmt.Errorf("impl %s for %s: %w", TraitName, implementor, err)
			}
		}
	}
	return b, nil
}

// readDelegation reads "super Target;" followed by "type Name;" and "const NAME;" items.
func (b *implBlock) readDelegation(st *Statement) error {
	for i := range st.Body {
		toks := st.Body[i].Tokens
		switch {
		case len(toks) >= 2 && toks[0].is(Ident, "super"):
			b.target = toks[len(toks)-1].Text
		case len(toks) == 2 && toks[0].is(Ident, "type") && toks[1].Kind == Ident:
			b.delegatedTypes = append(b.delegatedTypes, toks[1].Text)
		case len(toks) == 2 && toks[0].is(Ident, "const") && toks[1].Kind == Ident:
			b.delegatedConsts = append(b.delegatedConsts, toks[1].Text)
		}
	}
	if b.target == "" && len(b.delegatedTypes)+len(b.delegatedConsts) > 0 {
		return fmt.Errorf("%w: %s without a super target", ErrUnresolvedDelegation, DelegateMacro)
	}
	return nil
}

func (f *File) resolveTypes(implementor string, visiting []string) (map[string]string, error) {
	if slices.Contains(visiting, implementor) {
		return nil, fmt.Errorf("%w: %s", ErrDelegationCycle, strings.Join(append(visiting, implementor), " -> "))
	}
	b, err := f.implBlock(implementor)
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	var pending []string
	for _, name := range b.delegatedTypes {
		if _, explicit := b.types[name]; !explicit {
			pending = append(pending, name)
		}
	}
	if len(pending) > 0 {
		targetTypes, err := f.resolveTypes(b.target, append(visiting, implementor))
		if err != nil {
			return nil, err
		}
		var missing []string
		for _, name := range pending {
			token, ok := targetTypes[name]
			if !ok {
				missing = append(missing, name)
				continue
			}
			out[name] = token
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s delegates type %s to %s", ErrUnresolvedDelegation, implementor, strings.Join(missing, ", "), b.target)
		}
	}
	maps.Copy(out, b.types)
	return out, nil
}

func (f *File) resolveConsts(implementor string, visiting []string) (map[string]uint64, error) {
	if slices.Contains(visiting, implementor) {
		return nil, fmt.Errorf("%w: %s", ErrDelegationCycle, strings.Join(append(visiting, implementor), " -> "))
	}
	defaults, err := f.Defaults()
	if err != nil {
		return nil, err
	}
	b, err := f.implBlock(implementor)
	if err != nil {
		return nil, err
	}

	out := defaults
	if len(b.delegatedConsts) > 0 {
		targetConsts, err := f.resolveConsts(b.target, append(visiting, implementor))
		if err != nil {
			return nil, err
		}
		var missing []string
		for _, name := range b.delegatedConsts {
			v, ok := targetConsts[name]
			if !ok {
				missing = append(missing, name)
				continue
			}
			out[name] = v
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s delegates const %s to %s", ErrUnresolvedDelegation, implementor, strings.Join(missing, ", "), b.target)
		}
	}
	maps.Copy(out, b.consts)
	return out, nil
}

func (f *File) eval(c constItem, where string) (uint64, error) {
	v, err := evalConst(c.value)
	if err != nil {
		return 0, fmt.Errorf("parse Rust const %q in %s: %q: %w: %w", c.name, where, f.text(c.value), ErrUnparseableConst, err)
	}
	return v, nil
}

func (f *File) text(toks []Token) string {
	if len(toks) == 0 {
		return ""
	}
	return f.src[toks[0].Start:toks[len(toks)-1].End]
}

func (f *File) findTrait(name string) (*Statement, bool) {
	return f.find(func(st *Statement) bool {
		h := st.head()
		if len(h) > 0 && h[0].is(Ident, "unsafe") {
			h = h[1:]
		}
		return st.HasBody && len(h) >= 2 && h[0].is(Ident, "trait") && h[1].is(Ident, name)
	})
}

func (f *File) findImpl(trait, implementor string) (*Statement, bool) {
	return f.find(func(st *Statement) bool {
		h := st.head()
		return st.HasBody && len(h) == 4 &&
			h[0].is(Ident, "impl") && h[1].is(Ident, trait) &&
			h[2].is(Ident, "for") && h[3].is(Ident, implementor)
	})
}

func (f *File) find(match func(*Statement) bool) (*Statement, bool) {
	var found *Statement
	walk(f.statements, func(st *Statement) bool {
		if match(st) {
			found = st
			return false
		}
		return true
	})
	return found, found != nil
}

// walk visits statements depth first until visit returns false.
func walk(statements []Statement, visit func(*Statement) bool) bool {
	for i := range statements {
		st := &statements[i]
		if !visit(st) {
			return false
		}
		if st.HasBody && !walk(st.Body, visit) {
			return false
		}
	}
	return true
}

// typeAlias matches "type Name = U<digits>".
func typeAlias(st *Statement) (name, token string, ok bool) {
	h := st.head()
	if st.HasBody || len(h) != 4 || !h[0].is(Ident, "type") || h[1].Kind != Ident || !h[2].is(Punct, "=") {
		return "", "", false
	}
	if h[3].Kind != Ident || !typenum.IsToken(h[3].Text) {
		return "", "", false
	}
	return h[1].Text, h[3].Text, true
}

type constItem struct {
	name     string
	typeName string
	value    []Token
	hasValue bool
}

// constDecl matches "const NAME: Type = value" and "const NAME: Type".
func constDecl(st *Statement) (constItem, bool) {
	toks := stripVisibility(st.Tokens)
	if len(toks) < 4 || !toks[0].is(Ident, "const") || toks[1].Kind != Ident || !toks[2].is(Punct, ":") {
		return constItem{}, false
	}
	c := constItem{name: toks[1].Text}
	rest := toks[3:]
	eq := slices.IndexFunc(rest, func(t Token) bool { return t.is(Punct, "=") })
	typeToks := rest
	if eq >= 0 {
		typeToks, c.value, c.hasValue = rest[:eq], rest[eq+1:], true
	}
	if len(typeToks) == 0 || typeToks[len(typeToks)-1].Kind != Ident {
		return constItem{}, false
	}
	c.typeName = typeToks[len(typeToks)-1].Text
	return c, true
}

// macroName returns the name of a macro invocation statement "name! ...".
func macroName(st *Statement) string {
	h := st.head()
	if len(h) >= 2 && h[0].Kind == Ident && h[1].is(Punct, "!") {
		return h[0].Text
	}
	return ""
}
