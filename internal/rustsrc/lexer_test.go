package rustsrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestLex(t *testing.T) {
	src := `pub trait Preset: Copy + 'static { // trailing
    /* block /* nested */ still comment */
    const X: NonZeroU64 = nonzero!(1_u64 << 26);
    fn f() -> char { '}' }
    #[doc = "a } in a string"]
    type A = U8;
}`
	toks, err := Lex(src)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"pub", "trait", "Preset", ":", "Copy", "+", "'static", "{",
		"const", "X", ":", "NonZeroU64", "=", "nonzero", "!", "(", "1_u64", "<<", "26", ")", ";",
		"fn", "f", "(", ")", "->", "char", "{", "'}'", "}",
		"#", "[", "doc", "=", `"a } in a string"`, "]",
		"type", "A", "=", "U8", ";",
		"}",
	}, texts(toks))

	assert.Equal(t, Lifetime, toks[6].Kind)
	assert.Equal(t, Number, toks[16].Kind)
	assert.Equal(t, Char, toks[28].Kind)
	assert.Equal(t, src[toks[9].Start:toks[9].End], "X")
}

func TestLexRawStringAndEscapes(t *testing.T) {
	toks, err := Lex(`r#"raw " quote"# '\'' "esc \" q" b"bytes"`)
	require.NoError(t, err)
	assert.Equal(t, []string{`r#"raw " quote"#`, `'\''`, `"esc \" q"`, `b"bytes"`}, texts(toks))
	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, Char, toks[1].Kind)
}

func TestStatements(t *testing.T) {
	f := parseSource(t, `
use typenum::U8;

pub(crate) struct Mainnet;

impl Preset for Mainnet {
    #[allow(clippy::all)]
    type A = U8;
    delegate_preset_items! { super Other; type B; }
    const C: u64 = 1;
}
`)
	require.Len(t, f.statements, 3)

	impl := f.statements[2]
	require.True(t, impl.HasBody)
	require.Len(t, impl.Body, 3)

	name, token, ok := typeAlias(&impl.Body[0])
	assert.True(t, ok)
	assert.Equal(t, "A", name)
	assert.Equal(t, "U8", token)

	assert.Equal(t, DelegateMacro, macroName(&impl.Body[1]))
	assert.Len(t, impl.Body[1].Body, 2)

	c, ok := constDecl(&impl.Body[2])
	assert.True(t, ok)
	assert.Equal(t, "C", c.name)
	assert.Equal(t, "u64", c.typeName)
	assert.True(t, c.hasValue)
}
