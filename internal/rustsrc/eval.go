package rustsrc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eigerco/presetcheck/internal/safemath"
)

var errUnsupported = errors.New("unsupported expression")

var integerSuffixes = []string{"u128", "usize", "u64", "u32", "u16", "u8", "i128", "isize", "i64", "i32", "i16", "i8"}

var nonZeroTypes = map[string]bool{"NonZeroU64": true, "NonZeroUsize": true}

// evalConst evaluates the value expression of a constant. It understands
// integer literals, nonzero!(..), NonZeroU64::new(..).unwrap(),
// NonZeroU64::MIN, parentheses and left shifts.
func evalConst(toks []Token) (uint64, error) {
	p := &exprParser{toks: toks}
	v, err := p.shift()
	if err != nil {
		return 0, err
	}
	if !p.done() {
		return 0, fmt.Errorf("%w: trailing %q", errUnsupported, p.peek().Text)
	}
	return v, nil
}

type exprParser struct {
	toks []Token
	pos  int
}

func (p *exprParser) done() bool { return p.pos >= len(p.toks) }

func (p *exprParser) peek() Token {
	if p.done() {
		return Token{}
	}
	return p.toks[p.pos]
}

func (p *exprParser) accept(kind TokenKind, text string) bool {
	if p.peek().is(kind, text) {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) expect(kind TokenKind, text string) error {
	if !p.accept(kind, text) {
		if p.done() {
			return fmt.Errorf("%w: expected %q, got end of expression", errUnsupported, text)
		}
		return fmt.Errorf("%w: expected %q, got %q", errUnsupported, text, p.peek().Text)
	}
	return nil
}

func (p *exprParser) shift() (uint64, error) {
	v, err := p.primary()
	if err != nil {
		return 0, err
	}
	for p.accept(Punct, "<<") {
		n, err := p.primary()
		if err != nil {
			return 0, err
		}
		shifted, ok := safemath.Shl64(v, n)
		if !ok {
			return 0, fmt.Errorf("%d << %d: %w", v, n, safemath.ErrOverflow)
		}
		v = shifted
	}
	return v, nil
}

func (p *exprParser) primary() (uint64, error) {
	t := p.peek()
	switch {
	case t.Kind == Number:
		p.pos++
		return parseInteger(t.Text)
	case t.is(Punct, "("):
		p.pos++
		return p.parenthesized()
	case t.is(Ident, "nonzero"):
		p.pos++
		if err := p.expect(Punct, "!"); err != nil {
			return 0, err
		}
		if err := p.expect(Punct, "("); err != nil {
			return 0, err
		}
		return p.parenthesized()
	case t.Kind == Ident && nonZeroTypes[t.Text]:
		p.pos++
		return p.nonZeroPath()
	case p.done():
		return 0, fmt.Errorf("%w: empty expression", errUnsupported)
	default:
		return 0, fmt.Errorf("%w: unexpected %q", errUnsupported, t.Text)
	}
}

// parenthesized parses the rest of a group whose '(' was already consumed.
func (p *exprParser) parenthesized() (uint64, error) {
	v, err := p.shift()
	if err != nil {
		return 0, err
	}
	return v, p.expect(Punct, ")")
}

// nonZeroPath parses ::MIN or ::new(expr) with an optional .unwrap() or .expect("..").
func (p *exprParser) nonZeroPath() (uint64, error) {
	if err := p.expect(Punct, "::"); err != nil {
		return 0, err
	}
	if p.accept(Ident, "MIN") {
		return 1, nil
	}
	if err := p.expect(Ident, "new"); err != nil {
		return 0, err
	}
	if err := p.expect(Punct, "("); err != nil {
		return 0, err
	}
	v, err := p.parenthesized()
	if err != nil {
		return 0, err
	}
	if !p.accept(Punct, ".") {
		return v, nil
	}
	switch {
	case p.accept(Ident, "unwrap"):
		if err := p.expect(Punct, "("); err != nil {
			return 0, err
		}
		return v, p.expect(Punct, ")")
	case p.accept(Ident, "expect"):
		if err := p.expect(Punct, "("); err != nil {
			return 0, err
		}
		if p.peek().Kind != String {
			return 0, fmt.Errorf("%w: expect() without message", errUnsupported)
		}
		p.pos++
		return v, p.expect(Punct, ")")
	default:
		return 0, fmt.Errorf("%w: unexpected method %q", errUnsupported, p.peek().Text)
	}
}

// parseInteger reads a Rust integer literal such as 1_000_000_000, 64_u64 or 0x10.
func parseInteger(text string) (uint64, error) {
	s := text
	for _, suffix := range integerSuffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	s = strings.ReplaceAll(s, "_", "")

	base := 10
	switch {
	case strings.HasPrefix(s, "0x"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0o"):
		base, s = 8, s[2:]
	case strings.HasPrefix(s, "0b"):
		base, s = 2, s[2:]
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: integer literal %q: %w", errUnsupported, text, err)
	}
	return v, nil
}
