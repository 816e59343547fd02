package rustsrc

import "fmt"

// Statement is one declaration or expression statement: every token up to a
// terminating ';', or up to and including a brace group that closes it
// (impl and trait blocks, fn bodies, brace-delimited macro calls).
type Statement struct {
	Tokens []Token
	// Body holds the statements inside the first top-level brace group.
	Body    []Statement
	HasBody bool
	// bodyAt is the index in Tokens of the opening brace of Body.
	bodyAt int
}

// head returns the tokens before the body, with visibility modifiers removed.
func (s *Statement) head() []Token {
	toks := s.Tokens
	if s.HasBody {
		toks = toks[:s.bodyAt]
	}
	return stripVisibility(toks)
}

// stripVisibility drops a leading pub, pub(crate) or pub(super).
func stripVisibility(toks []Token) []Token {
	if len(toks) == 0 || !toks[0].is(Ident, "pub") {
		return toks
	}
	toks = toks[1:]
	if len(toks) > 0 && toks[0].is(Punct, "(") {
		if end, err := matchGroup(toks, 0); err == nil {
			toks = toks[end+1:]
		}
	}
	return toks
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

func isOpen(t Token) bool  { return t.Kind == Punct && (t.Text == "(" || t.Text == "[" || t.Text == "{") }
func isClose(t Token) bool { return t.Kind == Punct && (t.Text == ")" || t.Text == "]" || t.Text == "}") }

// matchGroup returns the index of the token closing the group opened at i.
func matchGroup(toks []Token, i int) (int, error) {
	stack := []string{closers[toks[i].Text]}
	for j := i + 1; j < len(toks); j++ {
		t := toks[j]
		switch {
		case isOpen(t):
			stack = append(stack, closers[t.Text])
		case isClose(t):
			if t.Text != stack[len(stack)-1] {
				return 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrLex, t.Text, t.Start)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return j, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unclosed %q at offset %d", ErrLex, toks[i].Text, toks[i].Start)
}

func parseStatements(toks []Token) ([]Statement, error) {
	var out []Statement
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.is(Punct, ";") {
			i++
			continue
		}
		if t.is(Punct, "#") {
			if next, ok, err := skipAttribute(toks, i); err != nil {
				return nil, err
			} else if ok {
				i = next
				continue
			}
		}

		st, next, err := parseStatement(toks, i)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
		i = next
	}
	return out, nil
}

// skipAttribute steps over #[...] and #![...].
func skipAttribute(toks []Token, i int) (int, bool, error) {
	j := i + 1
	if j < len(toks) && toks[j].is(Punct, "!") {
		j++
	}
	if j >= len(toks) || !toks[j].is(Punct, "[") {
		return i, false, nil
	}
	end, err := matchGroup(toks, j)
	if err != nil {
		return 0, false, err
	}
	return end + 1, true, nil
}

func parseStatement(toks []Token, start int) (Statement, int, error) {
	st := Statement{}
	i := start
	for i < len(toks) {
		t := toks[i]
		switch {
		case t.is(Punct, ";"):
			st.Tokens = toks[start:i]
			return st, i + 1, nil
		case t.is(Punct, "{"):
			end, err := matchGroup(toks, i)
			if err != nil {
				return Statement{}, 0, err
			}
			body, err := parseStatements(toks[i+1 : end])
			if err != nil {
				return Statement{}, 0, err
			}
			st.Body, st.HasBody, st.bodyAt = body, true, i-start
			st.Tokens = toks[start : end+1]
			next := end + 1
			if next < len(toks) && toks[next].is(Punct, ";") {
				next++
			}
			return st, next, nil
		case isOpen(t):
			end, err := matchGroup(toks, i)
			if err != nil {
				return Statement{}, 0, err
			}
			i = end + 1
		case isClose(t):
			return Statement{}, 0, fmt.Errorf("%w: unexpected %q at offset %d", ErrLex, t.Text, t.Start)
		default:
			i++
		}
	}
	st.Tokens = toks[start:]
	return st, len(toks), nil
}
