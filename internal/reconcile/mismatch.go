package reconcile

import "fmt"

type Kind uint8

const (
	MissingInReference Kind = iota + 1
	MissingInConfig
	UnknownTypeToken
	ValueMismatch
)

func (k Kind) String() string {
	switch k {
	case MissingInReference:
		return "missing in reference"
	case MissingInConfig:
		return "missing in config"
	case UnknownTypeToken:
		return "unknown type token"
	case ValueMismatch:
		return "value mismatch"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is an observed value that may be absent on one side.
type Value struct {
	N   uint64
	Set bool
}

func Some(n uint64) Value { return Value{N: n, Set: true} }

func (v Value) String() string {
	if !v.Set {
		return "None"
	}
	return fmt.Sprintf("%d", v.N)
}

// Mismatch is one disagreement between the YAML and Rust sides of a preset.
type Mismatch struct {
	Kind Kind
	// Name is the Rust name, or the YAML key when Rust lacks the parameter.
	Name string
	YAML Value
	Rust Value
	// Token is the typenum token of a type-level parameter.
	Token       string
	Description string
}

func (m Mismatch) String() string {
	if m.Description != "" {
		return m.Description
	}
	return fmt.Sprintf("YAML=%s, Rust=%s", m.YAML, m.Rust)
}
