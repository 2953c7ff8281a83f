package movecompose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ArgKind discriminates the three argument variants of a step.
type ArgKind uint8

const (
	// ArgKindSigner marks the transaction signer argument.
	ArgKindSigner ArgKind = iota

	// ArgKindLiteral marks a constant JSON value encoded at compose time.
	ArgKindLiteral

	// ArgKindRef marks a reference to an earlier step's return value.
	ArgKindRef
)

// String returns the JSON discriminator for the kind.
func (k ArgKind) String() string {
	switch k {
	case ArgKindSigner:
		return "signer"
	case ArgKindLiteral:
		return "literal"
	case ArgKindRef:
		return "ref"
	default:
		return fmt.Sprintf("ArgKind(%d)", uint8(k))
	}
}

// Arg is one step argument: the signer, a literal value, or a reference to a
// previous step's return value. The zero value is a signer argument.
type Arg struct {
	kind        ArgKind
	value       json.RawMessage
	step        string
	returnIndex int
}

// NewSignerArg returns a signer argument.
func NewSignerArg() Arg {
	return Arg{kind: ArgKindSigner}
}

// NewLiteralArg returns a literal argument carrying a raw JSON value.
func NewLiteralArg(value json.RawMessage) Arg {
	return Arg{kind: ArgKindLiteral, value: value}
}

// NewRefArg returns an argument referencing returnIndex of the step labeled
// step.
func NewRefArg(step string, returnIndex int) Arg {
	return Arg{kind: ArgKindRef, step: step, returnIndex: returnIndex}
}

// Kind returns the argument variant.
func (a Arg) Kind() ArgKind {
	return a.kind
}

// Value returns the raw JSON literal for ArgKindLiteral arguments.
func (a Arg) Value() json.RawMessage {
	return a.value
}

// Step returns the referenced step label for ArgKindRef arguments.
func (a Arg) Step() string {
	return a.step
}

// ReturnIndex returns the referenced return position for ArgKindRef
// arguments.
func (a Arg) ReturnIndex() int {
	return a.returnIndex
}

// signerArgJSON, literalArgJSON and refArgJSON mirror the three wire shapes.
// Each is decoded strictly so unknown fields in the selected variant are
// rejected.
type signerArgJSON struct {
	Kind string `json:"kind"`
}

type literalArgJSON struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

type refArgJSON struct {
	Kind             string `json:"kind"`
	Step             string `json:"step"`
	ReturnIndex      *int   `json:"returnIndex"`
	ReturnIndexSnake *int   `json:"return_index,omitempty"`
}

// UnmarshalJSON decodes the kind-tagged union. The `kind` field selects the
// variant; the variant is then re-decoded with unknown fields disallowed.
func (a *Arg) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind *string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("movecompose: invalid argument object: %w", err)
	}
	if probe.Kind == nil {
		return ErrMissingKind
	}

	switch *probe.Kind {
	case "signer":
		var raw signerArgJSON
		if err := strictUnmarshal(data, &raw); err != nil {
			return fmt.Errorf("movecompose: invalid signer argument: %w", err)
		}
		*a = NewSignerArg()
		return nil

	case "literal":
		var raw literalArgJSON
		if err := strictUnmarshal(data, &raw); err != nil {
			return fmt.Errorf("movecompose: invalid literal argument: %w", err)
		}
		if raw.Value == nil {
			return fmt.Errorf("movecompose: literal argument is missing the `value` field")
		}
		*a = NewLiteralArg(raw.Value)
		return nil

	case "ref":
		var raw refArgJSON
		if err := strictUnmarshal(data, &raw); err != nil {
			return fmt.Errorf("movecompose: invalid ref argument: %w", err)
		}
		if raw.Step == "" {
			return fmt.Errorf("movecompose: ref argument is missing the `step` field")
		}
		index := raw.ReturnIndex
		if index == nil {
			index = raw.ReturnIndexSnake
		}
		if index == nil {
			return fmt.Errorf("movecompose: ref argument is missing the `returnIndex` field")
		}
		if *index < 0 {
			return fmt.Errorf("movecompose: ref argument `returnIndex` must not be negative, got %d", *index)
		}
		*a = NewRefArg(raw.Step, *index)
		return nil

	default:
		return fmt.Errorf("movecompose: unknown argument kind %q", *probe.Kind)
	}
}

// MarshalJSON emits the same kind-tagged shape UnmarshalJSON accepts.
func (a Arg) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case ArgKindSigner:
		return json.Marshal(signerArgJSON{Kind: "signer"})
	case ArgKindLiteral:
		return json.Marshal(literalArgJSON{Kind: "literal", Value: a.value})
	case ArgKindRef:
		index := a.returnIndex
		return json.Marshal(refArgJSON{Kind: "ref", Step: a.step, ReturnIndex: &index})
	default:
		return nil, fmt.Errorf("movecompose: unknown argument kind %q", a.kind)
	}
}

// Step is one declared call in the payload, as written on the wire.
type Step struct {
	Label         string
	Function      string
	TypeArguments []string
	Args          []Arg
}

type stepJSON struct {
	Label              string   `json:"label"`
	Function           string   `json:"function"`
	TypeArguments      []string `json:"typeArguments"`
	TypeArgumentsSnake []string `json:"type_arguments"`
	Args               []Arg    `json:"args"`
}

// UnmarshalJSON decodes a step object strictly. Both the typeArguments and
// type_arguments spellings are accepted.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw stepJSON
	if err := strictUnmarshal(data, &raw); err != nil {
		return fmt.Errorf("movecompose: invalid step object: %w", err)
	}

	typeArgs := raw.TypeArguments
	if typeArgs == nil {
		typeArgs = raw.TypeArgumentsSnake
	}

	*s = Step{
		Label:         raw.Label,
		Function:      raw.Function,
		TypeArguments: typeArgs,
		Args:          raw.Args,
	}
	return nil
}

// ParsePayload decodes the top-level step array. Any other top-level shape
// (object, scalar) fails with ErrNotStepArray; trailing content after the
// array is rejected.
func ParsePayload(payload []byte) ([]Step, error) {
	trimmed := bytes.TrimLeft(payload, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotStepArray
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var steps []Step
	if err := dec.Decode(&steps); err != nil {
		return nil, fmt.Errorf("movecompose: failed to parse script compose payload as step array: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("movecompose: unexpected trailing content after step array")
	}
	return steps, nil
}

// strictUnmarshal decodes data into v, rejecting unknown fields and trailing
// content.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected trailing content")
	}
	return nil
}
