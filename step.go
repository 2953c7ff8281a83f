package movecompose

import (
	"fmt"
	"strings"

	aptos "github.com/aptos-labs/aptos-go-sdk"
)

// FunctionID locates an entry function on chain.
type FunctionID struct {
	Address aptos.AccountAddress
	Module  string
	Name    string
}

// ParseFunctionID splits an `<address>::<module>::<function>` string into its
// three components, validating the address and identifier syntax.
func ParseFunctionID(input string) (FunctionID, error) {
	parts := strings.Split(input, "::")
	if len(parts) != 3 {
		return FunctionID{}, &FunctionIDError{
			Function: input,
			Reason:   "must be `<address>::<module>::<function>`",
		}
	}

	var address aptos.AccountAddress
	if err := address.ParseStringRelaxed(parts[0]); err != nil {
		return FunctionID{}, &FunctionIDError{
			Function: input,
			Reason:   fmt.Sprintf("invalid address %q", parts[0]),
		}
	}
	if !isValidIdentifier(parts[1]) {
		return FunctionID{}, &FunctionIDError{
			Function: input,
			Reason:   fmt.Sprintf("invalid module identifier %q", parts[1]),
		}
	}
	if !isValidIdentifier(parts[2]) {
		return FunctionID{}, &FunctionIDError{
			Function: input,
			Reason:   fmt.Sprintf("invalid function identifier %q", parts[2]),
		}
	}

	return FunctionID{Address: address, Module: parts[1], Name: parts[2]}, nil
}

// ModuleID returns the id of the module declaring the function.
func (f FunctionID) ModuleID() ModuleID {
	return ModuleID{Address: f.Address, Name: f.Module}
}

// ModuleString returns the `<address>::<module>` form used by the composer.
func (f FunctionID) ModuleString() string {
	return fmt.Sprintf("%s::%s", f.Address.String(), f.Module)
}

// String returns the fully qualified `<address>::<module>::<function>` form.
func (f FunctionID) String() string {
	return fmt.Sprintf("%s::%s", f.ModuleString(), f.Name)
}

// isValidIdentifier reports whether s is a Move identifier: a letter or
// underscore followed by letters, digits, or underscores. A bare underscore
// is not an identifier.
func isValidIdentifier(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ResolvedStep is a validated step: parsed function id, syntactically checked
// type arguments, and the original argument list.
type ResolvedStep struct {
	Label         string
	Function      FunctionID
	TypeArguments []string
	Args          []Arg

	typeTags []aptos.TypeTag
}

// ResolveSteps validates the payload steps in order: labels must be non-empty
// and unique, function ids and type-argument tags must parse, and every ref
// argument must point at a strictly earlier step label.
func ResolveSteps(steps []Step) ([]ResolvedStep, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyPayload
	}

	resolved := make([]ResolvedStep, 0, len(steps))
	labels := make(map[string]int, len(steps))

	for index, step := range steps {
		label := strings.TrimSpace(step.Label)
		if label == "" {
			return nil, fmt.Errorf("movecompose: step at index %d has an empty label", index)
		}
		if _, seen := labels[label]; seen {
			return nil, &DuplicateLabelError{Label: label}
		}

		functionID, err := ParseFunctionID(step.Function)
		if err != nil {
			return nil, fmt.Errorf("movecompose: step %q: %w", label, err)
		}

		typeTags := make([]aptos.TypeTag, 0, len(step.TypeArguments))
		for _, typeArgument := range step.TypeArguments {
			tag, err := aptos.ParseTypeTag(typeArgument)
			if err != nil {
				return nil, &TypeArgumentError{Step: label, TypeTag: typeArgument, Err: err}
			}
			typeTags = append(typeTags, *tag)
		}

		for argIndex, arg := range step.Args {
			if arg.Kind() != ArgKindRef {
				continue
			}
			if _, seen := labels[arg.Step()]; !seen {
				return nil, &UnknownRefError{Step: label, ArgIndex: argIndex, Ref: arg.Step()}
			}
		}

		labels[label] = index
		resolved = append(resolved, ResolvedStep{
			Label:         label,
			Function:      functionID,
			TypeArguments: step.TypeArguments,
			Args:          step.Args,
			typeTags:      typeTags,
		})
	}

	return resolved, nil
}
