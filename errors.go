package movecompose

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotStepArray indicates the payload is not a top-level JSON array.
	ErrNotStepArray = errors.New("movecompose: invalid payload shape: expected top-level step array `[...]`")

	// ErrEmptyPayload indicates the payload contains no steps.
	ErrEmptyPayload = errors.New("movecompose: payload must include at least one step")

	// ErrMissingKind indicates an argument object has no `kind` discriminator.
	ErrMissingKind = errors.New("movecompose: argument is missing the `kind` field")

	// ErrModuleNotLoaded indicates a step's module was missed by module
	// collection. This is an internal invariant violation.
	ErrModuleNotLoaded = errors.New("movecompose: module was not loaded into the composer")
)

// DuplicateLabelError indicates two steps share the same label.
type DuplicateLabelError struct {
	Label string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("movecompose: duplicate step label %q", e.Label)
}

// FunctionIDError indicates a malformed `addr::module::fn` function string.
type FunctionIDError struct {
	Function string
	Reason   string
}

func (e *FunctionIDError) Error() string {
	return fmt.Sprintf("movecompose: invalid function id %q: %s", e.Function, e.Reason)
}

// TypeArgumentError indicates a type-argument string is not a valid type tag.
type TypeArgumentError struct {
	Step    string
	TypeTag string
	Err     error
}

func (e *TypeArgumentError) Error() string {
	return fmt.Sprintf("movecompose: invalid type argument %q in step %q: %v", e.TypeTag, e.Step, e.Err)
}

func (e *TypeArgumentError) Unwrap() error {
	return e.Err
}

// UnknownRefError indicates a ref argument names a label that is not a
// strictly earlier step.
type UnknownRefError struct {
	Step     string
	ArgIndex int
	Ref      string
}

func (e *UnknownRefError) Error() string {
	return fmt.Sprintf("movecompose: step %q arg %d references %q: refs must point to a previous step label",
		e.Step, e.ArgIndex, e.Ref)
}

// ReturnIndexError indicates a ref argument's return index exceeds the
// referenced step's recorded return count.
type ReturnIndexError struct {
	Step      string
	ArgIndex  int
	Ref       string
	Index     int
	Available int
}

func (e *ReturnIndexError) Error() string {
	return fmt.Sprintf("movecompose: step %q arg %d references %q return index %d but only %d return value(s) are available",
		e.Step, e.ArgIndex, e.Ref, e.Index, e.Available)
}

// FunctionNotFoundError indicates the fetched module ABI has no entry for the
// requested function.
type FunctionNotFoundError struct {
	Function string
	Module   ModuleID
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("movecompose: function %q was not found in module ABI for %s", e.Function, e.Module)
}

// UnresolvedTypeParamError indicates a parameter type still carries generic
// placeholders after applying the step's type arguments.
type UnresolvedTypeParamError struct {
	Param         string
	TypeArguments []string
}

func (e *UnresolvedTypeParamError) Error() string {
	return fmt.Sprintf("movecompose: function parameter %q still has unresolved generic placeholders after applying type arguments %v",
		e.Param, e.TypeArguments)
}

// ArgumentCountError indicates the resolved parameter list and the supplied
// argument list disagree in length.
type ArgumentCountError struct {
	Step     string
	Expected int
	Got      int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("movecompose: step %q argument count mismatch: function expects %d, payload provides %d",
		e.Step, e.Expected, e.Got)
}

// SignerMismatchError indicates a signer-kind argument where the resolved
// parameter type is not &signer.
type SignerMismatchError struct {
	Step     string
	ArgIndex int
	Param    string
}

func (e *SignerMismatchError) Error() string {
	return fmt.Sprintf("movecompose: step %q arg %d uses `signer` but expected parameter type is %q",
		e.Step, e.ArgIndex, e.Param)
}

// ArgumentError wraps a literal encoding failure with its step context.
type ArgumentError struct {
	Step     string
	ArgIndex int
	Param    string
	Err      error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("movecompose: step %q arg %d (expected %q): %v", e.Step, e.ArgIndex, e.Param, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError indicates a parameter type family the literal encoder
// cannot represent.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("movecompose: unsupported literal parameter type %q", e.Type)
}

// LiteralError indicates a literal JSON value whose shape does not match its
// resolved parameter type.
type LiteralError struct {
	Type string
	Raw  string
	Msg  string
}

func (e *LiteralError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("movecompose: invalid %s literal: %s", e.Type, e.Msg)
	}
	return fmt.Sprintf("movecompose: invalid %s literal %s: %s", e.Type, e.Raw, e.Msg)
}

// StepError wraps a composition-engine rejection with the offending step.
type StepError struct {
	Label    string
	Function string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("movecompose: composer rejected step %q (%s): %v", e.Label, e.Function, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// PayloadCountError indicates the decoded script's positional argument count
// disagrees with the number of literal arguments recorded during
// composition. This is an internal invariant violation.
type PayloadCountError struct {
	ScriptArgs  int
	PayloadArgs int
}

func (e *PayloadCountError) Error() string {
	return fmt.Sprintf("movecompose: generated script argument count mismatch: script has %d argument(s), normalized payload has %d",
		e.ScriptArgs, e.PayloadArgs)
}
