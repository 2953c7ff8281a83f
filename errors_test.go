package movecompose

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	address, err := parseAddressLiteral(json.RawMessage(`"0x1"`))
	if err != nil {
		t.Fatalf("parseAddressLiteral failed: %v", err)
	}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "DuplicateLabelError",
			err:  &DuplicateLabelError{Label: "take"},
			want: `movecompose: duplicate step label "take"`,
		},
		{
			name: "FunctionIDError",
			err:  &FunctionIDError{Function: "0x1::coin", Reason: "expected `address::module::function`"},
			want: "movecompose: invalid function id \"0x1::coin\": expected `address::module::function`",
		},
		{
			name: "TypeArgumentError",
			err:  &TypeArgumentError{Step: "take", TypeTag: "u65", Err: errors.New("unknown type")},
			want: `movecompose: invalid type argument "u65" in step "take": unknown type`,
		},
		{
			name: "UnknownRefError",
			err:  &UnknownRefError{Step: "give", ArgIndex: 1, Ref: "later"},
			want: `movecompose: step "give" arg 1 references "later": refs must point to a previous step label`,
		},
		{
			name: "ReturnIndexError",
			err:  &ReturnIndexError{Step: "give", ArgIndex: 1, Ref: "take", Index: 5, Available: 1},
			want: `movecompose: step "give" arg 1 references "take" return index 5 but only 1 return value(s) are available`,
		},
		{
			name: "FunctionNotFoundError",
			err:  &FunctionNotFoundError{Function: "mint", Module: ModuleID{Address: address, Name: "coin"}},
			want: `movecompose: function "mint" was not found in module ABI for 0x1::coin`,
		},
		{
			name: "UnresolvedTypeParamError",
			err:  &UnresolvedTypeParamError{Param: "0x1::coin::Coin<T1>", TypeArguments: []string{"u8"}},
			want: `movecompose: function parameter "0x1::coin::Coin<T1>" still has unresolved generic placeholders after applying type arguments [u8]`,
		},
		{
			name: "ArgumentCountError",
			err:  &ArgumentCountError{Step: "take", Expected: 2, Got: 1},
			want: `movecompose: step "take" argument count mismatch: function expects 2, payload provides 1`,
		},
		{
			name: "SignerMismatchError",
			err:  &SignerMismatchError{Step: "take", ArgIndex: 1, Param: "u64"},
			want: "movecompose: step \"take\" arg 1 uses `signer` but expected parameter type is \"u64\"",
		},
		{
			name: "ArgumentError",
			err:  &ArgumentError{Step: "take", ArgIndex: 1, Param: "u64", Err: errors.New("boom")},
			want: `movecompose: step "take" arg 1 (expected "u64"): boom`,
		},
		{
			name: "UnsupportedTypeError",
			err:  &UnsupportedTypeError{Type: "vector<u64>"},
			want: `movecompose: unsupported literal parameter type "vector<u64>"`,
		},
		{
			name: "LiteralError with raw value",
			err:  &LiteralError{Type: "u8", Raw: "300", Msg: "value out of range"},
			want: "movecompose: invalid u8 literal 300: value out of range",
		},
		{
			name: "LiteralError without raw value",
			err:  &LiteralError{Type: "u8", Msg: "expected a number or numeric string"},
			want: "movecompose: invalid u8 literal: expected a number or numeric string",
		},
		{
			name: "StepError",
			err:  &StepError{Label: "take", Function: "0x1::coin::withdraw", Err: errors.New("linker failure")},
			want: `movecompose: composer rejected step "take" (0x1::coin::withdraw): linker failure`,
		},
		{
			name: "PayloadCountError",
			err:  &PayloadCountError{ScriptArgs: 2, PayloadArgs: 1},
			want: "movecompose: generated script argument count mismatch: script has 2 argument(s), normalized payload has 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
	}{
		{"TypeArgumentError", &TypeArgumentError{Step: "s", TypeTag: "t", Err: cause}},
		{"ArgumentError", &ArgumentError{Step: "s", ArgIndex: 0, Param: "u8", Err: cause}},
		{"StepError", &StepError{Label: "s", Function: "f", Err: cause}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, cause) {
				t.Errorf("Expected %T to unwrap to its cause", tt.err)
			}
		})
	}
}
