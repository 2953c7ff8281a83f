package movecompose

import (
	"errors"
	"testing"
)

func TestSubstituteTypeParams(t *testing.T) {
	tests := []struct {
		name          string
		param         string
		typeArguments []string
		want          string
	}{
		{
			name:          "substitutes inside generic brackets",
			param:         "0x1::object::Object<T0>",
			typeArguments: []string{"0x1::fungible_asset::Metadata"},
			want:          "0x1::object::Object<0x1::fungible_asset::Metadata>",
		},
		{
			name:          "substitutes by position",
			param:         "vector<T1>",
			typeArguments: []string{"u8", "0x1::my::T0Coin"},
			want:          "vector<0x1::my::T0Coin>",
		},
		{
			name:          "leaves identifiers containing placeholder text untouched",
			param:         "0x1::my::T0Coin<T0>",
			typeArguments: []string{"u8"},
			want:          "0x1::my::T0Coin<u8>",
		},
		{
			name:          "substitutes bare placeholder",
			param:         "T0",
			typeArguments: []string{"u64"},
			want:          "u64",
		},
		{
			name:          "leaves out-of-range placeholders untouched",
			param:         "vector<T3>",
			typeArguments: []string{"u8"},
			want:          "vector<T3>",
		},
		{
			name:          "handles multi-digit indices",
			param:         "T10",
			typeArguments: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "u128"},
			want:          "u128",
		},
		{
			name:          "ignores placeholder followed by identifier char",
			param:         "T0x",
			typeArguments: []string{"u8"},
			want:          "T0x",
		},
		{
			name:          "ignores placeholder preceded by identifier char",
			param:         "MyT0",
			typeArguments: []string{"u8"},
			want:          "MyT0",
		},
		{
			name:          "substitutes multiple placeholders",
			param:         "0x1::pair::Pair<T0, T1>",
			typeArguments: []string{"u8", "u64"},
			want:          "0x1::pair::Pair<u8, u64>",
		},
		{
			name:          "no placeholders is identity",
			param:         "&signer",
			typeArguments: []string{"u8"},
			want:          "&signer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubstituteTypeParams(tt.param, tt.typeArguments)
			if got != tt.want {
				t.Errorf("SubstituteTypeParams(%q, %v) = %q, want %q", tt.param, tt.typeArguments, got, tt.want)
			}
		})
	}
}

func TestContainsTypeParams(t *testing.T) {
	withParams := []string{"T0", "vector<T1>", "0x1::pair::Pair<u8, T12>"}
	for _, param := range withParams {
		if !ContainsTypeParams(param) {
			t.Errorf("Expected %q to contain placeholders", param)
		}
	}

	without := []string{"u64", "&signer", "0x1::my::T0Coin", "T0x", "vector<u8>"}
	for _, param := range without {
		if ContainsTypeParams(param) {
			t.Errorf("Expected %q to contain no placeholders", param)
		}
	}
}

func TestResolveFunctionParams(t *testing.T) {
	module := &ModuleInfo{
		Functions: map[string][]string{
			"transfer": {"&signer", "address", "u64"},
			"wrap":     {"&signer", "0x1::object::Object<T0>"},
		},
	}

	step := func(function string, typeArguments ...string) ResolvedStep {
		id, err := ParseFunctionID("0x1::coin::" + function)
		if err != nil {
			t.Fatalf("ParseFunctionID failed: %v", err)
		}
		return ResolvedStep{Label: "s1", Function: id, TypeArguments: typeArguments}
	}

	t.Run("resolves concrete params", func(t *testing.T) {
		params, err := resolveFunctionParams(step("transfer"), module)
		if err != nil {
			t.Fatalf("resolveFunctionParams failed: %v", err)
		}
		if len(params) != 3 || params[2] != "u64" {
			t.Errorf("Unexpected params: %v", params)
		}
	})

	t.Run("substitutes type arguments", func(t *testing.T) {
		params, err := resolveFunctionParams(step("wrap", "0x1::fungible_asset::Metadata"), module)
		if err != nil {
			t.Fatalf("resolveFunctionParams failed: %v", err)
		}
		if params[1] != "0x1::object::Object<0x1::fungible_asset::Metadata>" {
			t.Errorf("Unexpected substituted param: %q", params[1])
		}
	})

	t.Run("fails on unresolved placeholders", func(t *testing.T) {
		_, err := resolveFunctionParams(step("wrap"), module)
		var unresolvedErr *UnresolvedTypeParamError
		if !errors.As(err, &unresolvedErr) {
			t.Fatalf("Expected UnresolvedTypeParamError, got %v", err)
		}
		if unresolvedErr.Param != "0x1::object::Object<T0>" {
			t.Errorf("Error should name the original parameter, got %q", unresolvedErr.Param)
		}
	})

	t.Run("fails on unknown function", func(t *testing.T) {
		_, err := resolveFunctionParams(step("mint"), module)
		var notFoundErr *FunctionNotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Fatalf("Expected FunctionNotFoundError, got %v", err)
		}
		if notFoundErr.Function != "mint" {
			t.Errorf("Error should name the function, got %q", notFoundErr.Function)
		}
	})
}
