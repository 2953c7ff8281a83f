package movecompose

import "strings"

// Generic placeholders are positional tokens of the form T0, T1, ... in a
// declared parameter type. Substitution is textual and token-bounded: a
// placeholder only matches when the characters on both sides of the `T` plus
// digit run are not identifier characters, so an identifier that merely
// contains such a substring (say `T0Coin`) is never rewritten, while the bare
// generic slot in `T0Coin<T0>` is.

// SubstituteTypeParams replaces each placeholder Ti in param with
// typeArguments[i]. Placeholders whose index is out of range are left
// untouched; ContainsTypeParams detects them afterwards.
func SubstituteTypeParams(param string, typeArguments []string) string {
	var out strings.Builder
	out.Grow(len(param))

	for i := 0; i < len(param); {
		digitsStart, end, ok := placeholderSpan(param, i)
		if !ok {
			out.WriteByte(param[i])
			i++
			continue
		}

		index, parsed := parsePlaceholderIndex(param[digitsStart:end])
		if parsed && index < len(typeArguments) {
			out.WriteString(typeArguments[index])
		} else {
			out.WriteString(param[i:end])
		}
		i = end
	}

	return out.String()
}

// ContainsTypeParams reports whether param still carries any generic
// placeholder token.
func ContainsTypeParams(param string) bool {
	for i := 0; i < len(param); i++ {
		if _, _, ok := placeholderSpan(param, i); ok {
			return true
		}
	}
	return false
}

// placeholderSpan matches a placeholder token starting at start. On a match
// it returns the digit run as [digitsStart, end).
func placeholderSpan(param string, start int) (digitsStart, end int, ok bool) {
	if param[start] != 'T' {
		return 0, 0, false
	}
	if start+1 >= len(param) || !isASCIIDigit(param[start+1]) {
		return 0, 0, false
	}
	if start > 0 && isIdentChar(param[start-1]) {
		return 0, 0, false
	}

	end = start + 1
	for end < len(param) && isASCIIDigit(param[end]) {
		end++
	}
	if end < len(param) && isIdentChar(param[end]) {
		return 0, 0, false
	}

	return start + 1, end, true
}

// parsePlaceholderIndex parses the digit run of a placeholder. Indices too
// large to represent are reported as unparsed so the token stays untouched.
func parsePlaceholderIndex(digits string) (int, bool) {
	const maxIndex = 1 << 30
	index := 0
	for i := 0; i < len(digits); i++ {
		index = index*10 + int(digits[i]-'0')
		if index > maxIndex {
			return 0, false
		}
	}
	return index, true
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

// resolveFunctionParams looks up the step's callee in the fetched module ABI
// and substitutes the step's type arguments into every declared parameter
// type. A parameter with residual placeholders is an error.
func resolveFunctionParams(step ResolvedStep, module *ModuleInfo) ([]string, error) {
	params, ok := module.Functions[step.Function.Name]
	if !ok {
		return nil, &FunctionNotFoundError{
			Function: step.Function.Name,
			Module:   step.Function.ModuleID(),
		}
	}

	resolved := make([]string, 0, len(params))
	for _, param := range params {
		substituted := SubstituteTypeParams(param, step.TypeArguments)
		if ContainsTypeParams(substituted) {
			return nil, &UnresolvedTypeParamError{
				Param:         param,
				TypeArguments: step.TypeArguments,
			}
		}
		resolved = append(resolved, substituted)
	}
	return resolved, nil
}
