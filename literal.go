package movecompose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	aptos "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/bcs"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// EncodeLiteral encodes a literal JSON value into the BCS bytes a VM
// argument of the given parameter type requires.
func EncodeLiteral(paramType string, value json.RawMessage) ([]byte, error) {
	encoded, _, err := encodeLiteral(paramType, value)
	return encoded, err
}

// PayloadLiteral renders a literal JSON value in the node's script-payload
// submission convention: integers of 64 bits and wider become decimal
// strings, addresses become canonical hex literals, byte vectors become 0x
// hex strings.
func PayloadLiteral(paramType string, value json.RawMessage) (any, error) {
	_, payload, err := encodeLiteral(paramType, value)
	return payload, err
}

// encodeLiteral is the single type-directed dispatch behind both encoding
// contracts: it returns the BCS bytes and the script-payload rendering of one
// literal for the resolved parameter type.
func encodeLiteral(paramType string, value json.RawMessage) ([]byte, any, error) {
	expected := normalizeTypeName(paramType)
	expected = strings.TrimPrefix(expected, "&mut")
	expected = strings.TrimPrefix(expected, "&")
	if strings.Contains(expected, "&") {
		return nil, nil, &UnsupportedTypeError{Type: paramType}
	}

	switch {
	case expected == "bool":
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return nil, nil, &LiteralError{Type: "bool", Msg: "expected boolean literal"}
		}
		encoded, err := serializeBCS(func(ser *bcs.Serializer) { ser.Bool(b) })
		return encoded, b, err

	case expected == "u8" || expected == "u16" || expected == "u32":
		return encodeSmallUint(expected, value)

	case expected == "u64":
		text, err := numericText(value, "u64")
		if err != nil {
			return nil, nil, err
		}
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, nil, &LiteralError{Type: "u64", Raw: text, Msg: err.Error()}
		}
		encoded, err := serializeBCS(func(ser *bcs.Serializer) { ser.U64(v) })
		return encoded, strconv.FormatUint(v, 10), err

	case expected == "u128" || expected == "u256":
		return encodeBigUint(expected, value)

	case expected == "i8" || expected == "i16" || expected == "i32":
		return encodeSmallInt(expected, value)

	case expected == "i64":
		text, err := numericText(value, "i64")
		if err != nil {
			return nil, nil, err
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, nil, &LiteralError{Type: "i64", Raw: text, Msg: err.Error()}
		}
		encoded, err := serializeBCS(func(ser *bcs.Serializer) { ser.U64(uint64(v)) })
		return encoded, strconv.FormatInt(v, 10), err

	case expected == "i128" || expected == "i256":
		return encodeBigInt(expected, value)

	case expected == "address" || isObjectType(expected):
		// Object<T> is a single-field wrapper over address.
		address, err := parseAddressLiteral(value)
		if err != nil {
			return nil, nil, err
		}
		encoded, err := serializeBCS(func(ser *bcs.Serializer) { address.MarshalBCS(ser) })
		return encoded, address.String(), err

	case expected == "vector<u8>":
		raw, err := parseBytesLiteral(value)
		if err != nil {
			return nil, nil, err
		}
		encoded, err := serializeBCS(func(ser *bcs.Serializer) { ser.WriteBytes(raw) })
		return encoded, hexutil.Encode(raw), err

	case isStringWrapperType(expected):
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, nil, &LiteralError{Type: "string", Msg: "expected string literal"}
		}
		encoded, err := serializeBCS(func(ser *bcs.Serializer) { ser.WriteBytes([]byte(s)) })
		return encoded, s, err

	default:
		return nil, nil, &UnsupportedTypeError{Type: paramType}
	}
}

func encodeSmallUint(typeName string, value json.RawMessage) ([]byte, any, error) {
	text, err := numericText(value, typeName)
	if err != nil {
		return nil, nil, err
	}
	bits := map[string]int{"u8": 8, "u16": 16, "u32": 32}[typeName]
	v, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return nil, nil, &LiteralError{Type: typeName, Raw: text, Msg: err.Error()}
	}
	encoded, err := serializeBCS(func(ser *bcs.Serializer) {
		switch typeName {
		case "u8":
			ser.U8(uint8(v))
		case "u16":
			ser.U16(uint16(v))
		case "u32":
			ser.U32(uint32(v))
		}
	})
	return encoded, v, err
}

func encodeBigUint(typeName string, value json.RawMessage) ([]byte, any, error) {
	text, err := numericText(value, typeName)
	if err != nil {
		return nil, nil, err
	}
	v, err := uint256.FromDecimal(text)
	if err != nil {
		return nil, nil, &LiteralError{Type: typeName, Raw: text, Msg: err.Error()}
	}
	if typeName == "u128" && v.BitLen() > 128 {
		return nil, nil, &LiteralError{Type: typeName, Raw: text, Msg: "value out of range"}
	}
	encoded, err := serializeBCS(func(ser *bcs.Serializer) {
		if typeName == "u128" {
			ser.U128(*v.ToBig())
		} else {
			ser.U256(*v.ToBig())
		}
	})
	return encoded, v.Dec(), err
}

func encodeSmallInt(typeName string, value json.RawMessage) ([]byte, any, error) {
	text, err := numericText(value, typeName)
	if err != nil {
		return nil, nil, err
	}
	bits := map[string]int{"i8": 8, "i16": 16, "i32": 32}[typeName]
	v, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return nil, nil, &LiteralError{Type: typeName, Raw: text, Msg: err.Error()}
	}
	encoded, err := serializeBCS(func(ser *bcs.Serializer) {
		switch typeName {
		case "i8":
			ser.U8(uint8(v))
		case "i16":
			ser.U16(uint16(v))
		case "i32":
			ser.U32(uint32(v))
		}
	})
	return encoded, v, err
}

func encodeBigInt(typeName string, value json.RawMessage) ([]byte, any, error) {
	text, err := numericText(value, typeName)
	if err != nil {
		return nil, nil, err
	}
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, nil, &LiteralError{Type: typeName, Raw: text, Msg: "not a decimal integer"}
	}

	bits := 128
	if typeName == "i256" {
		bits = 256
	}
	if !fitsSigned(v, bits) {
		return nil, nil, &LiteralError{Type: typeName, Raw: text, Msg: "value out of range"}
	}

	le := twosComplementLE(v, bits/8)
	encoded, err := serializeBCS(func(ser *bcs.Serializer) { ser.FixedBytes(le) })
	return encoded, v.String(), err
}

// fitsSigned reports whether v fits a two's complement integer of the given
// bit width.
func fitsSigned(v *big.Int, bits int) bool {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	if v.Sign() < 0 {
		return v.CmpAbs(limit) <= 0
	}
	return v.Cmp(limit) < 0
}

// twosComplementLE renders v as a little-endian two's complement integer of
// byteLen bytes. v must already fit the width.
func twosComplementLE(v *big.Int, byteLen int) []byte {
	u := new(big.Int).Set(v)
	if u.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(byteLen*8))
		u.Add(u, mod)
	}
	buf := make([]byte, byteLen)
	u.FillBytes(buf)
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// numericText extracts the decimal text of a numeric literal. String
// literals may carry a trailing `n` big-integer suffix, which is stripped;
// empty strings are rejected. JSON numbers pass through as written so 64-bit
// and wider values never round-trip through float64.
func numericText(value json.RawMessage, typeName string) (string, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return "", &LiteralError{Type: typeName, Msg: "expected numeric literal as number or string"}
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", &LiteralError{Type: typeName, Msg: "expected numeric literal as number or string"}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return "", &LiteralError{Type: typeName, Msg: "empty numeric string literal"}
		}
		return strings.TrimSuffix(s, "n"), nil
	}

	if trimmed[0] == '-' || isASCIIDigit(trimmed[0]) {
		return string(trimmed), nil
	}

	return "", &LiteralError{Type: typeName, Msg: "expected numeric literal as number or string"}
}

// parseBytesLiteral accepts a vector<u8> literal as either a 0x-prefixed hex
// string or a JSON array of per-element u8 literals.
func parseBytesLiteral(value json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil, &LiteralError{Type: "vector<u8>", Msg: "expected 0x-prefixed string or array of u8"}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, &LiteralError{Type: "vector<u8>", Msg: "expected 0x-prefixed string or array of u8"}
		}
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, "0x") {
			return nil, &LiteralError{Type: "vector<u8>", Raw: s, Msg: "string literal must be hex with 0x prefix"}
		}
		raw, err := hexutil.Decode(s)
		if err != nil {
			return nil, &LiteralError{Type: "vector<u8>", Raw: s, Msg: err.Error()}
		}
		return raw, nil

	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, &LiteralError{Type: "vector<u8>", Msg: "expected 0x-prefixed string or array of u8"}
		}
		raw := make([]byte, len(elems))
		for i, elem := range elems {
			text, err := numericText(elem, "u8")
			if err != nil {
				return nil, &LiteralError{Type: "vector<u8>", Msg: fmt.Sprintf("element at index %d is not a valid u8", i)}
			}
			v, err := strconv.ParseUint(text, 10, 8)
			if err != nil {
				return nil, &LiteralError{Type: "vector<u8>", Raw: text, Msg: fmt.Sprintf("element at index %d is not a valid u8", i)}
			}
			raw[i] = byte(v)
		}
		return raw, nil

	default:
		return nil, &LiteralError{Type: "vector<u8>", Msg: "expected 0x-prefixed string or array of u8"}
	}
}

// parseAddressLiteral accepts an address literal as a 0x hex literal or a
// bare textual address.
func parseAddressLiteral(value json.RawMessage) (aptos.AccountAddress, error) {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return aptos.AccountAddress{}, &LiteralError{Type: "address", Msg: "expected address literal as string"}
	}
	s = strings.TrimSpace(s)

	var address aptos.AccountAddress
	if err := address.ParseStringRelaxed(s); err != nil {
		return aptos.AccountAddress{}, &LiteralError{Type: "address", Raw: s, Msg: err.Error()}
	}
	return address, nil
}

// normalizeTypeName strips every whitespace character from a declared
// parameter type string.
func normalizeTypeName(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, value)
}

func isObjectType(value string) bool {
	return strings.HasPrefix(value, "0x1::object::Object<") && strings.HasSuffix(value, ">")
}

func isStringWrapperType(value string) bool {
	return value == "0x1::string::String" || value == "0x1::ascii::String"
}

func serializeBCS(write func(ser *bcs.Serializer)) ([]byte, error) {
	ser := &bcs.Serializer{}
	write(ser)
	if err := ser.Error(); err != nil {
		return nil, fmt.Errorf("movecompose: failed to BCS-encode literal value: %w", err)
	}
	return ser.ToBytes(), nil
}
