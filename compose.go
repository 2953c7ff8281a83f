package movecompose

import (
	"context"
	"encoding/json"
	"fmt"

	aptos "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/bcs"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CallArgumentKind discriminates the call-argument handle variants.
type CallArgumentKind uint8

const (
	// CallArgumentSigner is the transaction signer handle.
	CallArgumentSigner CallArgumentKind = iota

	// CallArgumentBytes is an inline literal byte blob.
	CallArgumentBytes

	// CallArgumentResult is a value produced by a prior call.
	CallArgumentResult
)

// CallArgument is an opaque handle representing one argument of a batched
// call: the signer, pre-encoded literal bytes, or a return value of an
// earlier call. Result handles are minted by Composer implementations and
// flow back into later calls unchanged.
type CallArgument struct {
	kind        CallArgumentKind
	signerIndex uint16
	data        []byte
	call        uint16
	returnIndex uint16
}

// NewSignerArgument returns the handle for the signer at the given position.
// Single-signer scripts use index 0.
func NewSignerArgument(index uint16) CallArgument {
	return CallArgument{kind: CallArgumentSigner, signerIndex: index}
}

// NewBytesArgument returns a handle wrapping inline BCS-encoded bytes.
func NewBytesArgument(data []byte) CallArgument {
	return CallArgument{kind: CallArgumentBytes, data: data}
}

// NewResultArgument returns a handle for return value returnIndex of the
// batched call at position call.
func NewResultArgument(call, returnIndex uint16) CallArgument {
	return CallArgument{kind: CallArgumentResult, call: call, returnIndex: returnIndex}
}

// Kind returns the handle variant.
func (c CallArgument) Kind() CallArgumentKind {
	return c.kind
}

// SignerIndex returns the signer position for CallArgumentSigner handles.
func (c CallArgument) SignerIndex() uint16 {
	return c.signerIndex
}

// Bytes returns the inline bytes for CallArgumentBytes handles.
func (c CallArgument) Bytes() []byte {
	return c.data
}

// Call returns the producing call index for CallArgumentResult handles.
func (c CallArgument) Call() uint16 {
	return c.call
}

// ReturnIndex returns the producer's return position for CallArgumentResult
// handles.
func (c CallArgument) ReturnIndex() uint16 {
	return c.returnIndex
}

// Composer assembles script bytecode from a sequence of typed calls. It is
// stateful: StoreModule loads module bytecode, each AddBatchedCall appends a
// call and mints handles for its return values, and GenerateBatchedCalls
// finalizes the script.
type Composer interface {
	StoreModule(bytecode []byte) error
	AddBatchedCall(module, function string, typeArguments []string, args []CallArgument) ([]CallArgument, error)
	GenerateBatchedCalls(withMetadata bool) ([]byte, error)
}

// Result is a finalized composition: the raw script bytes plus the literal
// arguments re-encoded in the node's script-payload convention.
type Result struct {
	script           []byte
	payloadArguments []any
}

// Script returns the raw script bytecode.
func (r *Result) Script() []byte {
	return r.script
}

// Hex returns the script bytecode as a 0x-prefixed hex string.
func (r *Result) Hex() string {
	return hexutil.Encode(r.script)
}

// PayloadArguments returns the accumulated script-payload renderings of every
// literal argument, in step then argument order.
func (r *Result) PayloadArguments() []any {
	return r.payloadArguments
}

// scriptPayloadJSON is the node's human-facing script submission shape.
type scriptPayloadJSON struct {
	Type string `json:"type"`
	Code struct {
		Bytecode string `json:"bytecode"`
	} `json:"code"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// ScriptPayload decodes the script bytes back into their canonical
// (code, type_args, args) triple and renders the pretty-printed
// script_payload JSON for node submission. The decoded positional argument
// count must equal the number of recorded literal arguments.
func (r *Result) ScriptPayload() ([]byte, error) {
	var script aptos.Script
	if err := bcs.Deserialize(&script, r.script); err != nil {
		return nil, fmt.Errorf("movecompose: failed to decode generated script output: %w", err)
	}

	if len(script.Args) != len(r.payloadArguments) {
		return nil, &PayloadCountError{
			ScriptArgs:  len(script.Args),
			PayloadArgs: len(r.payloadArguments),
		}
	}

	typeArguments := make([]string, 0, len(script.ArgTypes))
	for i := range script.ArgTypes {
		typeArguments = append(typeArguments, script.ArgTypes[i].String())
	}

	payload := scriptPayloadJSON{
		Type:          "script_payload",
		TypeArguments: typeArguments,
		Arguments:     r.payloadArguments,
	}
	payload.Code.Bytecode = hexutil.Encode(script.Code)

	return json.MarshalIndent(&payload, "", "  ")
}

// Compose runs the full pipeline over a raw JSON payload: parse, resolve,
// collect and fetch modules, encode literals, wire the calls through the
// composer, and finalize the script.
func Compose(ctx context.Context, payload []byte, fetcher ModuleFetcher, composer Composer, opts ...ComposeOption) (*Result, error) {
	steps, err := ParsePayload(payload)
	if err != nil {
		return nil, err
	}
	return ComposeSteps(ctx, steps, fetcher, composer, opts...)
}

// ComposeSteps is Compose for an already-decoded step list.
func ComposeSteps(ctx context.Context, steps []Step, fetcher ModuleFetcher, composer Composer, opts ...ComposeOption) (*Result, error) {
	cfg := defaultComposeConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	resolved, err := ResolveSteps(steps)
	if err != nil {
		return nil, err
	}

	modules := make(map[ModuleID]*ModuleInfo)
	for _, id := range CollectRequiredModules(resolved) {
		info, err := fetcher.FetchModule(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("movecompose: failed to fetch module %s: %w", id, err)
		}
		if err := composer.StoreModule(info.Bytecode); err != nil {
			return nil, fmt.Errorf("movecompose: failed to load module %s into composer: %w", id, err)
		}
		modules[id] = info
	}

	returnsByLabel := make(map[string][]CallArgument, len(resolved))
	var payloadArguments []any

	for _, step := range resolved {
		module, ok := modules[step.Function.ModuleID()]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrModuleNotLoaded, step.Function.ModuleID())
		}

		params, err := resolveFunctionParams(step, module)
		if err != nil {
			return nil, err
		}
		if len(params) != len(step.Args) {
			return nil, &ArgumentCountError{Step: step.Label, Expected: len(params), Got: len(step.Args)}
		}

		args := make([]CallArgument, 0, len(step.Args))
		for index, arg := range step.Args {
			param := params[index]

			switch arg.Kind() {
			case ArgKindSigner:
				if normalizeTypeName(param) != "&signer" {
					return nil, &SignerMismatchError{Step: step.Label, ArgIndex: index, Param: param}
				}
				args = append(args, NewSignerArgument(0))

			case ArgKindLiteral:
				encoded, payloadValue, err := encodeLiteral(param, arg.Value())
				if err != nil {
					return nil, &ArgumentError{Step: step.Label, ArgIndex: index, Param: param, Err: err}
				}
				payloadArguments = append(payloadArguments, payloadValue)
				args = append(args, NewBytesArgument(encoded))

			case ArgKindRef:
				returns, ok := returnsByLabel[arg.Step()]
				if !ok {
					return nil, &UnknownRefError{Step: step.Label, ArgIndex: index, Ref: arg.Step()}
				}
				if arg.ReturnIndex() >= len(returns) {
					return nil, &ReturnIndexError{
						Step:      step.Label,
						ArgIndex:  index,
						Ref:       arg.Step(),
						Index:     arg.ReturnIndex(),
						Available: len(returns),
					}
				}
				args = append(args, returns[arg.ReturnIndex()])
			}
		}

		returns, err := composer.AddBatchedCall(step.Function.ModuleString(), step.Function.Name, step.TypeArguments, args)
		if err != nil {
			return nil, &StepError{Label: step.Label, Function: step.Function.String(), Err: err}
		}
		returnsByLabel[step.Label] = returns
	}

	script, err := composer.GenerateBatchedCalls(cfg.includeMetadata)
	if err != nil {
		return nil, fmt.Errorf("movecompose: failed to generate batched script: %w", err)
	}

	return &Result{script: script, payloadArguments: payloadArguments}, nil
}
