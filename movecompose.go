// Package movecompose turns a declarative JSON description of a multi-step
// Move call sequence into a single executable script transaction.
//
// A payload is a JSON array of steps. Each step names an on-chain entry
// function, supplies concrete type arguments for the callee's generics, and
// lists its arguments: the transaction signer, a literal JSON value, or a
// reference to a return value produced by an earlier step. Steps therefore
// form a call-dependency graph that executes atomically inside one script.
//
// # Pipeline
//
// Composition runs as a linear pipeline:
//
//  1. ParsePayload decodes the step array and its tagged argument unions.
//  2. ResolveSteps validates labels, function identifiers, type-argument
//     tags, and backward-only step references.
//  3. CollectRequiredModules walks every function id and every struct tag
//     reachable from the declared type arguments.
//  4. A ModuleFetcher retrieves bytecode and exposed-function ABI once per
//     module; each module is loaded into the Composer.
//  5. For every step, the callee's declared parameter types have their T0,
//     T1, ... placeholders substituted with the step's type arguments, and
//     each literal argument is BCS-encoded for the resolved parameter type.
//  6. The Composer links the calls and emits the final script bytes.
//
// # Basic Usage
//
// Compose drives the whole pipeline given the two collaborators:
//
//	fetcher := rpc.NewClient(rpc.DefaultBaseURL)
//	eng, err := engine.Start(ctx, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	result, err := movecompose.Compose(ctx, payload, fetcher, eng)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Hex())
//
// # Collaborators
//
// The package owns no I/O. Module metadata arrives through the ModuleFetcher
// interface (see the rpc package for the node-API client) and script assembly
// happens behind the Composer interface (see the engine package for the
// native plugin client).
//
// # Literal Encoding
//
// Literal arguments are encoded twice from a single type-directed dispatch:
// once as BCS bytes for the composition engine, and once in the node's
// script-payload JSON convention (integers of 64 bits and wider become
// decimal strings, addresses and byte vectors become 0x hex strings).
package movecompose
