package movecompose

import (
	"context"
	"fmt"

	aptos "github.com/aptos-labs/aptos-go-sdk"
)

// ModuleID identifies an on-chain module by publishing address and name.
type ModuleID struct {
	Address aptos.AccountAddress
	Name    string
}

// String returns the `<address>::<name>` form.
func (m ModuleID) String() string {
	return fmt.Sprintf("%s::%s", m.Address.String(), m.Name)
}

// ModuleInfo is the fetched metadata the pipeline needs from one module: its
// bytecode for the composer, and the declared parameter type strings of each
// exposed function. Functions is empty for modules published without an ABI;
// such modules can still satisfy struct-only dependencies.
type ModuleInfo struct {
	Bytecode  []byte
	Functions map[string][]string
}

// ModuleFetcher retrieves module metadata from the chain. The pipeline calls
// FetchModule exactly once per distinct module id.
type ModuleFetcher interface {
	FetchModule(ctx context.Context, id ModuleID) (*ModuleInfo, error)
}

// CollectRequiredModules returns every module the composition needs loaded:
// the declaring module of each step's function, plus the declaring module of
// every struct tag reachable from the steps' type arguments. The result is
// deduplicated and ordered by first discovery.
func CollectRequiredModules(steps []ResolvedStep) []ModuleID {
	var order []ModuleID
	seen := make(map[ModuleID]struct{})

	add := func(id ModuleID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}

	for _, step := range steps {
		add(step.Function.ModuleID())
		for _, tag := range step.typeTags {
			walkStructModules(tag, add)
		}
	}
	return order
}

// walkStructModules visits tag in pre-order, reporting the module of every
// struct tag it contains. Generic struct type arguments nest arbitrarily, so
// vector elements, references, and struct type parameters are all recursed.
func walkStructModules(tag aptos.TypeTag, add func(ModuleID)) {
	switch inner := tag.Value.(type) {
	case *aptos.StructTag:
		add(ModuleID{Address: inner.Address, Name: inner.Module})
		for _, param := range inner.TypeParams {
			walkStructModules(param, add)
		}
	case *aptos.VectorTag:
		walkStructModules(inner.TypeParam, add)
	case *aptos.ReferenceTag:
		walkStructModules(inner.TypeParam, add)
	}
}
