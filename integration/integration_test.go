package integration

import (
	"context"
	"os"
	"testing"

	aptos "github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/bcs"

	movecompose "github.com/branched-services/go-movecompose"
	"github.com/branched-services/go-movecompose/engine"
	"github.com/branched-services/go-movecompose/rpc"
)

// End-to-end composition against a live fullnode and a real
// move-composer-engine binary. The transfer withdraws AptosCoin from the
// signer and deposits the withdrawn coins at 0x1, chaining the withdraw's
// return value into the deposit by label.
const transferPayload = `[
	{
		"label": "take",
		"function": "0x1::coin::withdraw",
		"type_arguments": ["0x1::aptos_coin::AptosCoin"],
		"args": [
			{"kind": "signer"},
			{"kind": "literal", "value": "205000000"}
		]
	},
	{
		"label": "give",
		"function": "0x1::coin::deposit",
		"type_arguments": ["0x1::aptos_coin::AptosCoin"],
		"args": [
			{"kind": "literal", "value": "0x1"},
			{"kind": "ref", "step": "take", "returnIndex": 0}
		]
	}
]`

func TestComposeTransferAgainstMainnet(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("Set INTEGRATION_TEST=1 to run integration tests")
	}

	ctx := context.Background()

	eng, err := engine.Start(ctx, os.Getenv("MOVE_COMPOSER_ENGINE_BIN"))
	if err != nil {
		t.Fatalf("Failed to start composition engine: %v", err)
	}
	defer eng.Close()

	baseURL := os.Getenv("APTOS_RPC_URL")
	fetcher := rpc.NewClient(baseURL)

	result, err := movecompose.Compose(ctx, []byte(transferPayload), fetcher, eng)
	if err != nil {
		t.Fatalf("Failed to compose script: %v", err)
	}

	if len(result.Script()) == 0 {
		t.Fatal("Expected a non-empty script")
	}
	t.Logf("Composed script: %d bytes", len(result.Script()))

	// The script must decode as a canonical (code, ty_args, args) triple.
	var script aptos.Script
	if err := bcs.Deserialize(&script, result.Script()); err != nil {
		t.Fatalf("Generated script is not canonical BCS: %v", err)
	}
	if len(script.Code) == 0 {
		t.Error("Expected compiled code in the script")
	}
	if len(script.Args) != 2 {
		t.Errorf("Expected 2 positional arguments, got %d", len(script.Args))
	}

	// And the script-payload rendering must carry the same argument count.
	payload, err := result.ScriptPayload()
	if err != nil {
		t.Fatalf("Failed to render script payload: %v", err)
	}
	t.Logf("Script payload:\n%s", payload)
}

func TestPluginDoctor(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("Set INTEGRATION_TEST=1 to run integration tests")
	}

	report := engine.Doctor(os.Getenv("MOVE_COMPOSER_ENGINE_BIN"))
	for _, check := range report.Checks {
		t.Logf("%s: ok=%v %s", check.Name, check.OK, check.Message)
	}
	if !report.AllOK() {
		t.Fatalf("Engine plugin is not healthy:\n%s", report.InstallHint)
	}
}
