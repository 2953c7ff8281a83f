package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/ethereum/go-ethereum/common/hexutil"

	movecompose "github.com/branched-services/go-movecompose"
)

// ErrNotInstalled indicates the engine binary could not be discovered.
var ErrNotInstalled = errors.New("engine: " + BinaryName + " plugin is not installed")

// Client is a running engine subprocess. Requests are newline-delimited JSON
// objects on the plugin's stdin; each produces exactly one response line on
// its stdout. Client implements movecompose.Composer.
type Client struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// Start discovers the engine binary and launches it. The explicit path, if
// non-empty, wins over the environment, plugin directory, and PATH.
func Start(ctx context.Context, explicitBin string) (*Client, error) {
	path, _ := resolveBinary(explicitBin)
	if path == "" {
		return nil, fmt.Errorf("%w\n%s", ErrNotInstalled, InstallHint())
	}

	cmd := exec.CommandContext(ctx, path, "serve")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine: failed to open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine: failed to start %s: %w", path, err)
	}

	return &Client{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

// Close shuts the plugin down by closing its stdin and waits for it to exit.
func (c *Client) Close() error {
	if err := c.stdin.Close(); err != nil {
		_ = c.cmd.Process.Kill()
		return fmt.Errorf("engine: failed to close plugin stdin: %w", err)
	}
	if err := c.cmd.Wait(); err != nil {
		return fmt.Errorf("engine: plugin exited abnormally: %w", err)
	}
	return nil
}

// request is one protocol line sent to the plugin.
type request struct {
	Op            string    `json:"op"`
	Bytecode      string    `json:"bytecode,omitempty"`
	Module        string    `json:"module,omitempty"`
	Function      string    `json:"function,omitempty"`
	TypeArguments []string  `json:"type_arguments,omitempty"`
	Args          []wireArg `json:"args,omitempty"`
	WithMetadata  *bool     `json:"with_metadata,omitempty"`
}

// response is one protocol line received from the plugin.
type response struct {
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
	Returns []wireArg `json:"returns,omitempty"`
	Script  string    `json:"script,omitempty"`
}

// wireArg is the protocol form of a call-argument handle.
type wireArg struct {
	Kind        string  `json:"kind"`
	Signer      *uint16 `json:"signer,omitempty"`
	Bytes       string  `json:"bytes,omitempty"`
	Call        *uint16 `json:"call,omitempty"`
	ReturnIndex *uint16 `json:"return_index,omitempty"`
}

func toWireArg(arg movecompose.CallArgument) (wireArg, error) {
	switch arg.Kind() {
	case movecompose.CallArgumentSigner:
		index := arg.SignerIndex()
		return wireArg{Kind: "signer", Signer: &index}, nil
	case movecompose.CallArgumentBytes:
		return wireArg{Kind: "bytes", Bytes: hexutil.Encode(arg.Bytes())}, nil
	case movecompose.CallArgumentResult:
		call, index := arg.Call(), arg.ReturnIndex()
		return wireArg{Kind: "result", Call: &call, ReturnIndex: &index}, nil
	default:
		return wireArg{}, fmt.Errorf("engine: unknown call argument kind %d", arg.Kind())
	}
}

func fromWireArg(arg wireArg) (movecompose.CallArgument, error) {
	switch arg.Kind {
	case "signer":
		if arg.Signer == nil {
			return movecompose.CallArgument{}, fmt.Errorf("engine: signer handle is missing its index")
		}
		return movecompose.NewSignerArgument(*arg.Signer), nil
	case "bytes":
		raw, err := hexutil.Decode(arg.Bytes)
		if err != nil {
			return movecompose.CallArgument{}, fmt.Errorf("engine: invalid bytes handle: %w", err)
		}
		return movecompose.NewBytesArgument(raw), nil
	case "result":
		if arg.Call == nil || arg.ReturnIndex == nil {
			return movecompose.CallArgument{}, fmt.Errorf("engine: result handle is missing call or return_index")
		}
		return movecompose.NewResultArgument(*arg.Call, *arg.ReturnIndex), nil
	default:
		return movecompose.CallArgument{}, fmt.Errorf("engine: unknown call argument kind %q", arg.Kind)
	}
}

// StoreModule loads module bytecode into the engine.
func (c *Client) StoreModule(bytecode []byte) error {
	_, err := c.roundTrip(request{Op: "store_module", Bytecode: hexutil.Encode(bytecode)})
	return err
}

// AddBatchedCall appends one call to the script under composition and
// returns the handles for its return values.
func (c *Client) AddBatchedCall(module, function string, typeArguments []string, args []movecompose.CallArgument) ([]movecompose.CallArgument, error) {
	wireArgs := make([]wireArg, 0, len(args))
	for _, arg := range args {
		converted, err := toWireArg(arg)
		if err != nil {
			return nil, err
		}
		wireArgs = append(wireArgs, converted)
	}

	resp, err := c.roundTrip(request{
		Op:            "add_batched_call",
		Module:        module,
		Function:      function,
		TypeArguments: typeArguments,
		Args:          wireArgs,
	})
	if err != nil {
		return nil, err
	}

	returns := make([]movecompose.CallArgument, 0, len(resp.Returns))
	for _, ret := range resp.Returns {
		converted, err := fromWireArg(ret)
		if err != nil {
			return nil, err
		}
		returns = append(returns, converted)
	}
	return returns, nil
}

// GenerateBatchedCalls finalizes the composition and returns the script
// bytes.
func (c *Client) GenerateBatchedCalls(withMetadata bool) ([]byte, error) {
	resp, err := c.roundTrip(request{Op: "generate_batched_calls", WithMetadata: &withMetadata})
	if err != nil {
		return nil, err
	}
	script, err := hexutil.Decode(resp.Script)
	if err != nil {
		return nil, fmt.Errorf("engine: invalid script hex in response: %w", err)
	}
	return script, nil
}

func (c *Client) roundTrip(req request) (response, error) {
	line, err := json.Marshal(req)
	if err != nil {
		return response{}, fmt.Errorf("engine: failed to encode %s request: %w", req.Op, err)
	}
	line = append(line, '\n')
	if _, err := c.stdin.Write(line); err != nil {
		return response{}, fmt.Errorf("engine: failed to send %s request: %w", req.Op, err)
	}

	raw, err := c.stdout.ReadBytes('\n')
	if err != nil {
		return response{}, fmt.Errorf("engine: failed to read %s response: %w", req.Op, err)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return response{}, fmt.Errorf("engine: invalid %s response: %w", req.Op, err)
	}
	if !resp.OK {
		return response{}, fmt.Errorf("engine: %s failed: %s", req.Op, resp.Error)
	}
	return resp, nil
}

var _ movecompose.Composer = (*Client)(nil)
