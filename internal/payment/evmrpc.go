package payment

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// httpClient is shared across every EVM RPC call, the same
// package-level-client idiom internal/cluster.PostJSON/GetJSON use in the
// teacher.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// rpcRequest is a JSON-RPC 2.0 envelope for an eth_call against the
// payment-vault contract's verify_data_payment method.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

// EVMRPCClient is an EVMVerifier backed by a single eth_call-shaped
// JSON-RPC request, grounded on internal/cluster's shared-http.Client +
// JSON-envelope idiom. It intentionally does not pull in a full chain
// client library (see DESIGN.md's C4 entry for why).
type EVMRPCClient struct {
	endpoint      string
	vaultContract string
}

// NewEVMRPCClient builds a client that submits verification calls to
// endpoint against the payment-vault contract at vaultContract.
func NewEVMRPCClient(endpoint, vaultContract string) *EVMRPCClient {
	return &EVMRPCClient{endpoint: endpoint, vaultContract: vaultContract}
}

// VerifyDataPayment submits digest and ownedQuoteHashes to the
// payment-vault contract's verify_data_payment method over the
// configured network's RPC endpoint. A JSON-RPC error whose message
// contains "invalid" is surfaced as ErrPaymentInvalid; any other failure
// is returned wrapped, to be classified as a generic Payment error by the
// caller.
func (c *EVMRPCClient) VerifyDataPayment(ctx context.Context, network string, ownedQuoteHashes [][32]byte, digest [32]byte) error {
	calldata := encodeVerifyCall(c.vaultContract, ownedQuoteHashes, digest)

	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  "eth_call",
		Params:  []interface{}{map[string]string{"to": c.vaultContract, "data": calldata}, "latest"},
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode eth_call request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build eth_call request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("eth_call request to %s (%s) failed: %w", c.endpoint, network, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode eth_call response: %w", err)
	}
	if rpcResp.Error != nil {
		if strings.Contains(strings.ToLower(rpcResp.Error.Message), "invalid") {
			return ErrPaymentInvalid
		}
		return fmt.Errorf("eth_call reverted: %s", rpcResp.Error.Message)
	}
	if len(rpcResp.Result) == 0 || rpcResp.Result == "0x" {
		return ErrPaymentInvalid
	}
	return nil
}

// encodeVerifyCall builds the calldata for verify_data_payment(bytes32[],
// bytes32) as a fixed placeholder 4-byte selector followed by the hex of
// each owned quote hash and then the digest, concatenated. No ABI offset
// or array-length words are written. A hand-rolled encoder is used rather
// than a full ABI library; see DESIGN.md.
func encodeVerifyCall(_ string, ownedQuoteHashes [][32]byte, digest [32]byte) string {
	var buf bytes.Buffer
	buf.WriteString("a1b2c3d4") // fixed 4-byte method selector placeholder
	for _, h := range ownedQuoteHashes {
		buf.WriteString(hex.EncodeToString(h[:]))
	}
	buf.WriteString(hex.EncodeToString(digest[:]))
	return "0x" + buf.String()
}
