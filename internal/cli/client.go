package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	addresscodec "github.com/LeJamon/goEscrowd/internal/codec/address-codec"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/core/tx/token"
	"github.com/LeJamon/goEscrowd/internal/crypto/algorithms/ed25519"
	"github.com/LeJamon/goEscrowd/internal/rpc"
)

const clientTimeout = 30 * time.Second

// keyFile is the on-disk form of a keypair written by keygen
type keyFile struct {
	Address string `json:"address"`
	Secret  string `json:"secret"`
}

// clientFlags are shared by every command talking to a running daemon
type clientFlags struct {
	url string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "rpc", "", "JSON-RPC endpoint (default http://<server.bind>:<server.port>/)")
}

func (f *clientFlags) client() *rpc.Client {
	url := f.url
	if url == "" {
		url = "http://" + cfg.ListenAddr() + "/"
	}
	return rpc.NewClient(url, clientTimeout)
}

func loadKey(path string) (*ed25519.Keypair, error) {
	if path == "" {
		return nil, fmt.Errorf("a key file is required (--key)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("decoding key file %s: %w", path, err)
	}
	kp, err := ed25519.NewED25519Provider().KeypairFromSecret(kf.Secret)
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	if kf.Address != "" && kf.Address != addresscodec.EncodeAddress(kp.PublicKey) {
		return nil, fmt.Errorf("key file %s: address does not match secret", path)
	}
	return kp, nil
}

func writeKey(path string, kp *ed25519.Keypair) error {
	data, err := json.MarshalIndent(keyFile{
		Address: addresscodec.EncodeAddress(kp.PublicKey),
		Secret:  kp.Secret(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// submit signs transaction with kp and sends it. A result other than
// tesSUCCESS is returned as an error after printing it.
func submit(ctx context.Context, client *rpc.Client, transaction tx.Transaction, kp *ed25519.Keypair) error {
	transaction.GetCommon().Nonce = uint64(time.Now().UnixNano())
	if err := tx.Sign(transaction, kp); err != nil {
		return err
	}
	result, err := client.Submit(ctx, transaction)
	if err != nil {
		return err
	}
	if err := printJSON(result); err != nil {
		return err
	}
	if result.EngineResult != tx.TesSUCCESS.String() {
		msg := result.EngineResultMessage
		if result.Error != "" {
			msg = result.Error
		}
		return fmt.Errorf("%s: %s", result.EngineResult, msg)
	}
	return nil
}

// call invokes method and prints its result
func call(ctx context.Context, client *rpc.Client, method string, params interface{}) error {
	var result map[string]interface{}
	if err := client.Call(ctx, method, params, &result); err != nil {
		return err
	}
	delete(result, "status")
	return printJSON(result)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// mintDecimals asks the daemon for the decimals of mint
func mintDecimals(ctx context.Context, client *rpc.Client, mint string) (uint8, error) {
	var info struct {
		Decimals uint8 `json:"decimals"`
	}
	if err := client.Call(ctx, "mint_info", map[string]interface{}{"mint": mint}, &info); err != nil {
		return 0, fmt.Errorf("mint %s: %w", mint, err)
	}
	return info.Decimals, nil
}

// parseAmount reads a UI amount such as "1.5", or raw units when raw is set
func parseAmount(ctx context.Context, client *rpc.Client, s, mint string, raw bool) (uint64, error) {
	if raw {
		return strconv.ParseUint(s, 10, 64)
	}
	decimals, err := mintDecimals(ctx, client, mint)
	if err != nil {
		return 0, err
	}
	amount, err := token.ParseAmount(s, decimals)
	if err != nil {
		return 0, fmt.Errorf("amount %q: %w", s, err)
	}
	return amount, nil
}

// addressOrKey resolves an address flag, falling back to the public key of
// a key file
func addressOrKey(address, keyPath string) (string, error) {
	if address != "" {
		if !addresscodec.IsValidAddress(address) {
			return "", fmt.Errorf("invalid address %q", address)
		}
		return address, nil
	}
	kp, err := loadKey(keyPath)
	if err != nil {
		return "", err
	}
	return addresscodec.EncodeAddress(kp.PublicKey), nil
}
