package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usereml/lightecho-stellar-oracle/internal/crypto"
	"github.com/usereml/lightecho-stellar-oracle/internal/rpc"
)

var (
	// Client flags
	rpcURL      string
	rpcSecrets  []string
	rpcSource   uint32
	rpcRawPrice bool
)

// rpcCmd represents the rpc command group
var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "RPC client commands",
	Long: `Call a running oracle server. Requests are signed with every --secret
(a private key as printed by keygen); mutations must be signed by the admin.
Signed requests carry the signer's next sequence, fetched from the server
unless the params already hold one.`,
}

func init() {
	rootCmd.AddCommand(rpcCmd)

	rpcCmd.PersistentFlags().StringVar(&rpcURL, "url", "", "server URL (default http://<server.bind>:<server.port>/)")
	rpcCmd.PersistentFlags().StringArrayVar(&rpcSecrets, "secret", nil, "private key hex used to sign the request (repeatable)")

	lastPriceCmd.Flags().Uint32Var(&rpcSource, "source", 0, "price source")
	addPriceCmd.Flags().Uint32Var(&rpcSource, "source", 0, "price source")
	addPriceCmd.Flags().BoolVar(&rpcRawPrice, "raw", false, "treat price as integer units instead of a decimal")

	rpcCmd.AddCommand(callCmd, pingCmd, serverInfoCmd, lastPriceCmd, addPriceCmd)
}

// newClient builds a client for --url, or for the configured listener
func newClient() (*rpc.Client, error) {
	url := rpcURL
	if url == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		url = fmt.Sprintf("http://%s/", cfg.Server.Address())
	}

	keys := make([]*crypto.KeyPair, 0, len(rpcSecrets))
	for _, secret := range rpcSecrets {
		kp, err := crypto.KeyPairFromPrivateHex(strings.TrimSpace(secret))
		if err != nil {
			return nil, fmt.Errorf("invalid --secret: %w", err)
		}
		keys = append(keys, kp)
	}
	return rpc.NewClient(url, keys...), nil
}

// executeMethod calls method on the server and pretty prints the result
func executeMethod(cmd *cobra.Command, method string, params map[string]interface{}) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	result, callErr := client.Call(cmd.Context(), method, params)
	if result != nil {
		delete(result, "status")
		prettyJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
	}
	return callErr
}

// parseParams reads a JSON object from an argument, or from stdin when it is "-"
func parseParams(arg string) (map[string]interface{}, error) {
	raw := []byte(arg)
	if arg == "-" {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(os.Stdin); err != nil {
			return nil, err
		}
		raw = buf.Bytes()
	}
	params := map[string]interface{}{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("params must be a JSON object: %w", err)
	}
	return params, nil
}

var callCmd = &cobra.Command{
	Use:   "call <method> [params-json|-]",
	Short: "Call any method with a JSON params object",
	Example: `  oracled rpc call lastprices '{"asset":"symbol:BTC","n":5}'
  oracled rpc call remove_prices '{"sources":[0],"end":1700000000}' --secret ED...`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var params map[string]interface{}
		if len(args) > 1 {
			var err error
			if params, err = parseParams(args[1]); err != nil {
				return err
			}
		}
		return executeMethod(cmd, args[0], params)
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod(cmd, "ping", nil)
	},
}

var serverInfoCmd = &cobra.Command{
	Use:   "server_info",
	Short: "Get server information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeMethod(cmd, "server_info", nil)
	},
}

var lastPriceCmd = &cobra.Command{
	Use:   "lastprice <asset>",
	Short: "Get the latest price of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{"asset": args[0]}
		if cmd.Flags().Changed("source") {
			params["source"] = rpcSource
			return executeMethod(cmd, "lastprice_by_source", params)
		}
		return executeMethod(cmd, "lastprice", params)
	},
}

var addPriceCmd = &cobra.Command{
	Use:   "add_price <asset> <price>",
	Short: "Publish a price (a decimal scaled by the oracle's decimals)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := map[string]interface{}{"asset": args[0], "source": rpcSource}
		if rpcRawPrice {
			params["price"] = args[1]
		} else {
			params["price_decimal"] = args[1]
		}
		return executeMethod(cmd, "add_price", params)
	},
}
