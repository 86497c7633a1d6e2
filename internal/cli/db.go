package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usereml/lightecho-stellar-oracle/internal/oracle"
	"github.com/usereml/lightecho-stellar-oracle/internal/storage/database"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the contract state offline",
	Long:  `Read the configured backend directly. Stop the server first when using an embedded backend.`,
}

var dbDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the decoded contract slots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		manager, db, err := openState(cfg)
		if err != nil {
			return err
		}
		defer manager.Close()

		state, err := dumpState(cmd.Context(), db, cfg.Oracle.Namespace)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbDumpCmd)
}

// priceSlotSummary describes the prices slot without printing every observation
type priceSlotSummary struct {
	EncodedBytes int                                  `json:"encoded_bytes"`
	Compressed   bool                                 `json:"compressed"`
	Observations int                                  `json:"observations"`
	Latest       map[uint32]map[string]oracle.PriceData `json:"latest"`
}

// dumpState walks the slots stored under namespace and decodes each one
func dumpState(ctx context.Context, db database.DB, namespace string) (map[string]interface{}, error) {
	prefix := namespace + "/"
	// '0' is the byte after '/', so this bounds the namespace exactly
	it, err := db.Iterator(ctx, []byte(prefix), []byte(namespace+"0"))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	state := map[string]interface{}{}
	for it.Next() {
		slot := strings.TrimPrefix(string(it.Key()), prefix)
		value, err := decodeSlot(slot, it.Value())
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", slot, err)
		}
		state[slot] = value
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return state, nil
}

func decodeSlot(slot string, data []byte) (interface{}, error) {
	switch slot {
	case oracle.KeyBase.String():
		return oracle.DecodeAsset(data)
	case oracle.KeyAdmin.String():
		return oracle.DecodeAddress(data)
	case oracle.KeyDecimals.String(), oracle.KeyResolution.String():
		return oracle.DecodeUint32(data)
	case oracle.KeyPrices.String():
		prices, err := oracle.DecodePrices(data)
		if err != nil {
			return nil, err
		}
		summary := priceSlotSummary{
			EncodedBytes: len(data),
			Compressed:   len(data) > 0 && data[0] != 0,
			Observations: prices.Len(),
			Latest:       map[uint32]map[string]oracle.PriceData{},
		}
		for _, source := range prices.Sources() {
			latest := map[string]oracle.PriceData{}
			for _, asset := range prices.AssetsOf(source) {
				if pd, ok := oracle.Latest(prices.History(source, asset)); ok {
					latest[asset.String()] = pd
				}
			}
			summary.Latest[source] = latest
		}
		return summary, nil
	case oracle.KeySequences.String():
		return oracle.DecodeSequences(data)
	default:
		return fmt.Sprintf("%d bytes", len(data)), nil
	}
}
