package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"live-dashboard/prefs"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Read and write raw preference values",
}

var prefsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List stored preference keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []string{k})
			}
			return printOutput(cmd.OutOrStdout(), keys, []string{"Key"}, rows)
		})
	},
}

var prefsGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the JSON value stored under KEY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			raw, ok, err := store.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("preference %q is not set", args[0])
			}
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			if outputFmt == "table" || outputFmt == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return err
			}
			return printOutput(cmd.OutOrStdout(), v, nil, nil)
		})
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set KEY JSON",
	Short: `Store JSON under KEY, e.g. set dashboard-stock-symbols '["NFLX","NVDA"]'`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			return store.Set(args[0], json.RawMessage(args[1]))
		})
	},
}

var prefsDeleteCmd = &cobra.Command{
	Use:     "delete KEY",
	Aliases: []string{"rm"},
	Short:   "Remove KEY so its default applies again",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			return store.Delete(args[0])
		})
	},
}

func init() {
	prefsCmd.AddCommand(prefsKeysCmd, prefsGetCmd, prefsSetCmd, prefsDeleteCmd)
}
