package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"live-dashboard/prefs"
	"live-dashboard/widget"
)

var widgetsCmd = &cobra.Command{
	Use:     "widgets",
	Aliases: []string{"widget", "w"},
	Short:   "List and edit the dashboard widgets",
}

// withStore opens the configured persistent store for the duration of fn.
func withStore(fn func(store prefs.Store) error) error {
	store, err := openPersistentStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

var widgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List widgets in render order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			widgets := widget.NewRegistry(store, widget.WithLogger(logger), widget.WithoutWriteBack()).List()
			rows := make([][]string, 0, len(widgets))
			for _, w := range widgets {
				rows = append(rows, []string{w.ID, string(w.Type), w.Title, formatConfig(w.Config)})
			}
			return printOutput(cmd.OutOrStdout(), widgets, []string{"ID", "Type", "Title", "Config"}, rows)
		})
	},
}

var widgetsAddCmd = &cobra.Command{
	Use:       "add TYPE",
	Short:     "Append a widget of TYPE",
	Args:      cobra.ExactArgs(1),
	ValidArgs: typeNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			w, err := widget.NewRegistry(store, widget.WithLogger(logger)).Add(widget.Type(args[0]))
			if err != nil {
				return fmt.Errorf("%w (want one of %s)", err, strings.Join(typeNames(), ", "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s widget %s\n", w.Type, w.ID)
			return nil
		})
	},
}

var widgetsRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Remove the widget with ID",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			return widget.NewRegistry(store, widget.WithLogger(logger)).Remove(args[0])
		})
	},
}

var widgetsConfigCmd = &cobra.Command{
	Use:   "config ID JSON",
	Short: `Replace the config of widget ID, e.g. config 2 '{"symbols":["NFLX"]}'`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var config map[string]any
		if err := json.Unmarshal([]byte(args[1]), &config); err != nil {
			return fmt.Errorf("config must be a JSON object: %w", err)
		}
		return withStore(func(store prefs.Store) error {
			_, err := widget.NewRegistry(store, widget.WithLogger(logger)).Configure(args[0], config)
			return err
		})
	},
}

var widgetsLayoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Show the grid layout for the current widget count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store prefs.Store) error {
			n := widget.NewRegistry(store, widget.WithLogger(logger), widget.WithoutWriteBack()).Len()
			l := widget.LayoutClassFor(n)
			rows := [][]string{{fmt.Sprint(n), fmt.Sprint(l.Columns), l.Class, fmt.Sprint(l.Empty)}}
			return printOutput(cmd.OutOrStdout(), l, []string{"Widgets", "Columns", "Class", "Empty"}, rows)
		})
	},
}

var widgetsCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the widget types that can be added",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		options := widget.Catalog()
		rows := make([][]string, 0, len(options))
		for _, o := range options {
			rows = append(rows, []string{string(o.Type), o.Label, o.Description})
		}
		return printOutput(cmd.OutOrStdout(), options, []string{"Type", "Label", "Description"}, rows)
	},
}

func typeNames() []string {
	var names []string
	for _, t := range widget.Types() {
		names = append(names, string(t))
	}
	return names
}

func formatConfig(config map[string]any) string {
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := json.Marshal(config[k])
		parts = append(parts, k+"="+string(v))
	}
	return strings.Join(parts, " ")
}

func init() {
	widgetsCmd.AddCommand(widgetsListCmd, widgetsAddCmd, widgetsRemoveCmd, widgetsConfigCmd, widgetsLayoutCmd, widgetsCatalogCmd)
}
