package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change stored settings (applied on the next run)",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := st.Settings().All()
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}
		if len(all) == 0 {
			fmt.Println("No settings stored, using defaults.")
			return nil
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for _, k := range keys {
			fmt.Fprintf(w, "%s\t%s\n", k, all[k])
		}
		return w.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting, e.g. set smoothening 7",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		check := config.DefaultConfig()
		if err := check.ApplySettings(map[string]string{args[0]: args[1]}); err != nil {
			return err
		}
		if err := check.Validate(); err != nil {
			return err
		}
		return st.Settings().Set(args[0], args[1])
	},
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := st.Settings().Delete(args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("setting %s is not stored", args[0])
		}
		return err
	},
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd, settingsUnsetCmd)
	rootCmd.AddCommand(settingsCmd)
}
