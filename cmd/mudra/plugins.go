package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect and run plugins",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := discoverPlugins()
		if err != nil {
			return err
		}
		plugins := m.List()
		if len(plugins) == 0 {
			fmt.Printf("No plugins found in %s.\n", m.PluginDir())
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tACTIONS")
		fmt.Fprintln(w, "----\t-------\t-------")
		for _, p := range plugins {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Manifest.Name, p.Manifest.Version, strings.Join(p.Manifest.Actions, ", "))
		}
		return w.Flush()
	},
}

var execParams string

var pluginsExecCmd = &cobra.Command{
	Use:   "exec <plugin> <action>",
	Short: "Run one plugin action and print its response",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := discoverPlugins()
		if err != nil {
			return err
		}
		p, err := m.Get(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if !p.Supports(args[1]) {
			return fmt.Errorf("%s does not support %s", args[0], args[1])
		}

		req := &plugin.Request{Action: args[1]}
		if execParams != "" {
			if !json.Valid([]byte(execParams)) {
				return errors.New("--params must be valid JSON")
			}
			req.Params = json.RawMessage(execParams)
		}

		resp, err := plugin.NewExecutor(plugin.DefaultTimeout).Execute(cmd.Context(), p, req)
		if err != nil {
			return err
		}
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		if !resp.Success {
			return fmt.Errorf("plugin reported failure: %s", resp.Error)
		}
		return nil
	},
}

func init() {
	pluginsExecCmd.Flags().StringVar(&execParams, "params", "", `action parameters as JSON, e.g. '{"level": 40}'`)
	pluginsCmd.AddCommand(pluginsListCmd, pluginsExecCmd)
	rootCmd.AddCommand(pluginsCmd)
}

func discoverPlugins() (*plugin.Manager, error) {
	m := plugin.NewManager(cfg.PluginDir)
	if err := m.Discover(); err != nil {
		return nil, fmt.Errorf("failed to discover plugins: %w", err)
	}
	return m, nil
}
