package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/store"
)

var calibrationsOpts struct {
	limit   int
	session string
}

var calibrationsCmd = &cobra.Command{
	Use:   "calibrations",
	Short: "List recorded calibrations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			list []*store.Calibration
			err  error
		)
		if calibrationsOpts.session != "" {
			list, err = st.Calibrations().ListBySession(calibrationsOpts.session)
		} else {
			list, err = st.Calibrations().List(calibrationsOpts.limit)
		}
		if err != nil {
			return fmt.Errorf("failed to list calibrations: %w", err)
		}
		printCalibrations(list)
		return nil
	},
}

func init() {
	calibrationsCmd.Flags().IntVarP(&calibrationsOpts.limit, "limit", "n", 20, "maximum number of records, 0 for all")
	calibrationsCmd.Flags().StringVar(&calibrationsOpts.session, "session", "", "only show one engine session")
	rootCmd.AddCommand(calibrationsCmd)
}

func printCalibrations(list []*store.Calibration) {
	if len(list) == 0 {
		fmt.Println("No calibrations recorded.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CREATED\tSESSION\tCLICK\tVOL MIN\tVOL MAX")
	fmt.Fprintln(w, "-------\t-------\t-----\t-------\t-------")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04:05"), c.SessionID, c.ClickDistance, c.VolMinDist, c.VolMaxDist)
	}
	w.Flush()
}
