package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the mute log, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.usecases.MuteLog.List(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No muted notifications.")
			return nil
		}

		loc := a.usecases.Blocking.Location()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSTATUS\tGROUP\tMESSAGE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.Time().In(loc).Format("2006-01-02 15:04:05"), e.Status, e.GroupName, e.MessageText)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().IntP("limit", "n", 20, "Maximum number of entries (0 for all)")
}
