package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a notification title against the stored schedules",
	Example: `  groupmute check --title "Family: dinner"
  groupmute check --title "Work" --at 2026-10-16T23:30:00+02:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, _ := cmd.Flags().GetString("package")
		title, _ := cmd.Flags().GetString("title")
		atStr, _ := cmd.Flags().GetString("at")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		blocking := a.usecases.Blocking
		at := blocking.Now()
		if atStr != "" {
			parsed, err := time.Parse(time.RFC3339, atStr)
			if err != nil {
				return fmt.Errorf("--at must be RFC3339: %w", err)
			}
			at = parsed.In(blocking.Location())
		}

		decision := blocking.Evaluate(context.Background(), pkg, title, at)

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"decision": decision,
				"at":       at.Format(time.RFC3339),
			})
		}

		out := cmd.OutOrStdout()
		if decision.Blocked {
			fmt.Fprintf(out, "MUTED at %s by schedule %q (group %q)\n", at.Format("Mon 15:04"), decision.Schedule, decision.Group)
		} else {
			fmt.Fprintf(out, "allowed at %s\n", at.Format("Mon 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("package", domain.PackageWhatsApp, "Posting app package")
	checkCmd.Flags().String("title", "", "Notification title")
	checkCmd.Flags().String("at", "", "RFC3339 time to evaluate at (default now)")
	checkCmd.Flags().Bool("json", false, "Print the decision as JSON")
	checkCmd.MarkFlagRequired("title")
}
