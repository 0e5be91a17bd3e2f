package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/airgaplab/airgap/pkg/state"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List recorded blocked network attempts",
	Long: `List blocked attempts recorded in the violation store. Output is a
table on a terminal and JSON lines otherwise.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("db", "", "Violation store path (default report_db_path from config, then ~/.airgap/report.db)")
	reportCmd.Flags().Int("limit", 50, "Maximum number of violations to show (0 = all)")
	viper.BindPFlag("report.db", reportCmd.Flags().Lookup("db"))
	viper.BindPFlag("report.limit", reportCmd.Flags().Lookup("limit"))
	rootCmd.AddCommand(reportCmd)
}

func reportDBPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		return path, nil
	}
	defaults, err := loadDefaults()
	if err != nil {
		return "", err
	}
	if defaults.ReportDBPath != "" {
		return defaults.ReportDBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".airgap", "report.db"), nil
}

func runReport(cmd *cobra.Command, args []string) error {
	path, err := reportDBPath(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := state.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	violations, err := store.List(limit)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		for _, v := range violations {
			if err := enc.Encode(v); err != nil {
				return err
			}
		}
		return nil
	}

	if len(violations) == 0 {
		fmt.Println("No violations recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tHOST\tPORT\tCALLER\tPATTERN\tSESSION")
	for _, v := range violations {
		port := fmt.Sprintf("%d", v.Port)
		if v.Port < 0 {
			port = "dns"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Timestamp.Format("2006-01-02 15:04:05"),
			v.Host, port, v.Caller, v.Pattern, shortID(v.SessionID))
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
