package cmd

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/stratsim/backtest"
	"github.com/rustyeddy/stratsim/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade journal data",
	Long: `Query and display records of a SQLite journal.

Subcommands:
  runs   - List recorded runs
  trades - List the trades of a run
  events - List the journal entries of a run
  trade  - Show a single trade

Examples:
  stratsim journal runs
  stratsim journal trades <run-id>
  stratsim journal trade <trade-id>`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalEventsCmd = &cobra.Command{
	Use:   "events <run-id>",
	Short: "List the journal entries of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEvents,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Show a single trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd, journalTradesCmd, journalEventsCmd, journalTradeCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./stratsim.db", "path to SQLite journal DB")
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Run", "Strategy", "Symbols", "Start", "End", "Trades", "End Balance"})
	for _, r := range runs {
		table.Append([]string{
			r.RunID,
			r.Strategy,
			r.Symbols,
			r.Start.Format(time.RFC3339),
			r.End.Format(time.RFC3339),
			fmt.Sprint(r.Trades),
			fmt.Sprintf("%.2f", r.EndBalance),
		})
	}
	table.Render()
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTrades(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	backtest.WriteTrades(cmd.OutOrStdout(), recs)
	return nil
}

func runJournalEvents(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListEvents(args[0])
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	backtest.WriteEvents(cmd.OutOrStdout(), recs)
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	backtest.WriteTrades(cmd.OutOrStdout(), []journal.TradeRecord{rec})
	return nil
}
