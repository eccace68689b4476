package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driving"
	"github.com/omnibar-labs/omnibar-cli/internal/core/services"
)

var (
	suggestAll  bool
	suggestJSON bool
	suggestWait time.Duration
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "Print suggestions for a query",
	Long: `Runs one suggestion round across all enabled sources and prints
the merged list. Promoted sources are shown by default; pass --all to
include the additional bucket.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestAll, "all", false, "include suggestions from additional sources")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")
	suggestCmd.Flags().DurationVar(&suggestWait, "wait", 3*time.Second, "maximum time to wait for slow sources")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if session == nil {
		return errors.New("suggest session not configured")
	}
	query := args[0]

	session.SetQuery(context.Background(), query)
	waitForResults(session, suggestWait)

	suggestions := session.Snapshot(suggestAll)
	if suggestJSON {
		return outputSuggestJSON(cmd, suggestions)
	}
	moreHint := !suggestAll && session.MoreAvailable()
	return outputSuggestTable(cmd, suggestions, moreHint)
}

// waitForResults blocks until every dispatched source completed or the
// deadline passed. Dispatch is delayed by the prefill timer, so that is
// waited out first.
func waitForResults(s driving.SuggestSession, maxWait time.Duration) {
	settings := services.SettingsFromConfig(cfgStore)
	time.Sleep(settings.PrefillDelay + 20*time.Millisecond)

	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		if !s.IsResultsPending() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func outputSuggestJSON(cmd *cobra.Command, suggestions []domain.Suggestion) error {
	data, err := json.MarshalIndent(suggestions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSuggestTable(cmd *cobra.Command, suggestions []domain.Suggestion, moreHint bool) error {
	if len(suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}

	for i, s := range suggestions {
		cmd.Printf("  [%d] %s (%s)\n", i+1, s.Title, s.SourceID)
		if s.Subtitle != "" {
			cmd.Printf("      %s\n", s.Subtitle)
		}
	}
	if moreHint {
		cmd.Println()
		cmd.Println("More sources available; rerun with --all.")
	}
	return nil
}
