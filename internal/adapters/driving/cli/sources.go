package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List and toggle suggestion sources",
	RunE:  runSourcesList,
}

var sourcesEnableCmd = &cobra.Command{
	Use:   "enable [id]",
	Short: "Enable a suggestion source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSourceEnabled(cmd, domain.SourceID(args[0]), true)
	},
}

var sourcesDisableCmd = &cobra.Command{
	Use:   "disable [id]",
	Short: "Disable a suggestion source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSourceEnabled(cmd, domain.SourceID(args[0]), false)
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesEnableCmd)
	sourcesCmd.AddCommand(sourcesDisableCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if registry == nil {
		return errors.New("source registry not configured")
	}

	enabled := make(map[domain.SourceID]bool)
	for _, src := range registry.EnabledSources() {
		enabled[src.Info().ID] = true
	}

	web, hasWeb := registry.WebSource()

	cmd.Println("Sources:")
	for _, src := range registry.Sources() {
		info := src.Info()
		state := "disabled"
		if enabled[info.ID] {
			state = "enabled"
		}
		marker := ""
		if hasWeb && web.Info().ID == info.ID {
			marker = " (web)"
		}
		cmd.Printf("  %-20s %-10s %s%s\n", info.ID, state, info.Label, marker)
	}
	return nil
}

// setSourceEnabled toggles the source now and persists the choice for
// future runs.
func setSourceEnabled(cmd *cobra.Command, id domain.SourceID, enabled bool) error {
	if registry == nil {
		return errors.New("source registry not configured")
	}
	if _, ok := registry.Source(id); !ok {
		return fmt.Errorf("unknown source %q", id)
	}

	registry.SetEnabled(id, enabled)
	key := "sources." + id.String() + ".enabled"
	if err := cfgStore.Set(key, enabled); err != nil {
		return fmt.Errorf("persisting source state: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	cmd.Printf("Source %s %s.\n", id, state)
	return nil
}
