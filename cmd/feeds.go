package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/editorial-harvester/internal/orchestrator"
)

func newFeedsCmd() *cobra.Command {
	var (
		rawSources []string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Fetches feed sources once and prints the merged batch",
		Long: `Fetches every source concurrently, merges the items newest first and
drops duplicate links. Sources come from repeated --source name=url flags or,
when none are given, from feeds.sources in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			sources, err := parseSources(rawSources)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				sources = appInstance.Config.Feeds.Sources
			}
			if len(sources) == 0 {
				return errors.New("no feed sources given or configured")
			}
			batch := appInstance.Feeds.WithTimeout(timeout).Run(cmd.Context(), sources)
			return printJSON(cmd.OutOrStdout(), batch)
		},
	}
	cmd.Flags().StringArrayVar(&rawSources, "source", nil, "feed source as name=url (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-source timeout (default from feeds.timeout_seconds)")
	return cmd
}

func parseSources(raw []string) ([]orchestrator.Source, error) {
	sources := make([]orchestrator.Source, 0, len(raw))
	for _, r := range raw {
		name, url, ok := strings.Cut(r, "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid --source %q: want name=url", r)
		}
		sources = append(sources, orchestrator.Source{Name: name, URL: url})
	}
	return sources, nil
}
