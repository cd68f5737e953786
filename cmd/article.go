package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JakeFAU/editorial-harvester/internal/article"
)

type articleBatch struct {
	Success bool             `json:"success"`
	Results []article.Result `json:"results"`
}

func newArticleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "article <url>...",
		Short: "Prints title, publisher and publish date for article URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return printJSON(cmd.OutOrStdout(), appInstance.Articles.Fetch(cmd.Context(), args[0]))
			}
			results := appInstance.Articles.FetchMany(cmd.Context(), args)
			return printJSON(cmd.OutOrStdout(), articleBatch{Success: true, Results: results})
		},
	}
}
