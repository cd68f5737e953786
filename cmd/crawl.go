package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/editorial-harvester/internal/crawler"
)

// errCrawlFailed makes the process exit non-zero after the partial result
// has been printed.
var errCrawlFailed = errors.New("crawl failed")

func newCrawlCmd() *cobra.Command {
	var request crawler.ListingRequest
	cmd := &cobra.Command{
		Use:   "crawl <base-url>",
		Short: "Walks a paginated listing synchronously and prints its records",
		Long: `Fetches the base URL, then base/page/2/, base/page/3/ and so on until a 404,
a thin page, a page with nothing new or the page cap ends the walk.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			request.BaseURL = args[0]
			result := appInstance.Crawler.Crawl(cmd.Context(), request)
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return errCrawlFailed
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&request.MaxPages, "max-pages", 0, "page cap (default from crawler.max_pages_default)")
	cmd.Flags().StringVar(&request.PathPrefix, "prefix", "", "path prefix record links must start with")
	cmd.Flags().StringVar(&request.Brand, "brand", "", "brand stamped on every record (default publisher name)")
	return cmd
}
