package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFindCmd(sh *shell) *cobra.Command {
	return &cobra.Command{
		Use:   "find <id>",
		Short: "Find a product by ID, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := sh.deps.ProductService.FindByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(found) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No product found with ID: %s\n", args[0])
				return nil
			}
			renderProducts(cmd.OutOrStdout(), found)
			return nil
		},
	}
}
