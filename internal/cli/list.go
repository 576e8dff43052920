package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(sh *shell) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all products in the order they were added",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := sh.deps.ProductService.FindAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(products) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No products in inventory.")
				return nil
			}
			renderProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
}
