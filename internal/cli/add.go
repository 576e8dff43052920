package cli

import (
	"errors"
	"fmt"

	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/spf13/cobra"
)

func newAddCmd(sh *shell) *cobra.Command {
	var id, name, quantity, price string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the inventory",
		Long: `Add a product and save the inventory.

The ID must be unique, ignoring case: A1 and a1 are the same product.
Quantity is a whole number and price a decimal, neither may be negative.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dto, err := service.ParseCreateInput(id, name, quantity, price)
			if err != nil {
				return err
			}
			_, err = sh.deps.ProductService.Create(cmd.Context(), dto)
			switch {
			case err == nil:
				// the process exits next, so an unsaved product is lost
				if saveErr := sh.deps.Registry.LastSaveErr(); saveErr != nil {
					return fmt.Errorf("Product with ID '%s' could not be saved: %w", dto.ID, saveErr)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Product added successfully!")
				return nil
			case errors.Is(err, producterrors.ErrDuplicateIdentifier):
				return fmt.Errorf("Product with ID '%s' already exists. Please use a unique ID.", dto.ID)
			default:
				var validationErr *service.ValidationError
				if errors.As(err, &validationErr) {
					return validationErr
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "product ID")
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&quantity, "quantity", "", "quantity in stock")
	cmd.Flags().StringVar(&price, "price", "", "unit price")
	return cmd
}
