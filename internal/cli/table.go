package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/abgdnv/inventory/internal/product/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// renderProducts writes products as a bordered table, prices with two decimals.
func renderProducts(w io.Writer, products []service.ProductDto) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle }).
		Headers("Product ID", "Name", "Quantity", "Price")
	for _, p := range products {
		t.Row(p.ID, p.Name, strconv.Itoa(p.Quantity), fmt.Sprintf("%.2f", p.Price))
	}
	_, _ = fmt.Fprintln(w, t.Render())
}
