// Package product defines the product record tracked by the inventory.
package product

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Product is a single inventory entry.
// Its ID is unique across the registry under case-insensitive comparison.
type Product struct {
	id       string
	name     string
	quantity int
	price    float64
}

// New creates a Product from all four of its fields.
// Field validation (non-empty id and name, non-negative numbers) is the caller's job.
func New(id, name string, quantity int, price float64) Product {
	return Product{
		id:       id,
		name:     name,
		quantity: quantity,
		price:    price,
	}
}

func (p Product) ID() string     { return p.id }
func (p Product) Name() string   { return p.name }
func (p Product) Quantity() int  { return p.quantity }
func (p Product) Price() float64 { return p.price }

func (p *Product) SetID(id string)          { p.id = id }
func (p *Product) SetName(name string)      { p.name = name }
func (p *Product) SetQuantity(quantity int) { p.quantity = quantity }
func (p *Product) SetPrice(price float64)   { p.price = price }

// String returns the operator-facing rendering of the product.
func (p Product) String() string {
	return fmt.Sprintf("Product ID: %s, Name: %s, Quantity: %d, Price: $%.2f", p.id, p.name, p.quantity, p.price)
}

// NormalizeID returns the key under which ids are compared.
// Invalid UTF-8 bytes are kept verbatim so distinct malformed ids never share a key.
func NormalizeID(id string) string {
	if utf8.ValidString(id) {
		return strings.ToLower(id)
	}
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); {
		r, size := utf8.DecodeRuneInString(id[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(id[i])
		} else {
			b.WriteString(strings.ToLower(id[i : i+size]))
		}
		i += size
	}
	return b.String()
}
