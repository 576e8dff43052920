// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/abgdnv/inventory/internal/product"
	producterrors "github.com/abgdnv/inventory/internal/product/errors"
	"github.com/go-playground/validator/v10"
)

// ProductService defines the methods for managing products.
// It validates operator input before it reaches the registry.
type ProductService interface {
	// FindByID returns the product whose ID matches id, ignoring case.
	// Returns an empty slice if there is none, ErrValidation if id is blank.
	FindByID(ctx context.Context, id string) ([]ProductDto, error)

	// FindAll returns all products in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Create adds a new product to the inventory.
	// Returns ErrValidation for bad input and ErrDuplicateIdentifier if the ID is taken.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)
}

// Registry is the product collection the service writes to and reads from.
type Registry interface {
	Add(ctx context.Context, p product.Product) error
	ListAll(ctx context.Context) []product.Product
	FindByID(ctx context.Context, id string) []product.Product
}

// Service implements ProductService on top of a Registry.
type Service struct {
	registry Registry
	validate *validator.Validate
}

// NewService creates a new instance of ProductService with the provided registry.
func NewService(registry Registry) *Service {
	return &Service{
		registry: registry,
		validate: validator.New(),
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	ID       string  `json:"id"       validate:"required"`
	Name     string  `json:"name"     validate:"required"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Price    float64 `json:"price"    validate:"gte=0"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

const (
	msgEmptyFields    = "Product ID and Name cannot be empty."
	msgNegativeFields = "Quantity and Price cannot be negative."
	msgInvalidNumbers = "Please enter valid numbers for Quantity and Price."
	msgEmptySearchID  = "Please enter a Product ID to search."
	msgInvalidText    = "Product ID and Name must be valid UTF-8 text."
)

// ValidationError describes rejected operator input. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
	// Fields maps a field name to the rule it failed, when known.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return producterrors.ErrValidation
}

// ParseCreateInput builds a ProductCreateDto from raw text fields, trimming each of them.
// Numbers that don't parse, or aren't finite, yield a ValidationError.
func ParseCreateInput(id, name, quantity, price string) (ProductCreateDto, error) {
	dto := ProductCreateDto{
		ID:   strings.TrimSpace(id),
		Name: strings.TrimSpace(name),
	}

	fields := make(map[string]string)
	q, err := strconv.Atoi(strings.TrimSpace(quantity))
	if err != nil {
		fields["Quantity"] = "failed on rule: number"
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		fields["Price"] = "failed on rule: number"
	}
	if len(fields) > 0 {
		return dto, &ValidationError{Message: msgInvalidNumbers, Fields: fields}
	}

	dto.Quantity = q
	dto.Price = p
	return dto, nil
}

// FindByID retrieves the product matching id and returns it as ProductDTOs.
func (s *Service) FindByID(ctx context.Context, id string) ([]ProductDto, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ValidationError{Message: msgEmptySearchID, Fields: map[string]string{"ID": "failed on rule: required"}}
	}
	return toDtos(s.registry.FindByID(ctx, id)), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	return toDtos(s.registry.ListAll(ctx)), nil
}

// Create validates dto, adds the product to the registry and returns it as a ProductDto.
func (s *Service) Create(ctx context.Context, dto ProductCreateDto) (*ProductDto, error) {
	dto.ID = strings.TrimSpace(dto.ID)
	dto.Name = strings.TrimSpace(dto.Name)
	if err := s.validateCreate(dto); err != nil {
		return nil, err
	}

	p := product.New(dto.ID, dto.Name, dto.Quantity, dto.Price)
	if err := s.registry.Add(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(p), nil
}

// validateCreate runs the struct rules and turns their failures into a ValidationError.
func (s *Service) validateCreate(dto ProductCreateDto) error {
	invalid := make(map[string]string)
	if !utf8.ValidString(dto.ID) {
		invalid["ID"] = "failed on rule: utf8"
	}
	if !utf8.ValidString(dto.Name) {
		invalid["Name"] = "failed on rule: utf8"
	}
	if len(invalid) > 0 {
		return &ValidationError{Message: msgInvalidText, Fields: invalid}
	}

	err := s.validate.Struct(dto)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", producterrors.ErrValidation, err)
	}

	fields := make(map[string]string, len(validationErrors))
	message := msgNegativeFields
	for _, fieldErr := range validationErrors {
		// fieldErr.Tag() returns "required", "gte", etc.
		fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		if fieldErr.Tag() == "required" {
			message = msgEmptyFields
		}
	}
	return &ValidationError{Message: message, Fields: fields}
}

func toDtos(products []product.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i, item := range products {
		dtos[i] = *toDto(item)
	}
	return dtos
}

// toDto converts a product.Product to a ProductDto.
func toDto(p product.Product) *ProductDto {
	return &ProductDto{
		ID:       p.ID(),
		Name:     p.Name(),
		Quantity: p.Quantity(),
		Price:    p.Price(),
	}
}
