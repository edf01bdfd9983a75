package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category identifies a hardware product kind. Each category owns exactly
// one Details variant and one subtype table.
type Category string

const (
	CategoryCpu         Category = "Cpu"
	CategoryCase        Category = "Case"
	CategoryCpuCooler   Category = "CpuCooler"
	CategoryMemory      Category = "Memory"
	CategoryMotherboard Category = "Motherboard"
	CategoryStorage     Category = "Storage"
	CategoryVideoCard   Category = "VideoCard"
	CategoryPowerSupply Category = "PowerSupply"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{
	CategoryCpu,
	CategoryCase,
	CategoryCpuCooler,
	CategoryMemory,
	CategoryMotherboard,
	CategoryStorage,
	CategoryVideoCard,
	CategoryPowerSupply,
}

var categoryNames = func() map[string]Category {
	m := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		m[strings.ToLower(string(c))] = c
	}
	return m
}()

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(name string) (Category, error) {
	c, ok := categoryNames[strings.ToLower(name)]
	if !ok {
		return "", &ValidationError{Field: "category", Message: "unknown category: " + name}
	}
	return c, nil
}

func (c Category) String() string {
	return string(c)
}

// Product is the base catalog entity. Details carries the fields unique to
// the product's category; the pairing is established at creation and never
// changes.
type Product struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	NormalizedName string          `json:"-"`
	Category       Category        `json:"category"`
	Manufacturer   string          `json:"manufacturer"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	Details        Details         `json:"details,omitempty"`
}

// Details is the category-specific extension of a Product. Exactly one
// concrete type exists per Category.
type Details interface {
	ProductCategory() Category
}

// NewDetails constructs the empty Details variant for a category.
func NewDetails(category Category) (Details, error) {
	switch category {
	case CategoryCpu:
		return &CpuDetails{}, nil
	case CategoryCase:
		return &CaseDetails{}, nil
	case CategoryCpuCooler:
		return &CpuCoolerDetails{}, nil
	case CategoryMemory:
		return &MemoryDetails{}, nil
	case CategoryMotherboard:
		return &MotherboardDetails{}, nil
	case CategoryStorage:
		return &StorageDetails{}, nil
	case CategoryVideoCard:
		return &VideoCardDetails{}, nil
	case CategoryPowerSupply:
		return &PowerSupplyDetails{}, nil
	default:
		return nil, &ValidationError{Field: "category", Message: "unknown category: " + string(category)}
	}
}
