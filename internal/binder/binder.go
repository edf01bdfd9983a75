// Package binder maps untyped attribute bags onto the typed detail fields
// of a product category. Each category has a fixed schema of attribute
// name to coercion function, built once at package init; binding never
// inspects types at runtime.
package binder

import (
	"fmt"
	"strconv"
	"strings"

	"hardshop/internal/domain"

	"github.com/shopspring/decimal"
)

// setter coerces one raw string value and assigns it to a field of the
// given details variant.
type setter func(details domain.Details, raw string) error

// schema maps lowercased attribute names to field setters for one category.
type schema map[string]setter

// Options control binding behavior.
type Options struct {
	// Strict rejects attribute names that match no field of the target
	// category instead of silently ignoring them.
	Strict bool
}

// Bind applies a name->value bag to the detail fields of details. Names are
// matched case-insensitively against the category's schema; base product
// fields are never bindable through the bag. A value that cannot be coerced
// into its field's type fails with a *domain.ValidationError.
func Bind(details domain.Details, bag map[string]string, opts Options) error {
	fields, ok := schemas[details.ProductCategory()]
	if !ok {
		return &domain.ValidationError{Field: "category", Message: "unknown category: " + string(details.ProductCategory())}
	}

	for name, raw := range bag {
		set, ok := fields[strings.ToLower(name)]
		if !ok {
			if opts.Strict {
				return &domain.ValidationError{Field: name, Message: "unknown attribute"}
			}
			// Stray detail keys are tolerated for forward compatibility.
			continue
		}

		if err := set(details, raw); err != nil {
			return &domain.ValidationError{
				Field:   name,
				Message: fmt.Sprintf("cannot use %q: %v", raw, err),
			}
		}
	}

	return nil
}

// setInt builds a setter coercing the raw value into an integer field.
func setInt[T domain.Details](assign func(T, int)) setter {
	return func(d domain.Details, raw string) error {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("not an integer")
		}
		assign(d.(T), n)
		return nil
	}
}

// setBool builds a setter coercing the raw value into a boolean field.
func setBool[T domain.Details](assign func(T, bool)) setter {
	return func(d domain.Details, raw string) error {
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
		if err != nil {
			return fmt.Errorf("not a boolean")
		}
		assign(d.(T), b)
		return nil
	}
}

// setDecimal builds a setter coercing the raw value into a decimal field.
func setDecimal[T domain.Details](assign func(T, decimal.Decimal)) setter {
	return func(d domain.Details, raw string) error {
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("not a decimal number")
		}
		assign(d.(T), v)
		return nil
	}
}

// setString builds a setter assigning the raw value as-is.
func setString[T domain.Details](assign func(T, string)) setter {
	return func(d domain.Details, raw string) error {
		assign(d.(T), raw)
		return nil
	}
}

// schemas is the per-category attribute schema, one entry per bindable
// subtype field. Keys are lowercase; lookups lower the incoming name.
var schemas = map[domain.Category]schema{
	domain.CategoryCpu: {
		"cores":              setInt(func(d *domain.CpuDetails, v int) { d.Cores = v }),
		"socket":             setString(func(d *domain.CpuDetails, v string) { d.Socket = v }),
		"series":             setString(func(d *domain.CpuDetails, v string) { d.Series = v }),
		"integratedgraphics": setBool(func(d *domain.CpuDetails, v bool) { d.IntegratedGraphics = v }),
	},
	domain.CategoryCase: {
		"color":       setString(func(d *domain.CaseDetails, v string) { d.Color = v }),
		"formfactor":  setString(func(d *domain.CaseDetails, v string) { d.FormFactor = v }),
		"powersupply": setBool(func(d *domain.CaseDetails, v bool) { d.PowerSupply = v }),
		"sidepanel":   setString(func(d *domain.CaseDetails, v string) { d.SidePanel = v }),
	},
	domain.CategoryCpuCooler: {
		"fanrpm":      setInt(func(d *domain.CpuCoolerDetails, v int) { d.FanRPM = v }),
		"noiselevel":  setDecimal(func(d *domain.CpuCoolerDetails, v decimal.Decimal) { d.NoiseLevel = v }),
		"watercooled": setBool(func(d *domain.CpuCoolerDetails, v bool) { d.WaterCooled = v }),
		"socket":      setString(func(d *domain.CpuCoolerDetails, v string) { d.Socket = v }),
	},
	domain.CategoryMemory: {
		"capacity": setInt(func(d *domain.MemoryDetails, v int) { d.Capacity = v }),
		"speed":    setInt(func(d *domain.MemoryDetails, v int) { d.Speed = v }),
		"modules":  setInt(func(d *domain.MemoryDetails, v int) { d.Modules = v }),
		"kind":     setString(func(d *domain.MemoryDetails, v string) { d.Kind = v }),
		"ecc":      setBool(func(d *domain.MemoryDetails, v bool) { d.ECC = v }),
	},
	domain.CategoryMotherboard: {
		"socket":       setString(func(d *domain.MotherboardDetails, v string) { d.Socket = v }),
		"formfactor":   setString(func(d *domain.MotherboardDetails, v string) { d.FormFactor = v }),
		"chipset":      setString(func(d *domain.MotherboardDetails, v string) { d.Chipset = v }),
		"memoryslots":  setInt(func(d *domain.MotherboardDetails, v int) { d.MemorySlots = v }),
		"wifiincluded": setBool(func(d *domain.MotherboardDetails, v bool) { d.WifiIncluded = v }),
	},
	domain.CategoryStorage: {
		"capacity":  setInt(func(d *domain.StorageDetails, v int) { d.Capacity = v }),
		"kind":      setString(func(d *domain.StorageDetails, v string) { d.Kind = v }),
		"interface": setString(func(d *domain.StorageDetails, v string) { d.Interface = v }),
		"cache":     setInt(func(d *domain.StorageDetails, v int) { d.Cache = v }),
		"nvme":      setBool(func(d *domain.StorageDetails, v bool) { d.NVMe = v }),
	},
	domain.CategoryVideoCard: {
		"chipset":   setString(func(d *domain.VideoCardDetails, v string) { d.Chipset = v }),
		"memory":    setInt(func(d *domain.VideoCardDetails, v int) { d.Memory = v }),
		"coreclock": setDecimal(func(d *domain.VideoCardDetails, v decimal.Decimal) { d.CoreClock = v }),
		"length":    setInt(func(d *domain.VideoCardDetails, v int) { d.Length = v }),
	},
	domain.CategoryPowerSupply: {
		"wattage":    setInt(func(d *domain.PowerSupplyDetails, v int) { d.Wattage = v }),
		"efficiency": setString(func(d *domain.PowerSupplyDetails, v string) { d.Efficiency = v }),
		"modular":    setBool(func(d *domain.PowerSupplyDetails, v bool) { d.Modular = v }),
		"formfactor": setString(func(d *domain.PowerSupplyDetails, v string) { d.FormFactor = v }),
	},
}
