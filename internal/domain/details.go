package domain

import "github.com/shopspring/decimal"

// CpuDetails holds the fields unique to a CPU product.
type CpuDetails struct {
	Cores              int    `json:"cores"`
	Socket             string `json:"socket"`
	Series             string `json:"series"`
	IntegratedGraphics bool   `json:"integrated_graphics"`
}

func (*CpuDetails) ProductCategory() Category { return CategoryCpu }

// CaseDetails holds the fields unique to a computer case product.
type CaseDetails struct {
	Color       string `json:"color"`
	FormFactor  string `json:"form_factor"`
	PowerSupply bool   `json:"power_supply"`
	SidePanel   string `json:"side_panel"`
}

func (*CaseDetails) ProductCategory() Category { return CategoryCase }

// CpuCoolerDetails holds the fields unique to a CPU cooler product.
type CpuCoolerDetails struct {
	FanRPM      int             `json:"fan_rpm"`
	NoiseLevel  decimal.Decimal `json:"noise_level"`
	WaterCooled bool            `json:"water_cooled"`
	Socket      string          `json:"socket"`
}

func (*CpuCoolerDetails) ProductCategory() Category { return CategoryCpuCooler }

// MemoryDetails holds the fields unique to a memory kit product.
type MemoryDetails struct {
	Capacity int    `json:"capacity"`
	Speed    int    `json:"speed"`
	Modules  int    `json:"modules"`
	Kind     string `json:"kind"`
	ECC      bool   `json:"ecc"`
}

func (*MemoryDetails) ProductCategory() Category { return CategoryMemory }

// MotherboardDetails holds the fields unique to a motherboard product.
type MotherboardDetails struct {
	Socket       string `json:"socket"`
	FormFactor   string `json:"form_factor"`
	Chipset      string `json:"chipset"`
	MemorySlots  int    `json:"memory_slots"`
	WifiIncluded bool   `json:"wifi_included"`
}

func (*MotherboardDetails) ProductCategory() Category { return CategoryMotherboard }

// StorageDetails holds the fields unique to a storage drive product.
type StorageDetails struct {
	Capacity  int    `json:"capacity"`
	Kind      string `json:"kind"`
	Interface string `json:"interface"`
	Cache     int    `json:"cache"`
	NVMe      bool   `json:"nvme"`
}

func (*StorageDetails) ProductCategory() Category { return CategoryStorage }

// VideoCardDetails holds the fields unique to a video card product.
type VideoCardDetails struct {
	Chipset   string          `json:"chipset"`
	Memory    int             `json:"memory"`
	CoreClock decimal.Decimal `json:"core_clock"`
	Length    int             `json:"length"`
}

func (*VideoCardDetails) ProductCategory() Category { return CategoryVideoCard }

// PowerSupplyDetails holds the fields unique to a power supply product.
type PowerSupplyDetails struct {
	Wattage    int    `json:"wattage"`
	Efficiency string `json:"efficiency"`
	Modular    bool   `json:"modular"`
	FormFactor string `json:"form_factor"`
}

func (*PowerSupplyDetails) ProductCategory() Category { return CategoryPowerSupply }
