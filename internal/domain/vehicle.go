package domain

type GearboxType string

const (
	GearboxAutomatic GearboxType = "automatic"
	GearboxManual    GearboxType = "manual"
)

// RateTier is the price and mileage allowance of one pricing tier.
type RateTier struct {
	PriceCents int64 `json:"price_cents" yaml:"price_cents"`
	IncludedKm int64 `json:"included_km" yaml:"included_km"`
}

// RateTable holds the day, week and month tiers of a vehicle.
type RateTable struct {
	Day   RateTier `json:"day" yaml:"day"`
	Week  RateTier `json:"week" yaml:"week"`
	Month RateTier `json:"month" yaml:"month"`
}

type Vehicle struct {
	ID                int32       `json:"id" yaml:"id"`
	Name              string      `json:"name" yaml:"name"`
	Brand             string      `json:"brand" yaml:"brand"`
	BrandLogoURL      string      `json:"brand_logo_url" yaml:"brand_logo_url"`
	ImageURL          string      `json:"image_url" yaml:"image_url"`
	Gearbox           GearboxType `json:"gearbox" yaml:"gearbox"`
	Fuel              string      `json:"fuel" yaml:"fuel"`
	Rates             RateTable   `json:"rates" yaml:"rates"`
	ExtraKmPriceCents int64       `json:"extra_km_price_cents" yaml:"extra_km_price_cents"`
	DepositCents      int64       `json:"deposit_cents" yaml:"deposit_cents"`
	Gallery           []string    `json:"gallery" yaml:"gallery"`
}

// PricingFormula is a preset rental length offered on the vehicle page.
type PricingFormula string

const (
	FormulaDay   PricingFormula = "day"
	FormulaWeek  PricingFormula = "week"
	FormulaMonth PricingFormula = "month"
)
