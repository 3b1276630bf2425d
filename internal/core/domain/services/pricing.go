package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// PricingVariant selects how chargeable weight is derived.
type PricingVariant int

const (
	// WeightPricing uses the declared weight only.
	WeightPricing PricingVariant = iota + 1
	// DimensionalPricing also looks up a tier by volumetric weight and charges the pricier of the two.
	DimensionalPricing
)

// ParsePricingVariant accepts "weight" and "dimensional".
func ParsePricingVariant(s string) (PricingVariant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weight":
		return WeightPricing, nil
	case "dimensional":
		return DimensionalPricing, nil
	default:
		return 0, errs.NewValueIsInvalidErrorWithCause("pricing variant", fmt.Errorf("%q is not one of weight, dimensional", s))
	}
}

// PricingTier is one row of the static price table. Ceilings are inclusive.
type PricingTier struct {
	Name            string
	MaxWeightKg     float64
	MaxVolumetricKg float64
	Price           kernel.Money
}

// DefaultPricingTiers is the published price list, lightest first.
func DefaultPricingTiers() []PricingTier {
	return []PricingTier{
		{Name: "T1", MaxWeightKg: 4, MaxVolumetricKg: 2, Price: kernel.MustMoney("4.50")},
		{Name: "T2", MaxWeightKg: 10, MaxVolumetricKg: 10, Price: kernel.MustMoney("5.80")},
		{Name: "T3", MaxWeightKg: 20, MaxVolumetricKg: 25, Price: kernel.MustMoney("10.30")},
		{Name: "T4", MaxWeightKg: 30, MaxVolumetricKg: math.Inf(1), Price: kernel.MustMoney("17.40")},
	}
}

// DefaultHandToHandFee is charged per parcel for hand-to-hand delivery.
func DefaultHandToHandFee() kernel.Money {
	return kernel.MustMoney("2.50")
}

// LocationSurcharges maps postal sectors to surcharges and lists the
// restricted-area keywords that override the sector lookup.
type LocationSurcharges struct {
	Sectors             map[string]kernel.Money
	RestrictedKeywords  []string
	RestrictedSurcharge kernel.Money
}

// DefaultLocationSurcharges covers the central business district, the southern
// islands and Jurong Island; restricted sites pay a flat 15.00.
func DefaultLocationSurcharges() LocationSurcharges {
	cbd := kernel.MustMoney("4.00")
	return LocationSurcharges{
		Sectors: map[string]kernel.Money{
			"01": cbd, "02": cbd, "03": cbd, "04": cbd, "05": cbd, "06": cbd, "07": cbd,
			"09": kernel.MustMoney("6.00"),
			"62": kernel.MustMoney("8.00"),
		},
		RestrictedKeywords: []string{
			"airbase", "air base", "military", "army camp", "naval base",
			"airport", "customs", "checkpoint", "cargo complex",
		},
		RestrictedSurcharge: kernel.MustMoney("15.00"),
	}
}

// PricingEngine turns parcel measurements and addresses into prices. It holds
// only immutable tables and is safe for concurrent use.
type PricingEngine struct {
	variant             PricingVariant
	tiers               []PricingTier
	handToHandFee       kernel.Money
	sectors             map[string]kernel.Money
	restricted          *regexp.Regexp
	restrictedSurcharge kernel.Money
}

// NewPricingEngine uses the default tables.
func NewPricingEngine(variant PricingVariant) (PricingEngine, error) {
	return NewPricingEngineWithTables(variant, DefaultPricingTiers(), DefaultHandToHandFee(), DefaultLocationSurcharges())
}

// NewPricingEngineWithTables validates and copies the given tables.
func NewPricingEngineWithTables(
	variant PricingVariant,
	tiers []PricingTier,
	handToHandFee kernel.Money,
	surcharges LocationSurcharges,
) (PricingEngine, error) {
	if variant != WeightPricing && variant != DimensionalPricing {
		return PricingEngine{}, errs.NewValueIsInvalidError("pricing variant")
	}
	if len(tiers) == 0 {
		return PricingEngine{}, errs.NewValueIsRequiredError("pricing tiers")
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].MaxWeightKg <= tiers[i-1].MaxWeightKg {
			return PricingEngine{}, errs.NewValueIsInvalidErrorWithCause(
				"pricing tiers",
				fmt.Errorf("tier %s ceiling does not exceed tier %s", tiers[i].Name, tiers[i-1].Name),
			)
		}
	}

	engine := PricingEngine{
		variant:             variant,
		tiers:               append([]PricingTier(nil), tiers...),
		handToHandFee:       handToHandFee,
		sectors:             make(map[string]kernel.Money, len(surcharges.Sectors)),
		restrictedSurcharge: surcharges.RestrictedSurcharge,
	}
	for sector, amount := range surcharges.Sectors {
		engine.sectors[sector] = amount
	}

	if len(surcharges.RestrictedKeywords) > 0 {
		quoted := make([]string, 0, len(surcharges.RestrictedKeywords))
		for _, kw := range surcharges.RestrictedKeywords {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(kw)))
		}
		engine.restricted = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}

	return engine, nil
}

// Variant reports the configured pricing variant.
func (e PricingEngine) Variant() PricingVariant {
	return e.variant
}

// PriceFor selects the tier for a parcel and returns its fixed price.
// A parcel heavier than the last tier's ceiling is rejected.
func (e PricingEngine) PriceFor(m order.Measurements) (PricingTier, kernel.Money, error) {
	weight := m.WeightKg()
	if weight <= 0 {
		return PricingTier{}, kernel.Money{}, errs.NewValueIsRequiredError("weight")
	}

	heaviest := e.tiers[len(e.tiers)-1]
	if weight > heaviest.MaxWeightKg {
		return PricingTier{}, kernel.Money{}, errs.NewValueIsOutOfRangeError("weight", weight, 0, heaviest.MaxWeightKg)
	}

	tier := e.tierByWeight(weight)
	if e.variant == DimensionalPricing && m.Dimensions() != nil {
		if byVolume := e.tierByVolume(m.VolumetricWeightKg()); byVolume.Price.GreaterThan(tier.Price) {
			tier = byVolume
		}
	}

	return tier, tier.Price, nil
}

// ParcelPrice is the tier price plus the per-parcel fee of the delivery method.
func (e PricingEngine) ParcelPrice(m order.Measurements, method order.DeliveryMethod) (PricingTier, kernel.Money, error) {
	if err := method.Validate(); err != nil {
		return PricingTier{}, kernel.Money{}, err
	}

	tier, price, err := e.PriceFor(m)
	if err != nil {
		return PricingTier{}, kernel.Money{}, err
	}

	if method == order.HandToHand {
		price = price.Add(e.handToHandFee)
	}
	return tier, price, nil
}

// LocationSurcharge prices an address. A restricted-area keyword in the street
// or unit text wins over the postal sector table; an unlisted sector costs nothing.
func (e PricingEngine) LocationSurcharge(address kernel.Address) kernel.Money {
	if e.restricted != nil && e.restricted.MatchString(strings.ToLower(address.FreeText())) {
		return e.restrictedSurcharge
	}
	if amount, ok := e.sectors[address.Sector()]; ok {
		return amount
	}
	return kernel.ZeroMoney()
}

// TotalPrice sums every parcel price and the surcharge of every address.
func (e PricingEngine) TotalPrice(
	parcels []order.Measurements,
	method order.DeliveryMethod,
	addresses []kernel.Address,
) (kernel.Money, error) {
	if len(parcels) == 0 {
		return kernel.Money{}, errs.NewValueIsRequiredError("parcels")
	}

	total := kernel.ZeroMoney()
	for i, m := range parcels {
		_, price, err := e.ParcelPrice(m, method)
		if err != nil {
			return kernel.Money{}, fmt.Errorf("parcel %d: %w", i, err)
		}
		total = total.Add(price)
	}

	for _, address := range addresses {
		total = total.Add(e.LocationSurcharge(address))
	}

	return total, nil
}

func (e PricingEngine) tierByWeight(weight float64) PricingTier {
	for _, t := range e.tiers {
		if weight <= t.MaxWeightKg {
			return t
		}
	}
	return e.tiers[len(e.tiers)-1]
}

func (e PricingEngine) tierByVolume(volumetric float64) PricingTier {
	for _, t := range e.tiers {
		if volumetric <= t.MaxVolumetricKg {
			return t
		}
	}
	return e.tiers[len(e.tiers)-1]
}
