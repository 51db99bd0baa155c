package pricing

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/importcalc/internal/apperr"
)

// FreeZoneFees are charged when the vehicle enters a free zone for transit or re-export.
type FreeZoneFees struct {
	Entry         decimal.Decimal
	Handling      decimal.Decimal
	Agent         decimal.Decimal
	DocsInsurance decimal.Decimal
}

// ClearanceFees are charged when the vehicle is cleared for free circulation.
type ClearanceFees struct {
	Agent         decimal.Decimal
	DocsInsurance decimal.Decimal
}

// Schedule holds every rate and fee the engine applies.
type Schedule struct {
	ImportDutyRate  decimal.Decimal
	VATRate         decimal.Decimal
	PortFees        decimal.Decimal
	FreeZone        FreeZoneFees
	Clearance       ClearanceFees
	RegistrationTax TaxRules
	RateCards       map[ShippingMethod]RateCard
}

// DefaultSchedule returns the built-in Rotterdam fee schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		ImportDutyRate: decimal.RequireFromString("0.10"),
		VATRate:        decimal.RequireFromString("0.21"),
		PortFees:       eur(600),
		FreeZone: FreeZoneFees{
			Entry:         eur(150),
			Handling:      eur(200),
			Agent:         eur(200),
			DocsInsurance: eur(250),
		},
		Clearance: ClearanceFees{
			Agent:         eur(350),
			DocsInsurance: eur(200),
		},
		RegistrationTax: DefaultTaxRules(),
		RateCards:       DefaultRateCards(),
	}
}

// Shipping quotes a method; unknown methods fall back to RoRo.
func (s Schedule) Shipping(method ShippingMethod, dims *Dimensions) ShippingBreakdown {
	card, ok := s.RateCards[method]
	if !ok {
		method = ShippingRoRo
		card = s.RateCards[ShippingRoRo]
	}
	return card.Quote(method, dims)
}

// scheduleFile is the YAML overlay format. Absent keys keep their defaults.
type scheduleFile struct {
	ImportDutyRate *float64 `yaml:"import_duty_rate"`
	VATRate        *float64 `yaml:"vat_rate"`
	PortFees       *float64 `yaml:"port_fees"`
	FreeZone       struct {
		Entry         *float64 `yaml:"entry"`
		Handling      *float64 `yaml:"handling"`
		Agent         *float64 `yaml:"agent"`
		DocsInsurance *float64 `yaml:"docs_insurance"`
	} `yaml:"free_zone"`
	Clearance struct {
		Agent         *float64 `yaml:"agent"`
		DocsInsurance *float64 `yaml:"docs_insurance"`
	} `yaml:"clearance"`
	RegistrationTax struct {
		Base          *float64 `yaml:"base"`
		FreeThreshold *int     `yaml:"free_threshold"`
		Bands         []struct {
			UpTo    int     `yaml:"up_to"`
			PerGram float64 `yaml:"per_gram"`
		} `yaml:"bands"`
		DieselSurchargePerGram *float64 `yaml:"diesel_surcharge_per_gram"`
		DepreciationPerYear    *float64 `yaml:"depreciation_per_year"`
		ExemptAge              *int     `yaml:"exempt_age"`
	} `yaml:"registration_tax"`
	Shipping map[string]struct {
		Label           string   `yaml:"label"`
		Base            *float64 `yaml:"base"`
		Loading         *float64 `yaml:"loading"`
		Unloading       *float64 `yaml:"unloading"`
		Securing        *float64 `yaml:"securing"`
		ContainerRental *float64 `yaml:"container_rental"`
		Insurance       *float64 `yaml:"insurance"`
	} `yaml:"shipping"`
}

// LoadSchedule overlays the YAML file at path on DefaultSchedule.
// An empty path returns the defaults.
func LoadSchedule(path string) (Schedule, error) {
	sched := DefaultSchedule()
	if path == "" {
		return sched, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("read fee schedule: %w", err)
	}
	var file scheduleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Schedule{}, fmt.Errorf("parse fee schedule %s: %w", path, err)
	}
	if err := file.apply(&sched); err != nil {
		return Schedule{}, fmt.Errorf("fee schedule %s: %w", path, err)
	}
	return sched, nil
}

func (f scheduleFile) apply(s *Schedule) error {
	var errs []error
	set := func(dst *decimal.Decimal, v *float64, field string) {
		if v == nil {
			return
		}
		if *v < 0 {
			errs = append(errs, apperr.Invalid("%s must be >= 0", field))
			return
		}
		*dst = decimal.NewFromFloat(*v)
	}

	set(&s.ImportDutyRate, f.ImportDutyRate, "import_duty_rate")
	set(&s.VATRate, f.VATRate, "vat_rate")
	set(&s.PortFees, f.PortFees, "port_fees")
	set(&s.FreeZone.Entry, f.FreeZone.Entry, "free_zone.entry")
	set(&s.FreeZone.Handling, f.FreeZone.Handling, "free_zone.handling")
	set(&s.FreeZone.Agent, f.FreeZone.Agent, "free_zone.agent")
	set(&s.FreeZone.DocsInsurance, f.FreeZone.DocsInsurance, "free_zone.docs_insurance")
	set(&s.Clearance.Agent, f.Clearance.Agent, "clearance.agent")
	set(&s.Clearance.DocsInsurance, f.Clearance.DocsInsurance, "clearance.docs_insurance")

	tax := f.RegistrationTax
	set(&s.RegistrationTax.Base, tax.Base, "registration_tax.base")
	set(&s.RegistrationTax.DieselSurchargePerGram, tax.DieselSurchargePerGram, "registration_tax.diesel_surcharge_per_gram")
	set(&s.RegistrationTax.DepreciationPerYear, tax.DepreciationPerYear, "registration_tax.depreciation_per_year")
	if tax.FreeThreshold != nil {
		s.RegistrationTax.FreeThreshold = *tax.FreeThreshold
	}
	if tax.ExemptAge != nil {
		s.RegistrationTax.ExemptAge = *tax.ExemptAge
	}
	if len(tax.Bands) > 0 {
		bands := make([]TaxBand, 0, len(tax.Bands))
		lower := s.RegistrationTax.FreeThreshold
		for i, b := range tax.Bands {
			last := i == len(tax.Bands)-1
			if b.UpTo == 0 && !last {
				errs = append(errs, apperr.Invalid("registration_tax.bands[%d]: only the last band may be unbounded", i))
			}
			if b.UpTo != 0 && b.UpTo <= lower {
				errs = append(errs, apperr.Invalid("registration_tax.bands[%d]: up_to must exceed %d", i, lower))
			}
			if b.PerGram < 0 {
				errs = append(errs, apperr.Invalid("registration_tax.bands[%d]: per_gram must be >= 0", i))
			}
			bands = append(bands, TaxBand{UpTo: b.UpTo, PerGram: decimal.NewFromFloat(b.PerGram)})
			lower = b.UpTo
		}
		s.RegistrationTax.Bands = bands
	}

	for name, card := range f.Shipping {
		method := ShippingMethod(name)
		current, ok := s.RateCards[method]
		if !ok {
			errs = append(errs, apperr.Invalid("shipping: unknown method %q", name))
			continue
		}
		if card.Label != "" {
			current.Label = card.Label
		}
		set(&current.Base, card.Base, "shipping."+name+".base")
		set(&current.Loading, card.Loading, "shipping."+name+".loading")
		set(&current.Unloading, card.Unloading, "shipping."+name+".unloading")
		set(&current.Securing, card.Securing, "shipping."+name+".securing")
		set(&current.Insurance, card.Insurance, "shipping."+name+".insurance")
		if card.ContainerRental != nil {
			if !current.ContainerRental.Valid {
				errs = append(errs, apperr.Invalid("shipping.%s: container_rental applies to container methods only", name))
			} else {
				set(&current.ContainerRental.Decimal, card.ContainerRental, "shipping."+name+".container_rental")
			}
		}
		s.RateCards[method] = current
	}

	return errors.Join(errs...)
}
