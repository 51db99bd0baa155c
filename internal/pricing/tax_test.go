package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/importcalc/internal/vehicle"
)

func TestRegistrationTax_Table(t *testing.T) {
	cases := []struct {
		name string
		co2  int
		year int
		fuel vehicle.FuelType
		want string
	}{
		{"diesel band two, four years old", 150, 2021, vehicle.FuelDiesel, "2472"},
		{"gasoline band two, new", 150, 2025, vehicle.FuelGasoline, "6240"},
		{"below threshold pays base", 80, 2025, vehicle.FuelGasoline, "400"},
		{"threshold itself pays base", 82, 2025, vehicle.FuelDiesel, "400"},
		{"below threshold depreciated", 60, 2023, vehicle.FuelGasoline, "240"},
		{"all three bands", 200, 2025, vehicle.FuelGasoline, "13440"},
		{"all three bands diesel", 200, 2024, vehicle.FuelDiesel, "19248"},
		{"band one only", 100, 2025, vehicle.FuelHybrid, "1840"},
		{"exactly five years is exempt", 250, 2020, vehicle.FuelDiesel, "0"},
		{"older than five years is exempt", 250, 2010, vehicle.FuelGasoline, "0"},
		{"future model year counts as new", 100, 2027, vehicle.FuelGasoline, "1840"},
		{"negative co2 clamps to zero", -40, 2025, vehicle.FuelElectric, "400"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RegistrationTax(tc.co2, tc.year, tc.fuel, 2025)
			equalAmount(t, "bpm", got, tc.want)
		})
	}
}

func TestRegistrationTax_ZeroFromFiveYears(t *testing.T) {
	fuels := []vehicle.FuelType{vehicle.FuelGasoline, vehicle.FuelDiesel, vehicle.FuelHybrid, vehicle.FuelElectric}
	for _, fuel := range fuels {
		for age := 5; age <= 30; age++ {
			for co2 := 0; co2 <= 400; co2 += 7 {
				got := RegistrationTax(co2, 2025-age, fuel, 2025)
				if !got.IsZero() {
					t.Fatalf("age %d co2 %d %s: bpm=%s, want 0", age, co2, fuel, got)
				}
			}
		}
	}
}

func TestRegistrationTax_MonotonicInCO2(t *testing.T) {
	fuels := []vehicle.FuelType{vehicle.FuelGasoline, vehicle.FuelDiesel}
	for _, fuel := range fuels {
		for age := 0; age < 5; age++ {
			prev := decimal.NewFromInt(-1)
			for co2 := 0; co2 <= 400; co2++ {
				got := RegistrationTax(co2, 2025-age, fuel, 2025)
				if got.LessThan(prev) {
					t.Fatalf("%s age %d: bpm(%d)=%s < bpm(%d)=%s", fuel, age, co2, got, co2-1, prev)
				}
				prev = got
			}
		}
	}
}

func TestRegistrationTax_NeverNegative(t *testing.T) {
	for co2 := -100; co2 <= 500; co2 += 13 {
		for year := 2000; year <= 2030; year++ {
			if got := RegistrationTax(co2, year, vehicle.FuelDiesel, 2025); got.IsNegative() {
				t.Fatalf("bpm(%d, %d) = %s", co2, year, got)
			}
		}
	}
}
