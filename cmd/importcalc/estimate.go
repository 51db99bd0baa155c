package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Simplici0/importcalc/internal/pricing"
	"github.com/Simplici0/importcalc/internal/vehicle"
)

type estimateOptions struct {
	price         float64
	co2           int
	year          int
	fuel          string
	shipping      string
	length        float64
	height        float64
	schedulePath  string
	referenceYear int
}

func newEstimateCmd() *cobra.Command {
	var opts estimateOptions
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Print the three import scenarios for one vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd.OutOrStdout(), opts, time.Now())
		},
	}
	f := cmd.Flags()
	f.Float64Var(&opts.price, "price", 0, "purchase price in EUR (required)")
	f.IntVar(&opts.co2, "co2", vehicle.DefaultCO2, "CO2 emissions in g/km")
	f.IntVar(&opts.year, "year", vehicle.DefaultModelYear, "model year")
	f.StringVar(&opts.fuel, "fuel", string(vehicle.FuelGasoline), "gasoline, diesel, hybrid or electric")
	f.StringVar(&opts.shipping, "shipping", string(pricing.ShippingRoRo), "roro, container_20ft or container_40ft")
	f.Float64Var(&opts.length, "length", 0, "vehicle length in metres")
	f.Float64Var(&opts.height, "height", 0, "vehicle height in metres")
	f.StringVar(&opts.schedulePath, "schedule", "", "YAML fee schedule overriding the built-in one")
	f.IntVar(&opts.referenceYear, "reference-year", 0, "year the vehicle age is measured against (default current year)")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func runEstimate(out io.Writer, opts estimateOptions, now time.Time) error {
	fuel, err := vehicle.ParseFuelType(opts.fuel)
	if err != nil {
		return err
	}
	schedule, err := pricing.LoadSchedule(opts.schedulePath)
	if err != nil {
		return err
	}
	refYear := opts.referenceYear
	if refYear <= 0 {
		refYear = now.Year()
	}

	desc := vehicle.Description{ModelYear: opts.year, FuelType: fuel, CO2: opts.co2}
	if err := desc.Validate(); err != nil {
		return err
	}

	var dims *pricing.Dimensions
	if opts.length > 0 || opts.height > 0 {
		dims = &pricing.Dimensions{LengthM: opts.length, HeightM: opts.height}
	}

	res, err := pricing.Calculate(pricing.Input{
		Vehicle:       desc,
		PurchasePrice: decimal.NewFromFloat(opts.price),
		Shipping:      pricing.ParseShippingMethod(opts.shipping),
		Dimensions:    dims,
		ReferenceYear: refYear,
	}, schedule)
	if err != nil {
		return err
	}
	return printResult(out, res)
}

func printResult(out io.Writer, res pricing.Result) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	scenarios := res.Scenarios()

	fmt.Fprint(tw, "\t")
	for _, s := range scenarios {
		fmt.Fprintf(tw, "%s\t", s.Name.Label())
	}
	fmt.Fprintln(tw)

	rows := map[string][]decimal.Decimal{}
	var order []string
	for i, s := range scenarios {
		for _, l := range s.Lines() {
			if _, ok := rows[l.Label]; !ok {
				rows[l.Label] = make([]decimal.Decimal, len(scenarios))
				order = append(order, l.Label)
			}
			rows[l.Label][i] = l.Amount
		}
	}
	for _, label := range order {
		fmt.Fprintf(tw, "%s\t", label)
		for _, v := range rows[label] {
			fmt.Fprintf(tw, "%s\t", pricing.FormatEUR(v))
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprint(tw, "TOTAL\t")
	for _, s := range scenarios {
		fmt.Fprintf(tw, "%s\t", pricing.FormatEUR(s.Total))
	}
	fmt.Fprintln(tw)
	if err := tw.Flush(); err != nil {
		return err
	}

	d := res.ShippingDetails
	fmt.Fprintf(out, "\nShipping: %s, %s\n", d.MethodLabel, pricing.FormatEUR(d.Total))
	_, err := fmt.Fprintln(out, res.RecommendationText())
	return err
}

func newRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Print the current exchange rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			database, err := openDatabase(cmd.Context(), cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			snap := newRateCache(cfg, database, logger).Snapshot(cmd.Context())
			return printRates(cmd.OutOrStdout(), ratesView(snap))
		},
	}
}

func printRates(out io.Writer, view ratesResponse) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, pair := range []string{"EUR_TO_AED", "EUR_TO_USD", "AED_TO_EUR", "USD_TO_EUR", "AED_TO_USD", "USD_TO_AED"} {
		fmt.Fprintf(tw, "%s\t%.6f\n", pair, view.Rates[pair])
	}
	fmt.Fprintf(tw, "updated\t%s (%s)\n", view.Timestamp, view.Source)
	return tw.Flush()
}
