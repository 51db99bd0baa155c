// Command importcalc serves and prints landed-cost estimates for vehicles
// imported from Dubai into the EU through Rotterdam.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
