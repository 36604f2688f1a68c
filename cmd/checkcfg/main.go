// Command checkcfg validates the subject registry and risk calibration
// tables without starting the service, and prints the effective values.
// Useful before rolling out a recalibration.
//
// Usage:
//
//	checkcfg -subjects config/subjects.yaml [-tables risk-tables.yaml]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/supply-risk-monitor/internal/domain"
	"github.com/couchcryptid/supply-risk-monitor/internal/risk"
)

func main() {
	subjectsPath := flag.String("subjects", "config/subjects.yaml", "path to the subject registry")
	tablesPath := flag.String("tables", "", "path to risk table overrides (optional)")
	verbose := flag.Bool("v", false, "print the effective configuration")
	flag.Parse()

	subjects, err := domain.LoadSubjects(*subjectsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "subjects: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("subjects: OK (%d subjects", len(subjects))
	tickered := 0
	for _, s := range subjects {
		if s.Ticker != "" {
			tickered++
		}
	}
	fmt.Printf(", %d with tickers)\n", tickered)

	weights, err := risk.LoadWeights(*tablesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "risk tables: %v\n", err)
		os.Exit(1)
	}
	if *tablesPath == "" {
		fmt.Println("risk tables: OK (defaults)")
	} else {
		fmt.Println("risk tables: OK (overrides applied)")
	}

	if *verbose {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"subjects": subjects,
			"weights":  weights,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
	}
}
