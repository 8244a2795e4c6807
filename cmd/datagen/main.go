package main

import (
	"flag"
	"fmt"
	"os"

	"opsdash/cmd/datagen/engine"
)

func main() {
	outDir := flag.String("out", "./data", "Output directory for the CSV exports")
	count := flag.Int("count", 500, "Number of incidents to generate")
	scenario := flag.String("scenario", "clean", "Scenario to generate: clean, messy")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Seed:     *seed,
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Count, cfg.Seed, *outDir)

	incidents, consultations := engine.Generate(cfg)

	if err := engine.Save(*outDir, incidents, consultations); err != nil {
		fmt.Printf("Failed to save exports: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
