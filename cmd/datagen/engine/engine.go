package engine

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

type GeneratorConfig struct {
	Scenario string // "clean" or "messy"
	Count    int
	Seed     int64
}

const exportTimeLayout = "2006-01-02 15:04:05"

// Column layouts as the ticketing system exports them. The loader looks
// columns up by name, so order is cosmetic, but keeping it stable makes
// generated files diffable.
var incidentHeader = []string{
	"Number", "Opened", "Resolved", "Assignment group", "Reopen count",
	"Priority", "Major incident", "Knowledge ID", "Resolution Type",
	"Short description", "Resolved by", "Location",
}

var consultationHeader = []string{
	"ID", "Created", "Consult Complete", "Issue", "Consultation Defined",
	"INC #", "Location", "Technician Name",
}

var teamPrefixes = []string{
	"AEDT - Enterprise Tech Spot - ",
	"ADE - Enterprise Tech Spot - ",
	"ADE - Enterprise Tech Spot 2 - ",
}

var sites = []string{
	"Helpdesk North", "Helpdesk South", "Field Support",
	"Deskside", "Walk-Up Center", "Remote Support",
}

var locations = []string{
	"Building 12", "Main Campus", "Dublin Hub",
	"Singapore Lab", "Riverside Office", "Tower B",
}

var technicians = []string{
	"Dana Cruz", "Ravi Patel", "Mei Lin", "Jon Olsen",
	"Priya Shah", "Carlos Vega", "Amara Okafor", "Lukas Brandt",
}

var descriptions = []string{
	"Laptop will not boot after update",
	"Computer running extremely slow",
	"Software install request",
	"Application crashes on launch",
	"Network drive unreachable",
	"Wifi keeps dropping in meeting rooms",
	"VPN connectivity drops",
	"Password reset loop",
	"Login fails after MFA prompt",
	"Printer jam on floor 3",
	"Print jobs stuck in queue",
	"Docking station missing cable",
	"Desk move equipment request",
	"Monitor flickers on battery",
}

var resolutionTypes = []string{
	"Solved (Permanently)", "Solved (Work Around)",
	"Solved Remotely", "Guidance Provided",
}

var issues = []string{
	"Password reset", "Software install", "Monitor setup",
	"Email sync issue", "Phone provisioning", "VPN setup help",
	"Printer mapping", "Equipment pickup",
}

var consultationTypes = []string{
	"Tech Support", "How-To", "Hardware", "Accessory Pickup", "Appointment",
}

// Generate produces incident and consultation export rows covering the
// February through June 2025 window. The same config always yields the
// same rows.
func Generate(cfg GeneratorConfig) ([][]string, [][]string) {
	if cfg.Count <= 0 {
		return nil, nil
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	messy := cfg.Scenario == "messy"

	windowStart := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	windowMinutes := int(windowEnd.Sub(windowStart).Minutes())

	var incidents [][]string
	for i := 0; i < cfg.Count; i++ {
		number := fmt.Sprintf("INC%07d", 1000001+i)
		opened := windowStart.Add(time.Duration(rng.Intn(windowMinutes)) * time.Minute)
		openedCell := opened.Format(exportTimeLayout)

		// Most incidents close, with a right-skewed duration so every
		// threshold band gets breaches.
		resolved := ""
		resolvedBy := ""
		resolutionType := ""
		if rng.Float64() < 0.9 {
			minutes := 20 + int(rng.Float64()*rng.Float64()*2400)
			resolved = opened.Add(time.Duration(minutes) * time.Minute).Format(exportTimeLayout)
			resolvedBy = pick(rng, technicians)
			resolutionType = pick(rng, resolutionTypes)
		}

		reopen := "0"
		switch r := rng.Float64(); {
		case r < 0.05:
			reopen = "" // the export leaves the cell blank now and then
		case r < 0.17:
			reopen = "1"
		case r < 0.22:
			reopen = "2"
		}

		priority := weightedPriority(rng)
		major := "FALSE"
		if priority == "P1" && rng.Float64() < 0.4 {
			major = "TRUE"
		}

		kb := ""
		if rng.Float64() < 0.45 {
			kb = fmt.Sprintf("KB%07d", 1+skewedIndex(rng, 40))
		}

		team := pick(rng, teamPrefixes) + pick(rng, sites)
		switch r := rng.Float64(); {
		case r < 0.02:
			team = "" // lands in the Unknown bucket
		case r < 0.1:
			team = pick(rng, sites) // some rows come through unprefixed
		}

		if messy {
			switch r := rng.Float64(); {
			case r < 0.01:
				number = ""
			case r < 0.02 && i > 0:
				number = fmt.Sprintf("INC%07d", 1000001+rng.Intn(i))
			case r < 0.03:
				openedCell = ""
			case r < 0.04:
				openedCell = "pending triage"
			case r < 0.06:
				if resolved != "" {
					resolved = "in progress"
				}
			case r < 0.075:
				resolved = opened.Add(-time.Duration(30+rng.Intn(600)) * time.Minute).Format(exportTimeLayout)
			case r < 0.095:
				reopen = pick(rng, []string{"N/A", "-1", "unknown"})
			}
		}

		incidents = append(incidents, []string{
			number, openedCell, resolved, team, reopen, priority, major,
			kb, resolutionType, pick(rng, descriptions), resolvedBy, pick(rng, locations),
		})
	}

	consultCount := cfg.Count * 3 / 5
	var consultations [][]string
	for i := 0; i < consultCount; i++ {
		id := fmt.Sprintf("CONS%06d", 500001+i)
		created := windowStart.Add(time.Duration(rng.Intn(windowMinutes)) * time.Minute)
		createdCell := created.Format(exportTimeLayout)

		complete := "Yes"
		if rng.Float64() < 0.15 {
			complete = "No"
		}

		incRef := ""
		if rng.Float64() < 0.3 {
			incRef = fmt.Sprintf("INC%07d", 1000001+rng.Intn(cfg.Count))
		}

		location := pick(rng, locations)
		tech := pick(rng, technicians)

		if messy {
			switch r := rng.Float64(); {
			case r < 0.02:
				createdCell = "awaiting entry"
			case r < 0.05:
				location = ""
			case r < 0.08:
				tech = ""
			}
		}

		consultations = append(consultations, []string{
			id, createdCell, complete, issues[skewedIndex(rng, len(issues))],
			pick(rng, consultationTypes), incRef, location, tech,
		})
	}

	return incidents, consultations
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

// weightedPriority skews toward the low-urgency bands the way real ticket
// queues do.
func weightedPriority(rng *rand.Rand) string {
	switch r := rng.Float64(); {
	case r < 0.05:
		return "P1"
	case r < 0.20:
		return "P2"
	case r < 0.80:
		return "P3"
	default:
		return "P4"
	}
}

// skewedIndex favors low indexes so a handful of KB articles and issues
// dominate, the way they do in real queues.
func skewedIndex(rng *rand.Rand, n int) int {
	f := rng.Float64()
	return int(f * f * float64(n))
}

// Save writes both exports under outDir with the column layout the loader
// expects.
func Save(outDir string, incidents, consultations [][]string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(outDir, "incidents.csv"), incidentHeader, incidents); err != nil {
		return err
	}
	return writeCSV(filepath.Join(outDir, "consultations.csv"), consultationHeader, consultations)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
