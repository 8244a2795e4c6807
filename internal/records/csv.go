package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"opsdash/internal/config"
)

// Incident export column headers, as produced by the ticketing system.
const (
	colNumber         = "number"
	colOpened         = "opened"
	colResolved       = "resolved"
	colTeam           = "assignment group"
	colReopen         = "reopen count"
	colPriority       = "priority"
	colMajor          = "major incident"
	colKnowledgeID    = "knowledge id"
	colResolutionType = "resolution type"
	colDescription    = "short description"
	colResolvedBy     = "resolved by"
	colLocation       = "location"
)

// Consultation export column headers.
const (
	colConsultID       = "id"
	colConsultCreated  = "created"
	colConsultComplete = "consult complete"
	colConsultIssue    = "issue"
	colConsultType     = "consultation defined"
	colConsultINC      = "inc #"
	colConsultLocation = "location"
	colConsultTech     = "technician name"
)

// LoadIncidents reads the incident export. Structural problems (missing
// file, missing required columns) are errors; per-row data problems are
// tallied and the load continues.
func LoadIncidents(path string, policy *config.Policy) ([]Incident, AnomalyTally, error) {
	rows, idx, err := readCSV(path)
	if err != nil {
		return nil, AnomalyTally{}, err
	}

	required := []string{colNumber, colOpened, colResolved, colTeam, colReopen}
	for _, key := range required {
		if _, ok := idx[key]; !ok {
			return nil, AnomalyTally{}, fmt.Errorf("incident export missing required column: %s", key)
		}
	}

	var (
		incidents []Incident
		tally     AnomalyTally
		seen      = make(map[string]bool, len(rows))
	)

	for _, row := range rows {
		get := cellGetter(row, idx)

		number := get(colNumber)
		if number == "" {
			tally.MissingNumber++
			continue
		}
		if seen[number] {
			tally.DuplicateNumber++
			continue
		}
		seen[number] = true

		openedRaw := get(colOpened)
		if openedRaw == "" {
			tally.MissingOpened++
			continue
		}
		opened, ok := ParseTimestamp(openedRaw)
		if !ok {
			tally.UnparseableOpened++
			continue
		}

		inc := Incident{
			Number:         number,
			OpenedAt:       opened,
			RawTeam:        get(colTeam),
			Priority:       get(colPriority),
			MajorIncident:  parseFlag(get(colMajor)),
			KnowledgeID:    get(colKnowledgeID),
			ResolutionType: get(colResolutionType),
			ResolvedBy:     get(colResolvedBy),
			Location:       get(colLocation),
			Description:    get(colDescription),
		}
		inc.Team = CanonicalTeam(inc.RawTeam, policy.TeamPrefixes)
		inc.Region = policy.RegionFor(inc.Team)

		if resolvedRaw := get(colResolved); resolvedRaw != "" {
			if resolved, ok := ParseTimestamp(resolvedRaw); ok {
				if resolved.Before(opened) {
					tally.NegativeInterval++
				}
				inc.ResolvedAt = &resolved
			} else {
				tally.UnparseableResolved++
			}
		}

		reopen, anomalous := ParseReopenCount(get(colReopen))
		if anomalous {
			tally.InvalidReopen++
		}
		inc.ReopenCount = reopen

		incidents = append(incidents, inc)
	}

	return incidents, tally, nil
}

// LoadConsultations reads the sibling consultation export.
func LoadConsultations(path string, policy *config.Policy) ([]Consultation, error) {
	rows, idx, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	required := []string{colConsultID, colConsultCreated, colConsultComplete}
	for _, key := range required {
		if _, ok := idx[key]; !ok {
			return nil, fmt.Errorf("consultation export missing required column: %s", key)
		}
	}

	var consultations []Consultation
	skipped := 0

	for _, row := range rows {
		get := cellGetter(row, idx)

		created, ok := ParseTimestamp(get(colConsultCreated))
		if !ok {
			skipped++
			continue
		}

		c := Consultation{
			ID:          get(colConsultID),
			CreatedAt:   created,
			Complete:    parseFlag(get(colConsultComplete)),
			Issue:       get(colConsultIssue),
			Type:        get(colConsultType),
			IncidentRef: get(colConsultINC),
			Location:    get(colConsultLocation),
			Technician:  get(colConsultTech),
		}
		if c.Location == "" {
			c.Location = "Unknown"
		}
		if c.Technician == "" {
			c.Technician = "Unknown"
		}
		c.Region = policy.RegionFor(CanonicalTeam(c.Location, policy.TeamPrefixes))

		consultations = append(consultations, c)
	}

	if skipped > 0 {
		log.Warn().Int("rows", skipped).Str("path", path).Msg("Skipped consultation rows with unparseable created timestamps")
	}

	return consultations, nil
}

// readCSV loads a whole export and returns its data rows plus a
// normalized-header index.
func readCSV(path string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(all) < 1 {
		return nil, nil, errors.New("export must include a header row")
	}

	idx := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	return all[1:], idx, nil
}

func cellGetter(row []string, idx map[string]int) func(string) string {
	return func(key string) string {
		pos, ok := idx[key]
		if !ok || pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}
}
