package records

import (
	"strings"
	"time"
)

// Incident is one ticket from the incident export. Fields that the export
// may leave blank are explicit optionals; nothing is coerced to a zero
// value that could be mistaken for data.
type Incident struct {
	// Number is the unique ticket id (e.g. INC0012345).
	Number string
	// OpenedAt is required; rows without a parseable opened timestamp are
	// excluded from the store and tallied as anomalies.
	OpenedAt time.Time
	// ResolvedAt is nil while the ticket is unresolved.
	ResolvedAt *time.Time
	// Team is the canonical assignment-group name (prefixes stripped).
	Team string
	// RawTeam is the assignment group exactly as exported.
	RawTeam string
	// Region is derived from the site policy mapping; "Unknown" if unmapped.
	Region string
	// ReopenCount distinguishes absent from zero. Zero means resolved on
	// first contact; absent means the export had no usable value.
	ReopenCount OptionalInt

	Priority       string
	MajorIncident  bool
	KnowledgeID    string
	ResolutionType string
	ResolvedBy     string
	Location       string
	Description    string
}

// UsedKB reports whether a knowledge article was referenced.
func (i Incident) UsedKB() bool {
	return strings.TrimSpace(i.KnowledgeID) != ""
}

// Consultation is one walk-up consultation from the sibling export. It is
// never touched by the incident metric engine.
type Consultation struct {
	ID        string
	CreatedAt time.Time
	// Complete is true when the consult was marked "Yes"; blank loads as false.
	Complete bool
	Issue    string
	// Type is the "Consultation Defined" classification.
	Type string
	// IncidentRef is the linked INC number, empty when none was filed.
	IncidentRef string
	Location    string
	Technician  string
	Region      string
}

// OptionalInt is an integer that knows whether it was present in the
// source data. The zero value is "absent".
type OptionalInt struct {
	Value   int
	Present bool
}

// SomeInt returns a present OptionalInt.
func SomeInt(v int) OptionalInt {
	return OptionalInt{Value: v, Present: true}
}

// AnomalyTally counts the data-quality exceptions found in one load.
// Anomalous rows are never silently dropped: timestamp failures exclude the
// row but keep the count, field failures keep the row with the field absent.
type AnomalyTally struct {
	MissingNumber       int `json:"missingNumber"`
	DuplicateNumber     int `json:"duplicateNumber"`
	MissingOpened       int `json:"missingOpened"`
	UnparseableOpened   int `json:"unparseableOpened"`
	UnparseableResolved int `json:"unparseableResolved"`
	NegativeInterval    int `json:"negativeInterval"`
	InvalidReopen       int `json:"invalidReopen"`
}

// Total returns the sum of all tallied anomalies.
func (a AnomalyTally) Total() int {
	return a.MissingNumber + a.DuplicateNumber + a.MissingOpened +
		a.UnparseableOpened + a.UnparseableResolved + a.NegativeInterval + a.InvalidReopen
}

// CanonicalTeam maps a raw assignment-group string to its canonical name by
// stripping the first matching site prefix and trimming whitespace. Every
// component that compares team names goes through this one function; the
// drill-down mismatches this system guards against were caused by code
// paths cleaning names differently.
func CanonicalTeam(raw string, prefixes []string) string {
	name := strings.TrimSpace(raw)
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			name = strings.TrimSpace(strings.TrimPrefix(name, p))
			break
		}
	}
	return name
}

// Snapshot is one immutable, fully-loaded view of the datasets. A snapshot
// is never mutated after construction; reloads build a new one and swap it
// in atomically.
type Snapshot struct {
	Incidents     []Incident
	Consultations []Consultation
	Anomalies     AnomalyTally
	LoadedAt      time.Time
	// Fingerprint identifies the source bytes this snapshot was built from.
	Fingerprint string
}
