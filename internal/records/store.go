package records

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"opsdash/internal/config"
)

// LoadFunc builds a complete snapshot from the configured sources.
type LoadFunc func(ctx context.Context) (*Snapshot, error)

// Store publishes the current immutable Snapshot. Readers are lock-free;
// a reload builds a whole new snapshot and swaps the pointer, so a request
// in flight sees either the old dataset in full or the new one in full,
// never a mix.
type Store struct {
	current atomic.Pointer[Snapshot]
	load    LoadFunc
	group   singleflight.Group
	reloads atomic.Int64
}

// NewStore performs the initial load and returns a ready store. An
// unloadable store at startup is a hard failure.
func NewStore(ctx context.Context, load LoadFunc) (*Store, error) {
	s := &Store{load: load}
	snap, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}
	s.current.Store(snap)
	return s, nil
}

// Snapshot returns the current dataset. The returned value is immutable.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload replaces the snapshot atomically. Concurrent callers collapse
// into a single load; all of them observe that load's outcome. On failure
// the previous snapshot stays published.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	v, err, _ := s.group.Do("reload", func() (interface{}, error) {
		snap, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(snap)
		s.reloads.Add(1)
		log.Info().
			Int("incidents", len(snap.Incidents)).
			Int("consultations", len(snap.Consultations)).
			Int("anomalies", snap.Anomalies.Total()).
			Str("fingerprint", snap.Fingerprint).
			Msg("Store reloaded")
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// ReloadCount returns how many reloads have completed since startup.
func (s *Store) ReloadCount() int64 {
	return s.reloads.Load()
}

// FileLoader returns a LoadFunc reading the configured CSV exports. The
// incident export is required; a missing consultation export degrades to an
// empty sibling dataset with a warning.
func FileLoader(cfg *config.AppConfig, policy *config.Policy) LoadFunc {
	return func(ctx context.Context) (*Snapshot, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		incidents, tally, err := LoadIncidents(cfg.IncidentsPath(), policy)
		if err != nil {
			return nil, fmt.Errorf("loading incidents: %w", err)
		}

		var consultations []Consultation
		consultations, err = LoadConsultations(cfg.ConsultationsPath(), policy)
		if err != nil {
			if os.IsNotExist(err) {
				log.Warn().Str("path", cfg.ConsultationsPath()).Msg("Consultation export not found, continuing without it")
			} else {
				return nil, fmt.Errorf("loading consultations: %w", err)
			}
		}

		// Deterministic ordering keeps every derived payload stable across
		// identical loads.
		slices.SortFunc(incidents, func(a, b Incident) int {
			if c := a.OpenedAt.Compare(b.OpenedAt); c != 0 {
				return c
			}
			return strings.Compare(a.Number, b.Number)
		})
		slices.SortFunc(consultations, func(a, b Consultation) int {
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		})

		snap := &Snapshot{
			Incidents:     incidents,
			Consultations: consultations,
			Anomalies:     tally,
			LoadedAt:      time.Now().UTC(),
			Fingerprint:   fingerprintFiles(cfg.IncidentsPath(), cfg.ConsultationsPath()),
		}

		log.Info().
			Int("incidents", len(incidents)).
			Int("consultations", len(consultations)).
			Int("anomalies", tally.Total()).
			Msg("Snapshot loaded")

		return snap, nil
	}
}

// fingerprintFiles hashes the source bytes so reports can state which data
// they were computed from. Unreadable files contribute nothing.
func fingerprintFiles(paths ...string) string {
	h := sha256.New()
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}
