// internal/search/orgcontext/store.go
package orgcontext

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"intelligence-workers/internal/common/logger"
)

// Store resolves organization profiles with a session-scoped in-memory
// cache. Profiles are loaded from persisted discovery data when present and
// synthesized from the static tables otherwise. Safe for concurrent use;
// last writer wins on overwrite.
type Store struct {
	db     *sql.DB // nil disables persisted lookup
	logger logger.Logger

	mu      sync.RWMutex
	session map[string]*Profile
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:      db,
		logger:  log.WithFields(map[string]interface{}{"component": "orgcontext"}),
		session: make(map[string]*Profile),
	}
}

// GetContext returns the profile for an organization, optionally scoped to a
// conversation. Construct-on-miss, cached for the session lifetime.
func (s *Store) GetContext(ctx context.Context, orgID, conversationID string) (*Profile, error) {
	key := orgID
	if conversationID != "" {
		key = orgID + ":" + conversationID
	}

	s.mu.RLock()
	if p, ok := s.session[key]; ok {
		s.mu.RUnlock()
		return p, nil
	}
	s.mu.RUnlock()

	profile, err := s.loadPersisted(ctx, orgID)
	if err != nil {
		s.logger.Warn("persisted profile load failed, synthesizing", map[string]interface{}{
			"organizationId": orgID,
			"error":          err.Error(),
		})
	}
	if profile == nil {
		profile = SynthesizeProfile(orgID, orgID)
	}

	s.mu.Lock()
	s.session[key] = profile
	s.mu.Unlock()

	return profile, nil
}

// loadPersisted reads a previously persisted discovery profile. Returns
// (nil, nil) when none exists or persistence is disabled.
func (s *Store) loadPersisted(ctx context.Context, orgID string) (*Profile, error) {
	if s.db == nil {
		return nil, nil
	}

	query := `SELECT name, industry, sub_industry, competitors, keywords, trusted_domains, updated_at
		FROM organization_profiles WHERE organization_id = $1`

	var (
		name, industry   string
		subIndustry      sql.NullString
		competitorsJSON  []byte
		keywordsJSON     []byte
		domainsJSON      []byte
		updatedAt        time.Time
	)

	err := s.db.QueryRowContext(ctx, query, orgID).Scan(
		&name, &industry, &subIndustry, &competitorsJSON, &keywordsJSON, &domainsJSON, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	profile := &Profile{
		OrganizationID: orgID,
		Name:           name,
		Industry:       industry,
		SubIndustry:    subIndustry.String,
		UpdatedAt:      updatedAt,
	}

	var competitors struct {
		Direct   []string `json:"direct"`
		Indirect []string `json:"indirect"`
		Emerging []string `json:"emerging"`
	}
	if len(competitorsJSON) > 0 {
		if err := json.Unmarshal(competitorsJSON, &competitors); err != nil {
			return nil, err
		}
	}
	profile.DirectCompetitors = competitors.Direct
	profile.IndirectCompetitors = competitors.Indirect
	profile.EmergingCompetitors = competitors.Emerging

	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &profile.Keywords); err != nil {
			return nil, err
		}
	}
	if len(domainsJSON) > 0 {
		if err := json.Unmarshal(domainsJSON, &profile.TrustedDomains); err != nil {
			return nil, err
		}
	}

	return profile, nil
}

// Put inserts a profile into the session cache directly. Used by callers
// that already hold a resolved profile and by tests.
func (s *Store) Put(key string, p *Profile) {
	s.mu.Lock()
	s.session[key] = p
	s.mu.Unlock()
}
