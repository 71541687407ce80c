// internal/search/pipeline/models.go
package pipeline

import (
	"time"

	"intelligence-workers/internal/search/scoring"
	"intelligence-workers/internal/search/summary"
)

// Search modes.
const (
	ModeComprehensive = "comprehensive"
	ModeFocused       = "focused"
	ModeQuick         = "quick"
)

// Request is one search episode invocation.
type Request struct {
	Query          string `json:"query"`
	OrganizationID string `json:"organizationId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	SearchMode     string `json:"searchMode,omitempty"`
	UseCache       bool   `json:"useCache"`
}

// OrganizationContext echoes the profile slice relevant to the caller.
type OrganizationContext struct {
	Organization string   `json:"organization"`
	Competitors  []string `json:"competitors"`
	Industry     string   `json:"industry"`
}

// Response is the final episode payload.
type Response struct {
	Success             bool                   `json:"success"`
	Query               string                 `json:"query"`
	EnhancedQueries     []string               `json:"enhancedQueries"`
	Mode                string                 `json:"mode"`
	Results             []scoring.ScoredResult `json:"results"`
	Summary             string                 `json:"summary"`
	Insights            summary.Insights       `json:"insights"`
	TotalResults        int                    `json:"totalResults"`
	OrganizationContext *OrganizationContext   `json:"organizationContext"`
	Timestamp           time.Time              `json:"timestamp"`
	Cached              bool                   `json:"cached"`
	CacheAgeSeconds     *int64                 `json:"cacheAge,omitempty"`
	Error               string                 `json:"error,omitempty"`
}

// modeParams holds the per-mode retrieval knobs.
type modeParams struct {
	PerCallLimit int
	MaxVariants  int
	Enrich       bool
}

var modeTable = map[string]modeParams{
	ModeComprehensive: {PerCallLimit: 15, MaxVariants: 3, Enrich: true},
	ModeFocused:       {PerCallLimit: 10, MaxVariants: 2, Enrich: false},
	ModeQuick:         {PerCallLimit: 5, MaxVariants: 2, Enrich: false},
}

// normalizeMode maps unknown modes to focused.
func normalizeMode(mode string) (string, modeParams) {
	if p, ok := modeTable[mode]; ok {
		return mode, p
	}
	return ModeFocused, modeTable[ModeFocused]
}
