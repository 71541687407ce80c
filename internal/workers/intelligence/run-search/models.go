// internal/workers/intelligence/run-search/models.go
package runsearch

// Input is the job variable payload for one search episode.
type Input struct {
	Query          string `json:"query"`
	OrganizationID string `json:"organizationId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	SearchMode     string `json:"searchMode,omitempty"`
	UseCache       bool   `json:"useCache,omitempty"`
}

// Output carries the episode result back into the process instance.
type Output struct {
	SearchResult map[string]interface{} `json:"searchResult"`
}

// inputSchema validates the job variables before the pipeline runs.
var inputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"query"},
	"properties": map[string]interface{}{
		"query": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"organizationId": map[string]interface{}{"type": "string"},
		"conversationId": map[string]interface{}{"type": "string"},
		"searchMode": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"comprehensive", "focused", "quick"},
		},
		"useCache": map[string]interface{}{"type": "boolean"},
	},
}
