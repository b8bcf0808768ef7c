package sdk

// QueryRequest is the payload for Query.
type QueryRequest struct {
	Query   string         `json:"query"`
	Domain  string         `json:"domain"`
	UserID  string         `json:"user_id,omitempty"`
	Filters map[string]any `json:"filters,omitempty"`
}

// QueryResponse is the assembled pipeline result.
type QueryResponse struct {
	Answer     string         `json:"answer"`
	Context    []string       `json:"context"`
	Sources    []string       `json:"sources"`
	Metrics    map[string]any `json:"metrics,omitempty"`
	Insights   *string        `json:"insights"`
	DomainData map[string]any `json:"domain_specific_data"`
	Timestamp  string         `json:"timestamp"`
}

// ChatResponse is a direct generation result.
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// StatusResponse reports aggregated component health.
type StatusResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp string            `json:"timestamp"`
}

// DomainMetricsResponse is the latest extracted metric snapshot for a domain.
type DomainMetricsResponse struct {
	Domain    string         `json:"domain"`
	Metrics   map[string]any `json:"metrics"`
	Timestamp string         `json:"timestamp"`
}

// Alert is one entry from the alert history.
type Alert struct {
	ID        string         `json:"id"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Payload   map[string]any `json:"payload"`
	Timestamp string         `json:"timestamp"`
}

// AlertsResponse is a page of alert history, newest first.
type AlertsResponse struct {
	Alerts []Alert `json:"alerts"`
	Count  int     `json:"count"`
}

// AlertFilter narrows an alert history request. Zero values mean no filter.
type AlertFilter struct {
	Domain   string
	Severity string
	Limit    int
}
