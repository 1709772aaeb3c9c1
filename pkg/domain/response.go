package domain

import "fmt"

// Response status values reported by the assistant.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Defaults applied to fields the assistant left empty.
const (
	DefaultSummary = "No response available"
	DefaultChain   = "Unknown"
	ErrorChain     = "Error"
)

// Response is the envelope returned by the research assistant for a query.
type Response struct {
	Status    string   `json:"status"`
	Summary   string   `json:"summary"`
	Query     string   `json:"query"`
	ToolsUsed []string `json:"tools_used"`
	ChainUsed string   `json:"chain_used"`
	Timeline  []Step   `json:"timeline"`
	Error     *string  `json:"error"`
}

// Step is a single entry of the assistant's reasoning trace.
type Step struct {
	// Step is the 1-based position reported by the assistant. Zero means absent.
	Step          int    `json:"step,omitempty"`
	Tool          string `json:"tool,omitempty"`
	Output        string `json:"output,omitempty"`
	OutputSummary string `json:"output_summary,omitempty"`
}

// WithDefaults returns a copy of r where every empty field carries its default.
// query is used when the assistant did not echo the query back.
func (r Response) WithDefaults(query string) Response {
	if r.Status == "" {
		r.Status = StatusOK
	}
	if r.Summary == "" {
		r.Summary = DefaultSummary
	}
	if r.Query == "" {
		r.Query = query
	}
	if r.ToolsUsed == nil {
		r.ToolsUsed = []string{}
	}
	if r.ChainUsed == "" {
		r.ChainUsed = DefaultChain
	}
	if r.Timeline == nil {
		r.Timeline = []Step{}
	}
	if r.Error != nil && *r.Error == "" {
		r.Error = nil
	}
	return r
}

// ErrorResponse builds the envelope shown when the assistant could not be reached.
func ErrorResponse(query, baseURL string, err error) Response {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return Response{
		Status:    StatusError,
		Summary:   fmt.Sprintf("Unable to connect to the AI service. Please ensure the backend server is running on %s.", baseURL),
		Query:     query,
		ToolsUsed: []string{},
		ChainUsed: ErrorChain,
		Timeline:  []Step{},
		Error:     &msg,
	}
}

// Failed reports whether the envelope describes a failed query.
func (r Response) Failed() bool {
	return r.Status == StatusError || (r.Error != nil && *r.Error != "")
}
