package loam

import (
	"fmt"
	"time"

	"github.com/aretw0/demark/pkg/domain"
)

// TranscriptMetadata is the front matter of an archived transcript.
// The normalized summary is the document body.
type TranscriptMetadata struct {
	ID     string             `json:"id" yaml:"id" mapstructure:"id"`
	Query  string             `json:"query" yaml:"query" mapstructure:"query"`
	Status string             `json:"status" yaml:"status" mapstructure:"status"`
	Chain  string             `json:"chain_used" yaml:"chain_used" mapstructure:"chain_used"`
	Tools  []domain.ToolBadge `json:"tools" yaml:"tools" mapstructure:"tools"`
	Steps  []domain.StepView  `json:"steps" yaml:"steps" mapstructure:"steps"`
	Error  string             `json:"error,omitempty" yaml:"error,omitempty" mapstructure:"error"`

	// Created is written as RFC 3339 text. YAML decoders disagree on whether a
	// timestamp comes back as a string or a time.Time, so both are accepted.
	Created any `json:"created" yaml:"created" mapstructure:"created"`
}

func metadataFrom(t *domain.Transcript) TranscriptMetadata {
	return TranscriptMetadata{
		ID:      t.ID,
		Query:   t.View.Query,
		Status:  t.View.Status,
		Chain:   t.View.Chain,
		Tools:   t.View.Tools,
		Steps:   t.View.Steps,
		Error:   t.View.Error,
		Created: t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (m TranscriptMetadata) createdAt() (time.Time, error) {
	switch v := m.Created.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		return time.Parse(time.RFC3339Nano, v)
	default:
		return time.Time{}, fmt.Errorf("unsupported created value %T", v)
	}
}
