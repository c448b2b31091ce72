// Package history is the append-only merge-event feed.
//
// When the host application performs a merge through its own git handlers,
// it records the event here. The graph pipeline later reconciles recorded
// events against the merges it detects in commit topology, so merges whose
// commits have been rebased away or whose branches were renamed can still
// be drawn.
//
// Two backends are provided:
//   - FileStore: JSON files per repository, for CLI usage
//   - MongoStore: Mongo collection, for multi-instance deployments
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gitlanes/pkg/commitgraph"
)

// Event is a single recorded merge between two branches of a repository.
type Event struct {
	ID          string               `json:"id" bson:"id"`
	RepoID      string               `json:"repo_id" bson:"repo_id"`
	From        string               `json:"from" bson:"from"`
	To          string               `json:"to" bson:"to"`
	Type        commitgraph.MergeType `json:"type" bson:"type"`
	Commit      string               `json:"commit,omitempty" bson:"commit,omitempty"`
	Description string               `json:"description,omitempty" bson:"description,omitempty"`
	RecordedAt  time.Time            `json:"recorded_at" bson:"recorded_at"`
}

// NewEvent creates a merge event with a fresh ID and the current time.
func NewEvent(repoID, from, to string, mergeType commitgraph.MergeType) Event {
	return Event{
		ID:         uuid.NewString(),
		RepoID:     repoID,
		From:       from,
		To:         to,
		Type:       mergeType,
		RecordedAt: time.Now().UTC(),
	}
}

// Merge converts the event into the pipeline's merge representation.
func (e Event) Merge() commitgraph.Merge {
	return commitgraph.Merge{
		From:        e.From,
		To:          e.To,
		Commit:      e.Commit,
		Type:        e.Type,
		Description: e.Description,
		Timestamp:   e.RecordedAt.UnixMilli(),
	}
}

// Store is the interface for merge-event backends.
type Store interface {
	// Record appends a merge event.
	Record(ctx context.Context, event Event) error

	// Events returns all events recorded for a repository, oldest first.
	// A repository with no events yields an empty slice, not an error.
	Events(ctx context.Context, repoID string) ([]Event, error)

	// Close releases resources held by the backend.
	Close() error
}

// Merges loads a repository's feed and converts it for graph assembly.
// Feed failures yield nil: recorded merges enrich the graph but must never
// block building it.
func Merges(ctx context.Context, store Store, repoID string) []commitgraph.Merge {
	if store == nil {
		return nil
	}
	events, err := store.Events(ctx, repoID)
	if err != nil {
		return nil
	}
	merges := make([]commitgraph.Merge, 0, len(events))
	for _, e := range events {
		merges = append(merges, e.Merge())
	}
	return merges
}
