package core

import (
	"context"
	"time"
)

// StoryType is the entity type of imported stories.
const StoryType = "Story"

// Store is the persistence layer consumed by the import pipeline.
// Implementations write without any permission checks: imports and media
// updates are trusted operations.
type Store interface {
	// Exists returns the name of the first entity of entityType whose field
	// equals value.
	Exists(ctx context.Context, entityType, field, value string) (string, bool, error)

	// Pluck returns the names of all entities of entityType whose field is one
	// of values. Result order is whatever the store yields.
	Pluck(ctx context.Context, entityType, field string, values []string) ([]string, error)

	// InsertStory persists a new story with its links. The store assigns
	// story.Name when it is empty.
	InsertStory(ctx context.Context, story *Story) error

	// UpdateMedia sets each given media value on the named story only if the
	// column is still empty, deciding and writing under one row lock so
	// overlapping calls cannot both win. Empty values are never written.
	// Returns an error wrapping ErrNotFound when the story does not exist.
	UpdateMedia(ctx context.Context, name, audio, thumbnail string) (MediaApplied, error)
}

// MediaApplied reports which media columns an UpdateMedia call wrote.
type MediaApplied struct {
	Audio     bool
	Thumbnail bool
}

// Any reports whether at least one column was written.
func (m MediaApplied) Any() bool {
	return m.Audio || m.Thumbnail
}

// Row is one CSV record keyed by its exact header names.
type Row map[string]string

// Get returns the value for key, or "" if the column is absent.
func (r Row) Get(key string) string {
	return r[key]
}

// Link is a child record of a story pointing at one theme or tag.
type Link struct {
	Collection string `json:"collection"` // e.g. "marathi_themes"
	Field      string `json:"field"`      // "linked_theme" or "linked_tag"
	Value      string `json:"value"`      // internal name of the referenced entity
}

// Story is the record created for each imported row.
type Story struct {
	Name                        string `json:"name"`
	Title                       string `json:"title"`
	Language                    string `json:"language"`
	AlsoAvailableIn             string `json:"also_available_in,omitempty"`
	Collaborators               string `json:"collaborators,omitempty"`
	Duration                    int    `json:"duration"`
	StoryDescription            string `json:"story_description,omitempty"`
	MoreResources               string `json:"more_resources,omitempty"`
	PublicationDate             string `json:"publication_date,omitempty"`
	NodeID                      string `json:"node_id,omitempty"`
	IsItByCommunity             bool   `json:"is_it_by_community"`
	IsThisStoryValidatedByDsert bool   `json:"is_this_story_validated_by_dsert"`
	PopularStory                bool   `json:"popular_story"`
	StoryAudio                  string `json:"story_audio,omitempty"`
	ThumbnailImage              string `json:"thumbnail_image,omitempty"`
	Links                       []Link `json:"links,omitempty"`
}

// Append adds a child link to the named collection, preserving call order.
func (s *Story) Append(collection, field, value string) {
	s.Links = append(s.Links, Link{Collection: collection, Field: field, Value: value})
}

// LinkValues returns the referenced names in one collection, in order.
func (s *Story) LinkValues(collection string) []string {
	var out []string
	for _, l := range s.Links {
		if l.Collection == collection {
			out = append(out, l.Value)
		}
	}
	return out
}

// OutcomeKind tags the result of transforming one row.
type OutcomeKind string

const (
	OutcomeCreated OutcomeKind = "created"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is the result of TransformRow.
//
//   - Created: Story is the new record's name.
//   - Skipped: Story is the existing record's name, Reason explains why.
//   - Failed:  Title is the row's title, Error the rendered diagnostic.
type Outcome struct {
	Kind   OutcomeKind
	Story  string
	Reason string
	Title  string
	Error  string
}

// SkippedRow describes a row that was not imported because it already exists.
type SkippedRow struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	Story  string `json:"story"`
}

// FailedRow describes a row that could not be imported.
type FailedRow struct {
	Title string `json:"title"`
	Error string `json:"error"`
	Line  int    `json:"line"`
}

// ProvenanceEntry pairs a created story with the node id of its source row.
type ProvenanceEntry struct {
	StoryName string
	NodeID    string
}

// Summary is the result of one batch import.
type Summary struct {
	ImportID     string       `json:"import_id"`
	CreatedCount int          `json:"created_count"`
	SkippedCount int          `json:"skipped_count"`
	FailedCount  int          `json:"failed_count"`
	Created      []string     `json:"created"`
	Skipped      []SkippedRow `json:"skipped"`
	Failed       []FailedRow  `json:"failed"`

	// Languages and Titles map created story names to the language label
	// and title of their source row.
	Languages   map[string]string `json:"-"`
	Titles      map[string]string `json:"-"`
	MappingPath string            `json:"mapping_path,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	Duration    time.Duration     `json:"duration_ns"`
}

// Total returns the number of rows the import looked at.
func (s *Summary) Total() int {
	return s.CreatedCount + s.SkippedCount + s.FailedCount
}
