package core

import (
	"context"

	"github.com/pkg/errors"
)

// CSV header names of the source export.
const (
	ColTitle           = "title"
	ColLanguage        = "field_language"
	ColAlsoAvailableIn = "field_also_available_in"
	ColCollaborators   = "field_collaborator_s_"
	ColDuration        = "field_duration"
	ColBody            = "body"
	ColMoreResources   = "field_more_resources"
	ColPublicationDate = "field_publication_date"
	ColNodeID          = "nid"
	ColByCommunity     = "field_is_it_by_community"
	ColDsertValidated  = "field_dsert_validated"
	ColPopularStory    = "field_popular_story"
	ColThemes          = "field_theme_s_"
	ColTags            = "field_tag_s_"
)

// Child link field names.
const (
	FieldLinkedTheme = "linked_theme"
	FieldLinkedTag   = "linked_tag"
)

// ReasonAlreadyExists is the skip reason for rows whose title is taken.
const ReasonAlreadyExists = "already exists"

// Transformer turns one CSV row into a stored story.
type Transformer struct {
	store     Store
	languages *Languages
	resolver  *Resolver
}

// NewTransformer creates a transformer. A nil languages uses DefaultLanguages.
func NewTransformer(store Store, languages *Languages) *Transformer {
	if languages == nil {
		languages = DefaultLanguages()
	}
	return &Transformer{
		store:     store,
		languages: languages,
		resolver:  NewResolver(store),
	}
}

// Languages returns the registry the transformer builds stories with.
func (t *Transformer) Languages() *Languages {
	return t.languages
}

// TransformRow imports one row.
//
// Rows that cannot be processed at all (no title, unsupported language,
// store errors before insert) return an error; the caller records them as
// failed. A rejected insert is returned as a failed Outcome carrying the
// rendered diagnostic.
//
// The existence check and the insert are not atomic. Two concurrent imports
// of the same title can both pass the check; the second insert is then left
// to the store's unique index.
func (t *Transformer) TransformRow(ctx context.Context, row Row) (Outcome, error) {
	title := row.Get(ColTitle)
	if title == "" {
		return Outcome{}, ErrTitleMissing
	}

	existing, found, err := t.store.Exists(ctx, StoryType, ColTitle, title)
	if err != nil {
		return Outcome{}, errors.Wrap(err, "check existing story")
	}
	if found {
		return Outcome{Kind: OutcomeSkipped, Story: existing, Reason: ReasonAlreadyExists, Title: title}, nil
	}

	language := row.Get(ColLanguage)
	schema, err := t.languages.Lookup(language)
	if err != nil {
		return Outcome{}, err
	}

	themeIDs := SplitList(row.Get(ColThemes))
	tagIDs := SplitList(row.Get(ColTags))

	story := buildStory(row, title, language)

	themes, err := t.resolver.Resolve(ctx, schema.ThemeType, ThemeLookupField, themeIDs)
	if err != nil {
		return Outcome{}, err
	}
	tags, err := t.resolver.Resolve(ctx, schema.TagType, TagLookupField, tagIDs)
	if err != nil {
		return Outcome{}, err
	}

	for _, theme := range themes {
		story.Append(schema.ThemeLinks, FieldLinkedTheme, theme)
	}
	for _, tag := range tags {
		story.Append(schema.TagLinks, FieldLinkedTag, tag)
	}

	if err := t.store.InsertStory(ctx, story); err != nil {
		return Outcome{
			Kind:  OutcomeFailed,
			Title: title,
			Error: RenderDiagnostic(errors.Wrap(err, "insert story")),
		}, nil
	}

	return Outcome{Kind: OutcomeCreated, Story: story.Name, Title: title}, nil
}

// buildStory copies and normalizes the scalar fields of row.
func buildStory(row Row, title, language string) *Story {
	return &Story{
		Title:                       title,
		Language:                    language,
		AlsoAvailableIn:             row.Get(ColAlsoAvailableIn),
		Collaborators:               row.Get(ColCollaborators),
		Duration:                    ParseDuration(row.Get(ColDuration)),
		StoryDescription:            row.Get(ColBody),
		MoreResources:               row.Get(ColMoreResources),
		PublicationDate:             row.Get(ColPublicationDate),
		NodeID:                      row.Get(ColNodeID),
		IsItByCommunity:             ParseFlag(row.Get(ColByCommunity), SentinelCommunity),
		IsThisStoryValidatedByDsert: ParseFlag(row.Get(ColDsertValidated), SentinelValidated),
		PopularStory:                ParseFlag(row.Get(ColPopularStory), SentinelPopular),
	}
}
