// Package store persists stories and resolves reference entities in
// PostgreSQL.
package store

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/JonMunkholm/storyimport/internal/core"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DB is a DBTX that can start transactions. Satisfied by *pgxpool.Pool.
type DB interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// Postgres implements core.Store.
type Postgres struct {
	db      DB
	newName func() string
}

var _ core.Store = (*Postgres)(nil)

// NewPostgres creates a store over db. Story names are random UUIDs.
func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db, newName: uuid.NewString}
}

// Migrate applies the embedded schema. Safe to run on every start.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// tableFor maps an entity type to its table: "Story" is stories and any
// other type is lower-cased with spaces as underscores ("Urdu themes" is
// urdu_themes).
func tableFor(entityType string) (string, error) {
	if entityType == core.StoryType {
		return pgx.Identifier{"stories"}.Sanitize(), nil
	}
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(entityType)), " ", "_")
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid entity type %q", entityType)
	}
	return pgx.Identifier{name}.Sanitize(), nil
}

// columnFor validates a field name and quotes it as a column.
func columnFor(field string) (string, error) {
	if !identPattern.MatchString(field) {
		return "", fmt.Errorf("invalid field %q", field)
	}
	return pgx.Identifier{field}.Sanitize(), nil
}

func existsQuery(table, column string) string {
	return fmt.Sprintf("SELECT name FROM %s WHERE %s = $1 ORDER BY name LIMIT 1", table, column)
}

func pluckQuery(table, column string) string {
	return fmt.Sprintf("SELECT name FROM %s WHERE %s = ANY($1)", table, column)
}

// Exists returns the name of the first entityType row whose field equals value.
func (p *Postgres) Exists(ctx context.Context, entityType, field, value string) (string, bool, error) {
	table, err := tableFor(entityType)
	if err != nil {
		return "", false, err
	}
	column, err := columnFor(field)
	if err != nil {
		return "", false, err
	}

	var name string
	err = p.db.QueryRow(ctx, existsQuery(table, column), value).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "query %s by %s", entityType, field)
	}
	return name, true, nil
}

// Pluck returns the names of all entityType rows whose field is in values.
func (p *Postgres) Pluck(ctx context.Context, entityType, field string, values []string) ([]string, error) {
	table, err := tableFor(entityType)
	if err != nil {
		return nil, err
	}
	column, err := columnFor(field)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.Query(ctx, pluckQuery(table, column), values)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s by %s", entityType, field)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s names", entityType)
	}
	return names, nil
}

const insertStorySQL = `
INSERT INTO stories (
    name, title, language, also_available_in, collaborators, duration,
    story_description, more_resources, publication_date, node_id,
    is_it_by_community, is_this_story_validated_by_dsert, popular_story,
    story_audio, thumbnail_image
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

const insertLinkSQL = `
INSERT INTO story_links (story_name, collection, idx, field, value)
VALUES ($1, $2, $3, $4, $5)`

// InsertStory writes the story and its links in one transaction. A story
// without a name gets a new UUID.
func (p *Postgres) InsertStory(ctx context.Context, s *core.Story) error {
	name := s.Name
	if name == "" {
		name = p.newName()
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, insertStorySQL,
		name, s.Title, s.Language, s.AlsoAvailableIn, s.Collaborators, s.Duration,
		s.StoryDescription, s.MoreResources, s.PublicationDate, s.NodeID,
		s.IsItByCommunity, s.IsThisStoryValidatedByDsert, s.PopularStory,
		s.StoryAudio, s.ThumbnailImage,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(err, "story %q already exists", s.Title)
		}
		return errors.Wrap(err, "insert story")
	}

	if len(s.Links) > 0 {
		if err := sendLinks(ctx, tx, name, s.Links); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit story")
	}
	s.Name = name
	return nil
}

// linkBatch queues one insert per link. idx counts from 1 within each
// collection, in append order.
func linkBatch(storyName string, links []core.Link) *pgx.Batch {
	batch := &pgx.Batch{}
	next := map[string]int{}
	for _, l := range links {
		next[l.Collection]++
		batch.Queue(insertLinkSQL, storyName, l.Collection, next[l.Collection], l.Field, l.Value)
	}
	return batch
}

func sendLinks(ctx context.Context, tx pgx.Tx, storyName string, links []core.Link) error {
	br := tx.SendBatch(ctx, linkBatch(storyName, links))
	for i := range links {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return errors.Wrapf(err, "insert %s link %d", links[i].Collection, i)
		}
	}
	return errors.Wrap(br.Close(), "close link batch")
}

const getStorySQL = `
SELECT name, title, language, also_available_in, collaborators, duration,
       story_description, more_resources, publication_date, node_id,
       is_it_by_community, is_this_story_validated_by_dsert, popular_story,
       story_audio, thumbnail_image
FROM stories WHERE name = $1`

const getLinksSQL = `
SELECT collection, field, value FROM story_links
WHERE story_name = $1 ORDER BY collection, idx`

// GetStory loads a story and its links.
func (p *Postgres) GetStory(ctx context.Context, name string) (*core.Story, error) {
	var s core.Story
	err := p.db.QueryRow(ctx, getStorySQL, name).Scan(
		&s.Name, &s.Title, &s.Language, &s.AlsoAvailableIn, &s.Collaborators, &s.Duration,
		&s.StoryDescription, &s.MoreResources, &s.PublicationDate, &s.NodeID,
		&s.IsItByCommunity, &s.IsThisStoryValidatedByDsert, &s.PopularStory,
		&s.StoryAudio, &s.ThumbnailImage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("story %s: %w", name, core.ErrNotFound)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get story %s", name)
	}

	rows, err := p.db.Query(ctx, getLinksSQL, name)
	if err != nil {
		return nil, errors.Wrapf(err, "get links of %s", name)
	}
	links, err := pgx.CollectRows(rows, pgx.RowToStructByPos[core.Link])
	if err != nil {
		return nil, errors.Wrapf(err, "scan links of %s", name)
	}
	s.Links = links
	return &s, nil
}

const lockMediaSQL = `
SELECT story_audio, thumbnail_image FROM stories WHERE name = $1 FOR UPDATE`

const updateMediaSQL = `
UPDATE stories SET story_audio = $2, thumbnail_image = $3, modified_at = now()
WHERE name = $1`

// UpdateMedia fills the empty media columns of a story. The row is locked
// while the empty check runs, so of two overlapping calls only the first
// writes a given column.
func (p *Postgres) UpdateMedia(ctx context.Context, name, audio, thumbnail string) (core.MediaApplied, error) {
	var applied core.MediaApplied

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return applied, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var curAudio, curThumb string
	err = tx.QueryRow(ctx, lockMediaSQL, name).Scan(&curAudio, &curThumb)
	if errors.Is(err, pgx.ErrNoRows) {
		return applied, fmt.Errorf("story %s: %w", name, core.ErrNotFound)
	}
	if err != nil {
		return applied, errors.Wrapf(err, "lock story %s", name)
	}

	applied = mediaToApply(curAudio, curThumb, audio, thumbnail)
	if !applied.Any() {
		return applied, nil
	}
	if applied.Audio {
		curAudio = audio
	}
	if applied.Thumbnail {
		curThumb = thumbnail
	}

	if _, err := tx.Exec(ctx, updateMediaSQL, name, curAudio, curThumb); err != nil {
		return core.MediaApplied{}, errors.Wrapf(err, "update media of %s", name)
	}
	if err := tx.Commit(ctx); err != nil {
		return core.MediaApplied{}, errors.Wrapf(err, "commit media of %s", name)
	}
	return applied, nil
}

// mediaToApply decides which given values land in still-empty columns.
func mediaToApply(curAudio, curThumb, audio, thumbnail string) core.MediaApplied {
	return core.MediaApplied{
		Audio:     audio != "" && curAudio == "",
		Thumbnail: thumbnail != "" && curThumb == "",
	}
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
