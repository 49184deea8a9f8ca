// Package core imports stories from a CSV export into the story store.
//
// The package holds the import pipeline independent of any transport: the
// HTTP server and the storyctl CLI both drive the same [Service].
//
// # Pipeline
//
// [Service.RunImport] streams the configured CSV row by row. Each row goes
// through a [Transformer]:
//
//  1. A row without a title fails.
//  2. A row whose title already exists is skipped; nothing is written.
//  3. The language selects a [LanguageSchema] from the [Languages] registry,
//     which names the theme/tag entity types and link collections.
//  4. Scalar fields are normalized ([ParseDuration], [ParseFlag]).
//  5. Theme and tag identifiers are resolved to internal names with one
//     batched lookup each ([Resolver]); unknown identifiers are dropped.
//  6. The story and its links are inserted.
//
// Failures are isolated to their row and collected in the [Summary]. When at
// least one story was created, a story_name,node_id mapping is written next
// to the source ([WriteProvenance]).
//
// # Media
//
// [Service.AttachMedia] sets the audio and thumbnail references of a story.
// A field that already holds a value is never overwritten.
//
// # Errors
//
// [ErrorKind] groups errors by how a caller reacts to them and [MapError]
// turns them into coded messages for users.
package core
