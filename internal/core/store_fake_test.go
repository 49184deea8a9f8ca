package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type fakeEntity struct {
	name   string
	fields map[string]string
}

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	mu       sync.Mutex
	stories  map[string]*Story
	entities map[string][]fakeEntity
	seq      int

	existsCalls int
	pluckCalls  int
	inserts     int
	updates     int

	existsHook func(value string)
	insertErr  func(*Story) error
	pluckErr   error
	updateErr  error
	updateHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stories:  map[string]*Story{},
		entities: map[string][]fakeEntity{},
	}
}

func (f *fakeStore) addEntity(entityType, name, field, value string) {
	f.entities[entityType] = append(f.entities[entityType], fakeEntity{
		name:   name,
		fields: map[string]string{field: value},
	})
}

func (f *fakeStore) addStory(s *Story) {
	f.stories[s.Name] = s
}

func (f *fakeStore) Exists(_ context.Context, entityType, field, value string) (string, bool, error) {
	if f.existsHook != nil {
		f.existsHook(value)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++

	if entityType == StoryType {
		for _, s := range f.stories {
			if field == ColTitle && s.Title == value {
				return s.Name, true, nil
			}
		}
		return "", false, nil
	}
	for _, e := range f.entities[entityType] {
		if e.fields[field] == value {
			return e.name, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeStore) Pluck(_ context.Context, entityType, field string, values []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pluckCalls++
	if f.pluckErr != nil {
		return nil, f.pluckErr
	}

	want := map[string]bool{}
	for _, v := range values {
		want[v] = true
	}
	var out []string
	for _, e := range f.entities[entityType] {
		if want[e.fields[field]] {
			out = append(out, e.name)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertStory(_ context.Context, s *Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		if err := f.insertErr(s); err != nil {
			return err
		}
	}
	for _, existing := range f.stories {
		if existing.Title == s.Title {
			return errors.New(`duplicate key value violates unique constraint "stories_title_key"`)
		}
	}
	f.seq++
	if s.Name == "" {
		s.Name = fmt.Sprintf("STORY-%04d", f.seq)
	}
	cp := *s
	cp.Links = append([]Link(nil), s.Links...)
	f.stories[s.Name] = &cp
	f.inserts++
	return nil
}

// UpdateMedia mirrors the row-locked check of the Postgres store: the
// empty test and the write happen under one lock.
func (f *fakeStore) UpdateMedia(_ context.Context, name, audio, thumbnail string) (MediaApplied, error) {
	if f.updateHook != nil {
		f.updateHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return MediaApplied{}, f.updateErr
	}
	s, ok := f.stories[name]
	if !ok {
		return MediaApplied{}, fmt.Errorf("story %s: %w", name, ErrNotFound)
	}
	applied := MediaApplied{
		Audio:     audio != "" && s.StoryAudio == "",
		Thumbnail: thumbnail != "" && s.ThumbnailImage == "",
	}
	if applied.Audio {
		s.StoryAudio = audio
	}
	if applied.Thumbnail {
		s.ThumbnailImage = thumbnail
	}
	if applied.Any() {
		f.updates++
	}
	return applied, nil
}

func (f *fakeStore) story(name string) *Story {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stories[name]
}

// seedReferences adds themes T1..T3 and tags G1..G2 for Marathi and Urdu.
func seedReferences(f *fakeStore) {
	for _, lang := range []string{"Marathi", "Urdu"} {
		for i := 1; i <= 3; i++ {
			f.addEntity(lang+" themes", fmt.Sprintf("%s-theme-%d", lang, i), ThemeLookupField, fmt.Sprintf("T%d", i))
		}
		for i := 1; i <= 2; i++ {
			f.addEntity(lang+" tags", fmt.Sprintf("%s-tag-%d", lang, i), TagLookupField, fmt.Sprintf("G%d", i))
		}
	}
}
