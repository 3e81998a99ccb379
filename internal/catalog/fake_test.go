package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/vpnhouse/songbook/internal/types"
	"github.com/vpnhouse/songbook/pkg/xerror"
)

type memoryStore struct {
	mu      sync.Mutex
	songs   map[int]types.Song
	artists []types.SongArtist
	writes  int
}

func newMemoryStore(songs ...types.Song) *memoryStore {
	m := &memoryStore{songs: map[int]types.Song{}}
	for _, s := range songs {
		m.songs[s.ID] = s
	}
	return m
}

func (m *memoryStore) ListSongs(_ context.Context) ([]types.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var songs []types.Song
	for _, s := range m.songs {
		songs = append(songs, s)
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })
	return songs, nil
}

func (m *memoryStore) GetSong(_ context.Context, id int) (*types.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return nil, xerror.EEntryNotFound("song not found", nil)
	}
	return &s, nil
}

func (m *memoryStore) PutSong(_ context.Context, song types.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.songs[song.ID]; ok {
		return xerror.EExists("song already exists", nil)
	}
	m.songs[song.ID] = song
	m.writes++
	return nil
}

func (m *memoryStore) PutSongs(_ context.Context, songs []types.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range songs {
		m.songs[s.ID] = s
	}
	m.writes++
	return nil
}

func (m *memoryStore) UpdateSong(_ context.Context, id int, fields map[string]interface{}) (*types.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return nil, xerror.EEntryNotFound("song not found", nil)
	}

	bs, _ := json.Marshal(fields)
	if err := json.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	m.songs[id] = s
	m.writes++
	return &s, nil
}

func (m *memoryStore) DeleteSong(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.songs, id)
	return nil
}

func (m *memoryStore) SetTranslations(_ context.Context, id int, translations map[string]types.Translation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.songs[id]
	if !ok {
		return xerror.EEntryNotFound("song not found", nil)
	}
	s.TranslationCache = translations
	m.songs[id] = s
	m.writes++
	return nil
}

func (m *memoryStore) QueryArtists(_ context.Context, q types.ArtistQuery) ([]types.SongArtist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.SongArtist
	for _, a := range m.artists {
		if a.SongID != q.SongID {
			continue
		}
		switch {
		case q.RoleName != nil:
			if !strings.HasPrefix(a.RoleName, *q.RoleName) {
				continue
			}
		case q.ArtistName != nil:
			if !strings.HasPrefix(a.ArtistName, *q.ArtistName) {
				continue
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryStore) PutArtists(_ context.Context, artists []types.SongArtist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artists = append(m.artists, artists...)
	m.writes++
	return nil
}

func (m *memoryStore) Shutdown() error { return nil }
func (m *memoryStore) Running() bool   { return true }

type dictTranslator struct {
	calls int
	dict  map[string]string
	err   error
}

func (d *dictTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	d.calls++
	if d.err != nil {
		return "", d.err
	}
	if source != SourceLanguage {
		return "", errors.New("unexpected source language")
	}
	return d.dict[target+":"+text], nil
}
