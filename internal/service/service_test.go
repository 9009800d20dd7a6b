package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/renovo/internal/catalog"
	"github.com/vbonduro/renovo/internal/db"
	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/notify"
	"github.com/vbonduro/renovo/internal/rooms"
	"github.com/vbonduro/renovo/internal/store"
	"github.com/vbonduro/renovo/internal/tagging"
)

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	mu      sync.Mutex
	saved   map[string][]byte
	saveErr error
	seq     int
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	key := fmt.Sprintf("%s_%d.jpg", prefix, s.seq)
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.saved[key]
	if !ok {
		return nil, "", errs.NotFound("photo")
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, key)
	return nil
}

// stubSuggester returns a fixed suggestion.
type stubSuggester struct {
	raw string
	err error
}

func (s *stubSuggester) Suggest(_ context.Context, _ io.Reader, _ string) (*tagging.Suggestion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &tagging.Suggestion{Tags: tagging.ParseResponse(s.raw), RawResponse: s.raw}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func (r *recordingNotifier) last() notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[len(r.seen)-1]
}

type testEnv struct {
	projects  *ProjectService
	sows      *SOWService
	assets    *AssetService
	rooms     *store.RoomStore
	photos    *store.PhotoStore
	photoStg  *stubPhotoStore
	suggester *stubSuggester
	notes     *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	cat, err := catalog.Default()
	require.NoError(t, err)

	logger := slog.Default()
	propertyStore := store.NewPropertyStore(d)
	projectStore := store.NewProjectStore(d)
	roomStore := store.NewRoomStore(d)
	photoStore := store.NewPhotoStore(d)

	env := &testEnv{
		rooms:     roomStore,
		photos:    photoStore,
		photoStg:  newStubPhotoStore(),
		suggester: &stubSuggester{},
		notes:     &recordingNotifier{},
	}
	env.projects = NewProjectService(propertyStore, projectStore, roomStore, logger)
	env.sows = NewSOWService(env.projects, env.projects, env.notes, 0, logger)
	env.assets = NewAssetService(env.projects, propertyStore, roomStore, photoStore, env.photoStg, env.suggester, cat, rooms.Loose, env.notes, logger)
	return env
}

// seedProject creates a property with the given rooms and one project on it.
func (e *testEnv) seedProject(t *testing.T, roomNames ...string) (*domain.Project, []*domain.Room) {
	t.Helper()
	ctx := context.Background()
	property, err := e.projects.CreateProperty(ctx, "Maple House", "12 Maple St")
	require.NoError(t, err)

	var created []*domain.Room
	for _, name := range roomNames {
		r, err := e.projects.AddRoom(ctx, property.ID, name)
		require.NoError(t, err)
		created = append(created, r)
	}

	project, err := e.projects.CreateProject(ctx, property.ID, "Remodel")
	require.NoError(t, err)
	return project, created
}
