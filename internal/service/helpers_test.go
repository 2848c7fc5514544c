package service

import (
	"PortfolioCMS/internal/blob"
	"PortfolioCMS/internal/model"
	"PortfolioCMS/internal/repo"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// memStore — in-memory blob.Store; failDelete задаёт ключи, удаление которых падает.
type memStore struct {
	mu         sync.Mutex
	data       map[string][]byte
	failDelete map[string]error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, failDelete: map[string]error{}}
}

func (s *memStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return "/uploads/" + key, nil
}

func (s *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(d)), nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failDelete[key]; ok {
		return err
	}
	delete(s.data, key)
	return nil
}

func (s *memStore) keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

var _ blob.Store = (*memStore)(nil)

var errBlobDown = errors.New("blob backend unavailable")

type fixture struct {
	db    *gorm.DB
	blobs *memStore
	tree  *FolderTree
	media *MediaService
	mrepo repo.MediaRepository
	frepo repo.FolderRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := zap.NewNop().Sugar()
	fr := repo.NewFolderRepository(db)
	mr := repo.NewMediaRepository(db)
	store := newMemStore()
	tree := NewFolderTree(fr, mr, store, logger)
	return &fixture{
		db:    db,
		blobs: store,
		tree:  tree,
		media: NewMediaService(mr, tree, store, logger),
		mrepo: mr,
		frepo: fr,
	}
}

func (f *fixture) folder(t *testing.T, name string, parent *model.Folder) *model.Folder {
	t.Helper()
	var pid *string
	if parent != nil {
		pid = &parent.ID
	}
	created, err := f.tree.CreateFolder(context.Background(), name, pid, FolderMeta{}, nil)
	require.NoError(t, err)
	return created
}

// item вставляет метаданные напрямую, минуя загрузку.
func (f *fixture) item(t *testing.T, title string, folder *model.Folder, size int64) *model.Media {
	t.Helper()
	m := &model.Media{
		Title:    title,
		Type:     model.MediaDocument,
		BlobKey:  "k-" + title,
		URL:      "/uploads/k-" + title,
		FileSize: size,
	}
	if folder != nil {
		m.FolderID = &folder.ID
	}
	_, _ = f.blobs.Put(context.Background(), m.BlobKey, "", []byte(title))
	require.NoError(t, f.mrepo.Create(context.Background(), m))
	return m
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }
