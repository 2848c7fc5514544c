package handlers_test

import (
	"PortfolioCMS/internal/blob"
	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/handlers"
	"PortfolioCMS/internal/middleware"
	"PortfolioCMS/internal/repo"
	"PortfolioCMS/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const testSecret = "test-secret"

type testEnv struct {
	router http.Handler
	cfg    *config.Config
	admins *service.AdminService
}

// newTestEnv собирает роутер поверх in-memory SQLite и локального хранилища во временной папке.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: fmt.Sprintf("file:h_%s?mode=memory&cache=shared", name)}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		AuthSecret:      testSecret,
		UploadMaxMB:     1,
		StorageProvider: config.StorageLocal,
		StoragePath:     t.TempDir(),
		PublicURLPrefix: "/uploads/",
	}
	logger := zap.NewNop().Sugar()
	store, err := blob.New(context.Background(), cfg)
	require.NoError(t, err)

	folders := repo.NewFolderRepository(db)
	media := repo.NewMediaRepository(db)
	admins := service.NewAdminService(repo.NewAdminRepository(db))
	tree := service.NewFolderTree(folders, media, store, logger)
	mediaSvc := service.NewMediaService(media, tree, store, logger)

	h := handlers.NewHandler(admins, tree, mediaSvc, logger, cfg)
	return &testEnv{router: h.Router, cfg: cfg, admins: admins}
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// do выполняет авторизованный запрос с JSON-телом.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuthCookie(t, req, 1, testSecret)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) upload(t *testing.T, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = fw.Write(content)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/media", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	addAuthCookie(t, req, 1, testSecret)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&v), rr.Body.String())
	return v
}
