package handlers_test

import (
	"PortfolioCMS/internal/model"
	"PortfolioCMS/internal/service"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFolder(t *testing.T, env *testEnv, name string, parent *string) model.Folder {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/api/media/folders", map[string]any{"name": name, "parent": parent})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[model.Folder](t, rr)
}

func TestFolders_CreateAndDuplicate(t *testing.T) {
	env := newTestEnv(t)

	docs := createFolder(t, env, "Docs", nil)
	assert.Equal(t, "Docs", docs.Name)
	assert.Equal(t, model.DefaultFolderColor, docs.Color)
	require.NotNil(t, docs.CreatedBy)
	assert.Equal(t, int64(1), *docs.CreatedBy)

	rr := env.do(t, http.MethodPost, "/api/media/folders", `{"name":"Docs"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/media/folders", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/media/folders", `{"name":"X","parent":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// то же имя под другим родителем допустимо
	createFolder(t, env, "Docs", &docs.ID)
}

func TestFolders_DocsScenario(t *testing.T) {
	env := newTestEnv(t)
	docs := createFolder(t, env, "Docs", nil)
	y2024 := createFolder(t, env, "2024", &docs.ID)

	// цикл отклоняется, дерево не меняется
	rr := env.do(t, http.MethodPost, "/api/media/folders/"+docs.ID+"/move", map[string]any{"parent": y2024.ID})
	assert.Equal(t, http.StatusConflict, rr.Code)

	crumbs := decode[[]service.Crumb](t, env.do(t, http.MethodGet, "/api/media/folders/"+y2024.ID+"/breadcrumbs", nil))
	assert.Equal(t, []service.Crumb{{ID: docs.ID, Name: "Docs"}, {ID: y2024.ID, Name: "2024"}}, crumbs)

	rr = env.do(t, http.MethodDelete, "/api/media/folders/"+docs.ID+"?contents=move", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	report := decode[service.DeleteReport](t, rr)
	assert.Equal(t, service.MoveContentsUp, report.Disposition)
	assert.Equal(t, int64(1), report.MovedFolders)

	tree := decode[[]service.TreeNode](t, env.do(t, http.MethodGet, "/api/media/folders/tree", nil))
	require.Len(t, tree, 1)
	assert.Equal(t, "2024", tree[0].Name)

	rr = env.do(t, http.MethodGet, "/api/media/folders/"+docs.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFolders_UpdateMoveAndContents(t *testing.T) {
	env := newTestEnv(t)
	a := createFolder(t, env, "A", nil)
	b := createFolder(t, env, "B", nil)

	rr := env.do(t, http.MethodPut, "/api/media/folders/"+a.ID, `{"description":"first","color":"#000000"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[model.Folder](t, rr)
	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, "first", updated.Description)
	assert.Equal(t, "#000000", updated.Color)

	rr = env.do(t, http.MethodPut, "/api/media/folders/"+a.ID, `{"name":"B"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/media/folders/"+a.ID+"/move", map[string]any{"parent": b.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	moved := decode[model.Folder](t, rr)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, b.ID, *moved.ParentID)

	contents := decode[service.FolderContents](t, env.do(t, http.MethodGet, "/api/media/folders?parent="+b.ID, nil))
	require.Len(t, contents.Folders, 1)
	assert.Equal(t, "A", contents.Folders[0].Name)
	assert.Equal(t, b.ID, contents.Folder.ID)

	root := decode[service.FolderContents](t, env.do(t, http.MethodGet, "/api/media/folders", nil))
	assert.Nil(t, root.Folder)
	assert.Len(t, root.Folders, 1)

	rr = env.do(t, http.MethodPost, "/api/media/folders/"+a.ID+"/move", `{"parent":null}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFolders_DeleteValidationAndStats(t *testing.T) {
	env := newTestEnv(t)
	a := createFolder(t, env, "A", nil)

	rr := env.do(t, http.MethodDelete, "/api/media/folders/"+a.ID+"?contents=purge", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/media/folders/"+a.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[service.Stats](t, rr)
	assert.Zero(t, stats.MediaCount)

	rr = env.do(t, http.MethodDelete, "/api/media/folders/"+a.ID+"?deleteContents=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	report := decode[service.DeleteReport](t, rr)
	assert.Equal(t, service.DeleteContents, report.Disposition)
	assert.Equal(t, []string{a.ID}, report.RemovedFolders)

	rr = env.do(t, http.MethodDelete, "/api/media/folders/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// без параметра содержимое поднимается к родителю
func TestFolders_DeleteDefaultsToMoveUp(t *testing.T) {
	env := newTestEnv(t)
	a := createFolder(t, env, "A", nil)
	b := createFolder(t, env, "B", &a.ID)

	rr := env.do(t, http.MethodDelete, "/api/media/folders/"+a.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	report := decode[service.DeleteReport](t, rr)
	assert.Equal(t, service.MoveContentsUp, report.Disposition)
	assert.Equal(t, int64(1), report.MovedFolders)

	rr = env.do(t, http.MethodGet, "/api/media/folders/"+b.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[service.FolderContents](t, rr)
	assert.Nil(t, got.Folder.ParentID)
}
