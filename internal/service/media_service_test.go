package service

import (
	"PortfolioCMS/internal/model"
	"PortfolioCMS/internal/repo"
	"bytes"
	"context"
	"image"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryBlob = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}

func TestMediaService_UploadImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.media.now = func() time.Time { return time.UnixMilli(1700000000000) }
	dir := f.folder(t, "Shots", nil)

	content := pngBytes(t, 400, 200)
	m, err := f.media.Upload(ctx, UploadInput{
		Title:        " Cover ",
		Tags:         []string{"hero", "hero", " home "},
		FolderID:     &dir.ID,
		OriginalName: "my cover.png",
		Content:      content,
		UploadedBy:   ptr(int64(1)),
	})
	require.NoError(t, err)

	assert.Equal(t, "Cover", m.Title)
	assert.Equal(t, model.MediaImage, m.Type)
	assert.Equal(t, "image/png", m.MimeType)
	assert.Equal(t, "1700000000000-my_cover.png", m.BlobKey)
	assert.Equal(t, "thumb-1700000000000-my_cover.png", m.ThumbnailKey)
	assert.Equal(t, "/uploads/1700000000000-my_cover.png", m.URL)
	assert.Equal(t, model.Tags{"hero", "home"}, m.Tags)
	assert.Equal(t, int64(len(content)), m.FileSize)

	assert.Equal(t, 2, f.blobs.keys())
	rc, err := f.blobs.Open(ctx, m.ThumbnailKey)
	require.NoError(t, err)
	thumb, _, err := image.Decode(rc)
	_ = rc.Close()
	require.NoError(t, err)
	assert.Equal(t, ThumbnailSize, thumb.Bounds().Dx())
	assert.Equal(t, ThumbnailSize/2, thumb.Bounds().Dy())

	got, _ := f.frepo.GetByID(ctx, dir.ID)
	assert.Equal(t, int64(1), got.MediaCount)
	assert.Equal(t, int64(len(content)), got.TotalSize)
}

func TestMediaService_UploadDocumentWithExplicitType(t *testing.T) {
	f := newFixture(t)

	m, err := f.media.Upload(context.Background(), UploadInput{
		Title:        "CV",
		Type:         model.MediaResume,
		OriginalName: "cv.txt",
		Content:      []byte("Jane Doe\nGo engineer\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.MediaResume, m.Type)
	assert.Equal(t, "text/plain", m.MimeType)
	assert.Empty(t, m.ThumbnailKey)
	assert.Nil(t, m.FolderID)
	assert.Equal(t, 1, f.blobs.keys())
}

func TestMediaService_UploadRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.media.Upload(ctx, UploadInput{Title: "bin", OriginalName: "a.bin", Content: binaryBlob})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = f.media.Upload(ctx, UploadInput{Title: "", OriginalName: "a.txt", Content: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.media.Upload(ctx, UploadInput{Title: "empty", OriginalName: "a.txt"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.media.Upload(ctx, UploadInput{Title: "t", Type: "hologram", Content: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.media.Upload(ctx, UploadInput{Title: "t", FolderID: ptr("ghost"), Content: []byte("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	// ни одна отклонённая загрузка не оставила блоба
	assert.Zero(t, f.blobs.keys())
	items, err := f.media.List(ctx, repo.MediaFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMediaService_AccessAndOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.item(t, "doc", nil, 3)

	got, err := f.media.Access(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.DownloadCount)
	assert.NotNil(t, got.LastAccessed)

	meta, rc, err := f.media.Open(ctx, m.ID)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "doc", string(data))
	assert.Equal(t, int64(2), meta.DownloadCount)

	_, err = f.media.Access(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	plain, err := f.media.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), plain.DownloadCount)
}

func TestMediaService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from := f.folder(t, "From", nil)
	to := f.folder(t, "To", nil)
	m := f.item(t, "doc", from, 10)
	_, err := f.tree.FolderStats(ctx, from.ID)
	require.NoError(t, err)

	tags := []string{"b", "a"}
	got, err := f.media.Update(ctx, m.ID, MediaPatch{
		Title:      ptr("Renamed"),
		Tags:       &tags,
		MoveFolder: true,
		FolderID:   &to.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, model.Tags{"a", "b"}, got.Tags)
	assert.Equal(t, to.ID, *got.FolderID)

	src, _ := f.frepo.GetByID(ctx, from.ID)
	dst, _ := f.frepo.GetByID(ctx, to.ID)
	assert.Zero(t, src.MediaCount)
	assert.Equal(t, int64(1), dst.MediaCount)
	assert.Equal(t, int64(10), dst.TotalSize)

	_, err = f.media.Update(ctx, m.ID, MediaPatch{Status: ptr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.media.Update(ctx, m.ID, MediaPatch{Title: ptr(" ")})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.media.Update(ctx, m.ID, MediaPatch{MoveFolder: true, FolderID: ptr("ghost")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.media.Update(ctx, "ghost", MediaPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	// перенос в корень
	got, err = f.media.Update(ctx, m.ID, MediaPatch{MoveFolder: true})
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)
}

func TestMediaService_DeleteToleratesBlobFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dir := f.folder(t, "Dir", nil)
	m := f.item(t, "doc", dir, 4)
	f.blobs.failDelete[m.BlobKey] = errBlobDown

	require.NoError(t, f.media.Delete(ctx, m.ID))
	_, err := f.media.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.media.Delete(ctx, m.ID), ErrNotFound)

	got, _ := f.frepo.GetByID(ctx, dir.ID)
	assert.Zero(t, got.MediaCount)
}

func TestMediaService_BulkDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "a", nil, 1)
	b := f.item(t, "b", nil, 1)

	res, err := f.media.BulkDelete(ctx, []string{a.ID, "ghost", a.ID, b.ID, ""})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, res.Succeeded)
	if assert.Len(t, res.Failed, 1) {
		assert.Equal(t, "ghost", res.Failed[0].ID)
	}
	assert.Zero(t, f.blobs.keys())

	_, err = f.media.BulkDelete(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMediaService_BulkMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.folder(t, "Src", nil)
	dst := f.folder(t, "Dst", nil)
	a := f.item(t, "a", src, 2)
	b := f.item(t, "b", src, 3)

	_, err := f.media.BulkMove(ctx, []string{a.ID}, ptr("ghost"))
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := f.media.BulkMove(ctx, []string{a.ID, "ghost", b.ID}, &dst.ID)
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 2)
	assert.Len(t, res.Failed, 1)

	s, _ := f.frepo.GetByID(ctx, src.ID)
	d, _ := f.frepo.GetByID(ctx, dst.ID)
	assert.Zero(t, s.MediaCount)
	assert.Equal(t, int64(2), d.MediaCount)
	assert.Equal(t, int64(5), d.TotalSize)

	res, err = f.media.BulkMove(ctx, []string{a.ID}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 1)
	root, _ := f.media.List(ctx, repo.MediaFilter{Root: true})
	assert.Len(t, root, 1)
}

func TestMediaService_BulkTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.item(t, "a", nil, 1)
	require.NoError(t, f.mrepo.Update(ctx, a.ID, map[string]any{"tags": model.NewTags("old", "keep")}))
	b := f.item(t, "b", nil, 1)

	res, err := f.media.BulkTag(ctx, []string{a.ID, b.ID, "ghost"}, []string{"new"}, []string{"old"})
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 2)
	assert.Len(t, res.Failed, 1)

	got, _ := f.media.Get(ctx, a.ID)
	assert.Equal(t, model.Tags{"keep", "new"}, got.Tags)
	got, _ = f.media.Get(ctx, b.ID)
	assert.Equal(t, model.Tags{"new"}, got.Tags)

	tagged, err := f.media.List(ctx, repo.MediaFilter{Tag: "new"})
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	_, err = f.media.BulkTag(ctx, []string{a.ID}, nil, []string{" "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMediaService_ListValidatesFilter(t *testing.T) {
	f := newFixture(t)
	_, err := f.media.List(context.Background(), repo.MediaFilter{Type: "hologram"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.media.List(context.Background(), repo.MediaFilter{Status: "gone"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	items, err := f.media.List(context.Background(), repo.MediaFilter{})
	require.NoError(t, err)
	assert.NotNil(t, items)
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	out, err := makeThumbnail(pngBytes(t, 40, 20))
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())

	_, err = makeThumbnail([]byte("not an image"))
	assert.Error(t, err)
}

func TestClassifyMIME(t *testing.T) {
	assert.Equal(t, model.MediaImage, classifyMIME("image/webp"))
	assert.Equal(t, model.MediaVideo, classifyMIME("video/mp4"))
	assert.Equal(t, model.MediaAudio, classifyMIME("audio/mpeg"))
	assert.Equal(t, model.MediaDocument, classifyMIME("application/pdf"))
	assert.Equal(t, model.MediaOther, classifyMIME("application/zip"))
	assert.False(t, allowedMIME("application/octet-stream"))
	assert.True(t, allowedMIME("text/plain"))
}
