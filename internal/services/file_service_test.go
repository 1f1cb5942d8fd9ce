package services

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"math"
	"net/http"
	"sync"
	"testing"

	"filesmanager/backend/internal/access"
	"filesmanager/backend/internal/apperrors"
	"filesmanager/backend/internal/queue"
	"filesmanager/backend/internal/repositories"
	"filesmanager/backend/internal/repositories/memrepo"
	"filesmanager/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type submitted struct {
	queue   string
	payload any
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs []submitted
	err  error
}

func (f *fakeJobs) Submit(_ context.Context, name string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, submitted{queue: name, payload: payload})
	return nil
}

func (f *fakeJobs) all() []submitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submitted(nil), f.jobs...)
}

type fileFixture struct {
	svc   *FileService
	files *memrepo.Files
	blobs *storage.Local
	jobs  *fakeJobs
	owner access.Principal
	other access.Principal
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()
	f := &fileFixture{
		files: memrepo.NewFiles(),
		blobs: storage.NewLocal(t.TempDir()),
		jobs:  &fakeJobs{},
		owner: access.Principal{UserID: primitive.NewObjectID()},
		other: access.Principal{UserID: primitive.NewObjectID()},
	}
	f.svc = NewFileService(f.files, f.blobs, f.jobs)
	return f
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func requireMessage(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	gotStatus, gotMsg := apperrors.HTTPStatus(err)
	assert.Equal(t, status, gotStatus)
	assert.Equal(t, msg, gotMsg)
}

func TestUpload_ValidationOrder(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		p      access.Principal
		in     UploadInput
		status int
		msg    string
	}{
		{"anonymous first", access.Anonymous(), UploadInput{}, http.StatusUnauthorized, "Unauthorized"},
		{"name before type", f.owner, UploadInput{Type: "bogus"}, http.StatusBadRequest, "Missing name"},
		{"missing type", f.owner, UploadInput{Name: "a"}, http.StatusBadRequest, "Missing type"},
		{"unknown type", f.owner, UploadInput{Name: "a", Type: "video"}, http.StatusBadRequest, "Missing type"},
		{"missing data", f.owner, UploadInput{Name: "a", Type: "file"}, http.StatusBadRequest, "Missing data"},
		{"data before parent", f.owner, UploadInput{Name: "a", Type: "image", ParentID: "nope"}, http.StatusBadRequest, "Missing data"},
		{"bad parent", f.owner, UploadInput{Name: "a", Type: "file", Data: b64("x"), ParentID: "nope"}, http.StatusNotFound, "Parent not found"},
		{"unknown parent", f.owner, UploadInput{Name: "a", Type: "file", Data: b64("x"), ParentID: primitive.NewObjectID().Hex()}, http.StatusNotFound, "Parent not found"},
		{"bad base64", f.owner, UploadInput{Name: "a", Type: "file", Data: "%%%"}, http.StatusBadRequest, "Invalid data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, tt.p, tt.in)
			requireMessage(t, err, tt.status, tt.msg)
		})
	}

	n, err := f.files.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpload_ParentMustBeFolder(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "doc.txt", Type: "file", Data: b64("hi")})
	require.NoError(t, err)

	_, err = f.svc.Upload(ctx, f.owner, UploadInput{Name: "x", Type: "file", Data: b64("x"), ParentID: doc.ID.Hex()})
	requireMessage(t, err, http.StatusBadRequest, "Parent is not a folder")
}

func TestUpload_Folder(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	dir, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "docs", Type: "folder", ParentID: 0})
	require.NoError(t, err)
	assert.Nil(t, dir.LocalPath)
	assert.True(t, dir.ParentID.IsRoot())
	assert.Equal(t, f.owner.UserID, dir.UserID)

	child, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "inner", Type: "folder", ParentID: dir.ID.Hex()})
	require.NoError(t, err)
	got, ok := child.ParentID.FolderID()
	require.True(t, ok)
	assert.Equal(t, dir.ID, got)
	assert.Empty(t, f.jobs.all())
}

func TestUpload_FileStoresDecodedBytes(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "t.txt", Type: "file", Data: b64("hi")})
	require.NoError(t, err)
	require.NotNil(t, rec.LocalPath)

	data, err := f.blobs.ReadAll(*rec.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))
	assert.False(t, rec.IsPublic)
	assert.Empty(t, f.jobs.all())
}

func TestUpload_ImageSubmitsThumbnailJob(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "a.png", Type: "image", Data: b64("not really a png"), IsPublic: true})
	require.NoError(t, err)

	jobs := f.jobs.all()
	require.Len(t, jobs, 1)
	assert.Equal(t, queue.Thumbnails, jobs[0].queue)
	assert.Equal(t, queue.ThumbnailJob{UserID: f.owner.UserID.Hex(), FileID: rec.ID.Hex()}, jobs[0].payload)
}

func TestUpload_SubmitFailureKeepsRecord(t *testing.T) {
	f := newFileFixture(t)
	f.jobs.err = errors.New("redis down")
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "a.png", Type: "image", Data: b64("img")})
	require.NoError(t, err)

	_, err = f.files.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	ok, err := f.blobs.Exists(*rec.LocalPath)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGet_OwnerOnly(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "pub", Type: "file", Data: b64("x"), IsPublic: true})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.owner, rec.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = f.svc.Get(ctx, f.other, rec.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.Get(ctx, f.owner, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestList_PagesAndParents(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	dir, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "d", Type: "folder"})
	require.NoError(t, err)
	for i := 0; i < repositories.PageSize+5; i++ {
		_, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "f", Type: "file", Data: b64("x"), ParentID: dir.ID.Hex()})
		require.NoError(t, err)
	}
	_, err = f.svc.Upload(ctx, f.other, UploadInput{Name: "theirs", Type: "folder"})
	require.NoError(t, err)

	root, err := f.svc.List(ctx, f.owner, "0", 0)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, dir.ID, root[0].ID)

	first, err := f.svc.List(ctx, f.owner, dir.ID.Hex(), 0)
	require.NoError(t, err)
	assert.Len(t, first, repositories.PageSize)

	second, err := f.svc.List(ctx, f.owner, dir.ID.Hex(), 1)
	require.NoError(t, err)
	assert.Len(t, second, 5)

	third, err := f.svc.List(ctx, f.owner, dir.ID.Hex(), 2)
	require.NoError(t, err)
	assert.Empty(t, third)

	for _, page := range []int{461168601842738791, repositories.MaxPage + 1, math.MaxInt} {
		far, err := f.svc.List(ctx, f.owner, dir.ID.Hex(), page)
		require.NoError(t, err, page)
		assert.Empty(t, far, page)
	}

	bad, err := f.svc.List(ctx, f.owner, "not-an-id", 0)
	require.NoError(t, err)
	assert.NotNil(t, bad)
	assert.Empty(t, bad)
}

func TestSetPublic(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "x", Type: "file", Data: b64("x")})
	require.NoError(t, err)

	_, err = f.svc.SetPublic(ctx, f.other, rec.ID.Hex(), true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := f.svc.SetPublic(ctx, f.owner, rec.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)

	again, err := f.svc.SetPublic(ctx, f.owner, rec.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, again.IsPublic)

	got, err = f.svc.SetPublic(ctx, f.owner, rec.ID.Hex(), false)
	require.NoError(t, err)
	assert.False(t, got.IsPublic)
}

func readContent(t *testing.T, c *Content) string {
	t.Helper()
	defer c.Body.Close()
	b, err := io.ReadAll(c.Body)
	require.NoError(t, err)
	return string(b)
}

func TestContent_Visibility(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "t.txt", Type: "file", Data: b64("hi")})
	require.NoError(t, err)

	c, err := f.svc.Content(ctx, f.owner, rec.ID.Hex(), "")
	require.NoError(t, err)
	assert.Equal(t, "hi", readContent(t, c))
	assert.Equal(t, int64(2), c.Size)
	assert.Contains(t, c.ContentType, "text/plain")

	_, err = f.svc.Content(ctx, access.Anonymous(), rec.ID.Hex(), "")
	requireMessage(t, err, http.StatusNotFound, "Not found")
	_, err = f.svc.Content(ctx, f.other, rec.ID.Hex(), "")
	requireMessage(t, err, http.StatusNotFound, "Not found")

	_, err = f.svc.SetPublic(ctx, f.owner, rec.ID.Hex(), true)
	require.NoError(t, err)
	c, err = f.svc.Content(ctx, access.Anonymous(), rec.ID.Hex(), "")
	require.NoError(t, err)
	assert.Equal(t, "hi", readContent(t, c))
}

func TestContent_FolderHasNoBytes(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	dir, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "d", Type: "folder"})
	require.NoError(t, err)

	_, err = f.svc.Content(ctx, f.owner, dir.ID.Hex(), "")
	requireMessage(t, err, http.StatusBadRequest, "A folder doesn't have content")
}

func TestContent_Sizes(t *testing.T) {
	f := newFileFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Upload(ctx, f.owner, UploadInput{Name: "a.png", Type: "image", Data: b64("full")})
	require.NoError(t, err)

	_, err = f.svc.Content(ctx, f.owner, rec.ID.Hex(), "100")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "derivative not generated yet")

	require.NoError(t, f.blobs.WriteAt(storage.DerivativePath(*rec.LocalPath, 100), []byte("small")))
	c, err := f.svc.Content(ctx, f.owner, rec.ID.Hex(), "100")
	require.NoError(t, err)
	assert.Equal(t, "small", readContent(t, c))
	assert.Equal(t, "image/png", c.ContentType)

	for _, size := range []string{"300", "abc", "-1"} {
		_, err = f.svc.Content(ctx, f.owner, rec.ID.Hex(), size)
		assert.ErrorIs(t, err, apperrors.ErrNotFound, size)
	}
}

func TestContent_MissingRecord(t *testing.T) {
	f := newFileFixture(t)
	_, err := f.svc.Content(context.Background(), f.owner, primitive.NewObjectID().Hex(), "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Content(context.Background(), f.owner, "zzz", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
