package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"

	"filesmanager/backend/internal/access"
	"filesmanager/backend/internal/apperrors"
	"filesmanager/backend/internal/logger"
	"filesmanager/backend/internal/models"
	"filesmanager/backend/internal/queue"
	"filesmanager/backend/internal/repositories"
	"filesmanager/backend/internal/storage"
	"filesmanager/backend/internal/thumbnail"

	"github.com/gabriel-vasile/mimetype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	errNotFound         = apperrors.ErrNotFound
	errParentNotFound   = apperrors.NotFound("parent", "Parent not found")
	errParentNotFolder  = apperrors.InvalidArgument("parent", "Parent is not a folder")
	errFolderHasNoBytes = apperrors.InvalidArgument("type", "A folder doesn't have content")
)

type FileService struct {
	files repositories.FileRepository
	blobs *storage.Local
	jobs  queue.JobSubmitter
}

func NewFileService(files repositories.FileRepository, blobs *storage.Local, jobs queue.JobSubmitter) *FileService {
	return &FileService{files: files, blobs: blobs, jobs: jobs}
}

// UploadInput is the body of POST /files. ParentID is kept loosely typed since
// clients send 0, "0" or a folder id.
type UploadInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// Upload validates and stores a folder, file or image for p.
func (s *FileService) Upload(ctx context.Context, p access.Principal, in UploadInput) (*models.File, error) {
	if !p.Authenticated() {
		return nil, apperrors.ErrUnauthenticated
	}
	if in.Name == "" {
		return nil, apperrors.InvalidArgument("name", "Missing name")
	}
	typ := models.FileType(in.Type)
	if !typ.Valid() {
		return nil, apperrors.InvalidArgument("type", "Missing type")
	}
	if typ != models.TypeFolder && in.Data == "" {
		return nil, apperrors.InvalidArgument("data", "Missing data")
	}

	parent, err := s.resolveParent(ctx, in.ParentID)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		UserID:   p.UserID,
		Name:     in.Name,
		Type:     typ,
		IsPublic: in.IsPublic,
		ParentID: parent,
	}

	if typ == models.TypeFolder {
		if err := s.files.Create(ctx, file); err != nil {
			return nil, fmt.Errorf("create folder: %w", err)
		}
		return file, nil
	}

	content, err := base64.StdEncoding.DecodeString(in.Data)
	if err != nil {
		return nil, apperrors.InvalidArgument("data", "Invalid data")
	}

	path, err := s.blobs.Put(content)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}
	file.LocalPath = &path

	if err := s.files.Create(ctx, file); err != nil {
		if rmErr := s.blobs.Remove(path); rmErr != nil {
			logger.FromContext(ctx).Warn("orphan blob left behind", "path", path, "error", rmErr)
		}
		return nil, fmt.Errorf("create file: %w", err)
	}

	if typ == models.TypeImage {
		job := queue.ThumbnailJob{UserID: p.UserID.Hex(), FileID: file.ID.Hex()}
		if err := s.jobs.Submit(ctx, queue.Thumbnails, job); err != nil {
			logger.FromContext(ctx).Error("thumbnail job not submitted", "file_id", job.FileID, "error", err)
		}
	}
	return file, nil
}

func (s *FileService) resolveParent(ctx context.Context, raw any) (models.Parent, error) {
	parent, err := models.ParseParent(raw)
	if err != nil {
		return models.Root(), errParentNotFound
	}
	folderID, ok := parent.FolderID()
	if !ok {
		return parent, nil
	}

	record, err := s.files.FindByID(ctx, folderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Root(), errParentNotFound
	}
	if err != nil {
		return models.Root(), fmt.Errorf("lookup parent: %w", err)
	}
	if !record.IsFolder() {
		return models.Root(), errParentNotFolder
	}
	return parent, nil
}

// Get returns a record owned by p.
func (s *FileService) Get(ctx context.Context, p access.Principal, id string) (*models.File, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errNotFound
	}
	f, err := s.files.FindOwned(ctx, oid, p.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return f, nil
}

// List returns one page of p's records under parentID.
func (s *FileService) List(ctx context.Context, p access.Principal, parentID string, page int) ([]models.File, error) {
	parent, err := models.ParseParent(parentID)
	if err != nil || page > repositories.MaxPage {
		return []models.File{}, nil
	}
	files, err := s.files.ListByParent(ctx, p.UserID, parent, max(page, 0))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// SetPublic flips visibility. Records p cannot write are reported as missing.
func (s *FileService) SetPublic(ctx context.Context, p access.Principal, id string, public bool) (*models.File, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errNotFound
	}
	f, err := s.files.FindByID(ctx, oid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if !p.CanWrite(f) {
		return nil, errNotFound
	}

	updated, err := s.files.SetPublic(ctx, oid, p.UserID, public)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set visibility: %w", err)
	}
	return updated, nil
}

// Content is an open blob ready to stream.
type Content struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

// Content opens the bytes of a record, or of one of its derivatives when size
// is set. Anything p may not read is reported as missing.
func (s *FileService) Content(ctx context.Context, p access.Principal, id, size string) (*Content, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errNotFound
	}
	f, err := s.files.FindByID(ctx, oid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if f.IsFolder() {
		return nil, errFolderHasNoBytes
	}
	if !p.CanRead(f) {
		return nil, errNotFound
	}
	if f.LocalPath == nil {
		return nil, errNotFound
	}

	path := *f.LocalPath
	if size != "" {
		width, err := strconv.Atoi(size)
		if err != nil || !thumbnail.Supported(width) {
			return nil, errNotFound
		}
		path = storage.DerivativePath(path, width)
	}

	body, n, err := s.blobs.Open(path)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open content: %w", err)
	}
	return &Content{Body: body, Size: n, ContentType: contentType(f.Name, path)}, nil
}

// contentType prefers the declared name's extension and falls back to sniffing
// the stored bytes.
func contentType(name, path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	if mt, err := mimetype.DetectFile(path); err == nil {
		return mt.String()
	}
	return "application/octet-stream"
}
