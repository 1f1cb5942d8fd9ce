// Package worker runs the background jobs submitted by the API process.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"filesmanager/backend/internal/apperrors"
	"filesmanager/backend/internal/logger"
	"filesmanager/backend/internal/models"
	"filesmanager/backend/internal/queue"
	"filesmanager/backend/internal/repositories"
	"filesmanager/backend/internal/storage"
	"filesmanager/backend/internal/thumbnail"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const thumbnailWorker = "thumbnails"

type ThumbnailProcessor struct {
	files   repositories.FileRepository
	blobs   *storage.Local
	timeout time.Duration
}

// NewThumbnailProcessor builds a processor that gives each derivative at most
// timeout to complete. A zero timeout means no limit.
func NewThumbnailProcessor(files repositories.FileRepository, blobs *storage.Local, timeout time.Duration) *ThumbnailProcessor {
	return &ThumbnailProcessor{files: files, blobs: blobs, timeout: timeout}
}

// Process writes the 500, 250 and 100 wide derivatives next to the image's
// blob. A failed size is logged and does not stop the others; only a bad job,
// a missing record or an unreadable source fail the job.
func (p *ThumbnailProcessor) Process(ctx context.Context, job queue.ThumbnailJob) error {
	if job.FileID == "" {
		return apperrors.InvalidJob("Missing fileId")
	}
	if job.UserID == "" {
		return apperrors.InvalidJob("Missing userId")
	}
	fileID, err := primitive.ObjectIDFromHex(job.FileID)
	if err != nil {
		return apperrors.NotFound("file", "File not found")
	}
	userID, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return apperrors.NotFound("file", "File not found")
	}

	file, err := p.files.FindOwned(ctx, fileID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("file", "File not found")
	}
	if err != nil {
		return fmt.Errorf("lookup file %s: %w", job.FileID, err)
	}
	if file.Type != models.TypeImage || file.LocalPath == nil {
		return apperrors.InvalidJob("File is not an image")
	}

	src, err := p.blobs.ReadAll(*file.LocalPath)
	if err != nil {
		return fmt.Errorf("read source %s: %w", job.FileID, err)
	}

	decode := sync.OnceValues(func() (decoded, error) {
		img, format, err := thumbnail.Decode(src)
		return decoded{img: img, format: format}, err
	})

	var wg sync.WaitGroup
	for _, width := range thumbnail.Widths {
		wg.Add(1)
		go func(width int) {
			defer wg.Done()
			err := p.generate(ctx, *file.LocalPath, width, decode)
			logger.WorkerLog(thumbnailWorker, "generate", err, "file_id", job.FileID, "width", width)
		}(width)
	}
	wg.Wait()
	return nil
}

type decoded struct {
	img    image.Image
	format string
}

func (p *ThumbnailProcessor) generate(ctx context.Context, path string, width int, decode func() (decoded, error)) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		src, err := decode()
		if err != nil {
			done <- err
			return
		}
		out, err := thumbnail.Generate(src.img, src.format, width)
		if err != nil {
			done <- err
			return
		}
		if ctx.Err() != nil {
			done <- ctx.Err()
			return
		}
		done <- p.blobs.WriteAt(storage.DerivativePath(path, width), out)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("width %d: %w", width, ctx.Err())
	}
}

// Handle adapts Process to the queue. Bad jobs and missing records are not
// retried.
func (p *ThumbnailProcessor) Handle(ctx context.Context, payload json.RawMessage) error {
	var job queue.ThumbnailJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return queue.Permanent(apperrors.InvalidJob("Malformed payload"))
	}
	return permanentIfFinal(p.Process(ctx, job))
}

func permanentIfFinal(err error) error {
	if errors.Is(err, apperrors.ErrInvalidJob) || errors.Is(err, apperrors.ErrNotFound) {
		return queue.Permanent(err)
	}
	return err
}
