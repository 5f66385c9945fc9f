package creative

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/domain"
)

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type UploadImageInput struct {
	CreativeID uuid.UUID
	Filename   string
	Body       io.Reader
}

func (in UploadImageInput) Validate() error {
	var errs []domain.FieldError
	if in.CreativeID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "creative_id", Message: "is required"})
	}
	if in.Body == nil {
		errs = append(errs, domain.FieldError{Field: "file", Message: "is required"})
	}
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !allowedImageExts[ext] {
		errs = append(errs, domain.FieldError{Field: "file", Message: "unsupported image type"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UploadCreativeImage stores the image and points the creative at it. The
// previous image, if any, is removed once the new one is safely in place.
func (s *Service) UploadCreativeImage(ctx context.Context, input UploadImageInput) (*domain.Creative, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, input.CreativeID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.CreativeStatusDraft {
		return nil, domain.NewValidationError("creative_id",
			fmt.Sprintf("creative in status %s is not editable", current.Status))
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	key := fmt.Sprintf("creatives/%s/%s%s", current.ID, uuid.New(), ext)

	// Read one byte past the cap so oversize bodies are detected instead of
	// silently truncated.
	limited := &limitedReader{r: input.Body, remaining: s.cfg.MaxUploadBytes + 1}
	storedKey, err := s.blobs.Put(ctx, key, limited)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	if limited.overflowed() {
		if derr := s.blobs.Delete(ctx, storedKey); derr != nil {
			s.log.WarnContext(ctx, "cleanup oversize upload failed",
				slog.String("key", storedKey), slog.String("error", derr.Error()))
		}
		return nil, domain.NewValidationError("file",
			fmt.Sprintf("exceeds the %d byte upload limit", s.cfg.MaxUploadBytes))
	}

	oldKey := current.ImageKey
	current.ImageKey = &storedKey

	updated, err := s.repo.Update(ctx, *current)
	if err != nil {
		if derr := s.blobs.Delete(ctx, storedKey); derr != nil {
			s.log.WarnContext(ctx, "cleanup orphaned image failed",
				slog.String("key", storedKey), slog.String("error", derr.Error()))
		}
		return nil, fmt.Errorf("update creative image: %w", err)
	}

	if oldKey != nil && *oldKey != storedKey {
		if derr := s.blobs.Delete(ctx, *oldKey); derr != nil {
			s.log.WarnContext(ctx, "delete replaced image failed",
				slog.String("key", *oldKey), slog.String("error", derr.Error()))
		}
	}

	s.log.InfoContext(ctx, "creative image uploaded",
		slog.String("creative_id", updated.ID.String()),
		slog.String("key", storedKey),
	)
	s.fillImageURL(updated)
	return updated, nil
}

// limitedReader reads up to remaining bytes and remembers whether the source
// had more.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}

func (l *limitedReader) overflowed() bool { return l.remaining <= 0 }
