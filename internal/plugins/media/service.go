package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Decoders for image.Decode.
	_ "image/gif"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/keyxmakerx/reverie/internal/apperror"
)

// MediaService stores and retrieves images for their owners.
type MediaService interface {
	Store(ctx context.Context, input StoreInput) (*MediaFile, error)
	ImportDataURL(ctx context.Context, userID, dataURL string) (*MediaFile, error)
	Get(ctx context.Context, userID, id string) (*MediaFile, error)
	Delete(ctx context.Context, userID, id string) error
	FilePath(file *MediaFile) string
	ThumbnailPath(file *MediaFile) string
}

type mediaService struct {
	repo      MediaRepository
	mediaPath string
	maxSize   int64
	now       func() time.Time
}

// NewMediaService creates a media service rooted at mediaPath. Images
// larger than maxSize bytes are refused.
func NewMediaService(repo MediaRepository, mediaPath string, maxSize int64) MediaService {
	return &mediaService{
		repo:      repo,
		mediaPath: mediaPath,
		maxSize:   maxSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Store validates the bytes, writes the image and its thumbnail, and records
// the row. The file is removed again if the row cannot be written.
func (s *mediaService) Store(ctx context.Context, input StoreInput) (*MediaFile, error) {
	if len(input.Data) == 0 {
		return nil, apperror.NewBadRequest("empty image")
	}
	if int64(len(input.Data)) > s.maxSize {
		return nil, apperror.NewValidation(fmt.Sprintf("image too large; maximum size is %d MB", s.maxSize/(1024*1024)))
	}
	mimeType, ok := DetectMIME(input.Data)
	if !ok {
		return nil, apperror.NewValidation("data is not a supported image")
	}
	source := input.Source
	if source == "" {
		source = SourceSketch
	}

	id := uuid.NewString()
	now := s.now()
	relDir := now.Format("2006/01")
	dir := filepath.Join(s.mediaPath, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating media directory: %w", err))
	}

	filename := id + mimeExtensions[mimeType]
	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, input.Data, 0o644); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("writing media file: %w", err))
	}

	file := &MediaFile{
		ID:        id,
		UserID:    input.UserID,
		Filename:  filepath.ToSlash(filepath.Join(relDir, filename)),
		MimeType:  mimeType,
		FileSize:  int64(len(input.Data)),
		Source:    source,
		CreatedAt: now,
	}

	thumb, err := writeThumbnail(input.Data, dir, id, mimeType)
	if err != nil {
		slog.Warn("thumbnail generation failed", slog.String("file_id", id), slog.Any("error", err))
	} else if thumb != "" {
		file.Thumbnail = filepath.ToSlash(filepath.Join(relDir, thumb))
	}

	if err := s.repo.Create(ctx, file); err != nil {
		s.removeFiles(file)
		return nil, apperror.NewInternal(fmt.Errorf("saving media record: %w", err))
	}

	slog.Info("media stored",
		slog.String("id", id),
		slog.String("user_id", input.UserID),
		slog.String("mime_type", mimeType),
		slog.Int64("size", file.FileSize),
	)
	return file, nil
}

// ImportDataURL stores a base64 data: URL, the form the browser client kept
// its sketches in.
func (s *mediaService) ImportDataURL(ctx context.Context, userID, dataURL string) (*MediaFile, error) {
	data, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, apperror.NewValidation(err.Error())
	}
	return s.Store(ctx, StoreInput{UserID: userID, Data: data, Source: SourceImport})
}

// DecodeDataURL returns the bytes of a base64 "data:image/...;base64," URL.
func DecodeDataURL(dataURL string) ([]byte, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("sketch is not a base64 image data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding sketch data: %w", err)
	}
	return data, nil
}

// Get returns a file owned by userID. Someone else's file is reported as
// not found so IDs cannot be probed.
func (s *mediaService) Get(ctx context.Context, userID, id string) (*MediaFile, error) {
	file, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err)
	}
	if file.UserID != userID {
		return nil, apperror.NewNotFound("media file not found")
	}
	return file, nil
}

// Delete removes the row and then the files.
func (s *mediaService) Delete(ctx context.Context, userID, id string) error {
	file, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.NewInternal(err)
	}
	s.removeFiles(file)
	slog.Info("media deleted", slog.String("id", id))
	return nil
}

func (s *mediaService) removeFiles(file *MediaFile) {
	os.Remove(s.FilePath(file))
	if file.Thumbnail != "" {
		os.Remove(filepath.Join(s.mediaPath, filepath.FromSlash(file.Thumbnail)))
	}
}

// FilePath is the absolute path of the full image.
func (s *mediaService) FilePath(file *MediaFile) string {
	return filepath.Join(s.mediaPath, filepath.FromSlash(file.Filename))
}

// ThumbnailPath is the thumbnail, or the original when none was needed.
func (s *mediaService) ThumbnailPath(file *MediaFile) string {
	if file.Thumbnail == "" {
		return s.FilePath(file)
	}
	return filepath.Join(s.mediaPath, filepath.FromSlash(file.Thumbnail))
}

// writeThumbnail scales data so its longest edge is ThumbnailSize and writes
// it next to the original. PNGs stay PNG; everything else becomes JPEG. It
// returns "" when the image is already small enough.
func writeThumbnail(data []byte, dir, id, mimeType string) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= ThumbnailSize && h <= ThumbnailSize {
		return "", nil
	}

	newW, newH := ThumbnailSize, ThumbnailSize
	if w > h {
		newH = max(1, h*ThumbnailSize/w)
	} else {
		newW = max(1, w*ThumbnailSize/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	ext := ".jpg"
	if mimeType == "image/png" {
		ext = ".png"
	}
	name := fmt.Sprintf("%s_%d%s", id, ThumbnailSize, ext)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating thumbnail file: %w", err)
	}
	defer f.Close()

	if ext == ".png" {
		err = png.Encode(f, dst)
	} else {
		err = jpeg.Encode(f, dst, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}
	return name, nil
}
