package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/keyxmakerx/reverie/internal/apperror"
)

// --- Mock Repository ---

type mockMediaRepo struct {
	files    map[string]*MediaFile
	createFn func(ctx context.Context, file *MediaFile) error
}

func newMockRepo() *mockMediaRepo {
	return &mockMediaRepo{files: map[string]*MediaFile{}}
}

func (m *mockMediaRepo) Create(ctx context.Context, file *MediaFile) error {
	if m.createFn != nil {
		return m.createFn(ctx, file)
	}
	m.files[file.ID] = file
	return nil
}

func (m *mockMediaRepo) FindByID(_ context.Context, id string) (*MediaFile, error) {
	if f, ok := m.files[id]; ok {
		return f, nil
	}
	return nil, apperror.NewNotFound("media file not found")
}

func (m *mockMediaRepo) Delete(_ context.Context, id string) error {
	delete(m.files, id)
	return nil
}

// --- Helpers ---

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// --- Tests ---

func TestDetectMIME(t *testing.T) {
	cases := map[string][]byte{
		"image/jpeg": {0xFF, 0xD8, 0xFF, 0xE0},
		"image/png":  []byte("\x89PNG\r\n\x1a\nrest"),
		"image/gif":  []byte("GIF89a...."),
		"image/webp": []byte("RIFF\x00\x00\x00\x00WEBPVP8 "),
	}
	for want, data := range cases {
		got, ok := DetectMIME(data)
		if !ok || got != want {
			t.Errorf("DetectMIME(%s) = %q, %v", want, got, ok)
		}
	}
	if _, ok := DetectMIME([]byte("<svg></svg>")); ok {
		t.Error("svg must not be accepted")
	}
}

func TestStore_WritesFileAndThumbnail(t *testing.T) {
	repo := newMockRepo()
	svc := NewMediaService(repo, t.TempDir(), 1<<20)

	file, err := svc.Store(context.Background(), StoreInput{UserID: "u1", Data: pngBytes(t, 600, 400)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.MimeType != "image/png" || file.Source != SourceSketch {
		t.Errorf("unexpected file %+v", file)
	}
	if _, err := os.Stat(svc.FilePath(file)); err != nil {
		t.Errorf("original missing: %v", err)
	}
	if file.Thumbnail == "" {
		t.Fatal("expected a thumbnail for a 600px image")
	}

	f, err := os.Open(svc.ThumbnailPath(file))
	if err != nil {
		t.Fatalf("thumbnail missing: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != ThumbnailSize || cfg.Height != 200 {
		t.Errorf("expected %dx200 thumbnail, got %dx%d", ThumbnailSize, cfg.Width, cfg.Height)
	}
}

func TestStore_SmallImageHasNoThumbnail(t *testing.T) {
	svc := NewMediaService(newMockRepo(), t.TempDir(), 1<<20)
	file, err := svc.Store(context.Background(), StoreInput{UserID: "u1", Data: pngBytes(t, 64, 64)})
	if err != nil {
		t.Fatal(err)
	}
	if file.Thumbnail != "" {
		t.Errorf("expected no thumbnail, got %q", file.Thumbnail)
	}
	if svc.ThumbnailPath(file) != svc.FilePath(file) {
		t.Error("thumbnail path should fall back to the original")
	}
}

func TestStore_Rejects(t *testing.T) {
	svc := NewMediaService(newMockRepo(), t.TempDir(), 100)
	ctx := context.Background()

	_, err := svc.Store(ctx, StoreInput{UserID: "u1"})
	assertAppError(t, err, 400)

	_, err = svc.Store(ctx, StoreInput{UserID: "u1", Data: []byte("plain text, not an image")})
	assertAppError(t, err, 422)

	_, err = svc.Store(ctx, StoreInput{UserID: "u1", Data: bytes.Repeat([]byte{0xFF}, 101)})
	assertAppError(t, err, 422)
}

func TestStore_RemovesFileWhenRowFails(t *testing.T) {
	dir := t.TempDir()
	repo := newMockRepo()
	repo.createFn = func(context.Context, *MediaFile) error { return errors.New("db down") }
	svc := NewMediaService(repo, dir, 1<<20)

	_, err := svc.Store(context.Background(), StoreInput{UserID: "u1", Data: pngBytes(t, 10, 10)})
	assertAppError(t, err, 500)

	var leftovers []string
	walk(t, dir, &leftovers)
	if len(leftovers) != 0 {
		t.Errorf("expected no files left behind, got %v", leftovers)
	}
}

func walk(t *testing.T, dir string, out *[]string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			walk(t, dir+"/"+e.Name(), out)
			continue
		}
		*out = append(*out, e.Name())
	}
}

func TestImportDataURL(t *testing.T) {
	svc := NewMediaService(newMockRepo(), t.TempDir(), 1<<20)
	data := pngBytes(t, 20, 20)
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	file, err := svc.ImportDataURL(context.Background(), "u1", url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Source != SourceImport || file.FileSize != int64(len(data)) {
		t.Errorf("unexpected file %+v", file)
	}

	_, err = svc.ImportDataURL(context.Background(), "u1", "https://example.com/a.png")
	assertAppError(t, err, 422)
}

func TestGet_OtherOwnerIsNotFound(t *testing.T) {
	repo := newMockRepo()
	svc := NewMediaService(repo, t.TempDir(), 1<<20)
	file, err := svc.Store(context.Background(), StoreInput{UserID: "owner", Data: pngBytes(t, 10, 10)})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(context.Background(), "owner", file.ID); err != nil {
		t.Errorf("owner should see the file: %v", err)
	}
	_, err = svc.Get(context.Background(), "intruder", file.ID)
	assertAppError(t, err, 404)
}

func TestDelete_RemovesFiles(t *testing.T) {
	repo := newMockRepo()
	svc := NewMediaService(repo, t.TempDir(), 1<<20)
	file, err := svc.Store(context.Background(), StoreInput{UserID: "u1", Data: pngBytes(t, 500, 500)})
	if err != nil {
		t.Fatal(err)
	}

	assertAppError(t, svc.Delete(context.Background(), "u2", file.ID), 404)

	if err := svc.Delete(context.Background(), "u1", file.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(svc.FilePath(file)); !os.IsNotExist(err) {
		t.Error("expected original to be removed")
	}
	if _, ok := repo.files[file.ID]; ok {
		t.Error("expected row to be removed")
	}
}
