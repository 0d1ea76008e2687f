package uploads

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(config.UploadsConfig{
		Root:         t.TempDir(),
		ImageQuality: 80,
		LogoMaxMB:    2,
		AssetMaxMB:   5,
	}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestSaveRejectsOversizePayload(t *testing.T) {
	store := newTestStore(t)
	oversize := make([]byte, 2*mib+1)

	_, err := store.Save(context.Background(), oversize, "logo.png", enums.UploadKindLogo)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayloadTooLarge {
		t.Fatalf("expected PayloadTooLarge, got %v", err)
	}

	// Nothing may be written on rejection.
	entries, _ := os.ReadDir(filepath.Join(store.root, "logos"))
	if len(entries) != 0 {
		t.Fatalf("expected no stored files, found %d", len(entries))
	}
}

func TestSaveShrinksLargeImageToBoundingBox(t *testing.T) {
	store := newTestStore(t)

	result, err := store.Save(context.Background(), pngBytes(t, 1600, 400), "wide.png", enums.UploadKindProductImage)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result.ContentType != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", result.ContentType)
	}

	stored, err := imaging.Open(filepath.Join(store.root, result.Path))
	if err != nil {
		t.Fatalf("open stored image: %v", err)
	}
	bounds := stored.Bounds()
	if bounds.Dx() > 800 || bounds.Dy() > 800 {
		t.Fatalf("stored image %dx%d exceeds 800x800 box", bounds.Dx(), bounds.Dy())
	}
	// Aspect ratio preserved: 1600x400 fit into 800x800 is 800x200.
	if bounds.Dx() != 800 || bounds.Dy() != 200 {
		t.Fatalf("expected 800x200, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestSaveNeverUpscalesSmallImage(t *testing.T) {
	store := newTestStore(t)

	result, err := store.Save(context.Background(), pngBytes(t, 120, 90), "small.png", enums.UploadKindProductImage)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	stored, err := imaging.Open(filepath.Join(store.root, result.Path))
	if err != nil {
		t.Fatalf("open stored image: %v", err)
	}
	bounds := stored.Bounds()
	if bounds.Dx() != 120 || bounds.Dy() != 90 {
		t.Fatalf("expected 120x90 unchanged, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestSaveStoresDocumentsVerbatim(t *testing.T) {
	store := newTestStore(t)
	payload := []byte("%PDF-1.4 fake document body")

	result, err := store.Save(context.Background(), payload, "certificate.pdf", enums.UploadKindCertificate)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if result.ContentType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", result.ContentType)
	}

	stored, err := os.ReadFile(filepath.Join(store.root, result.Path))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(stored, payload) {
		t.Fatal("stored document bytes differ from upload")
	}
}

func TestReplaceDeletesOldFileOnlyWhenDifferent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, pngBytes(t, 100, 100), "one.png", enums.UploadKindProductImage)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	second, err := store.Replace(ctx, pngBytes(t, 100, 100), "two.png", enums.UploadKindProductImage, first.Path)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if second.Path == first.Path {
		t.Fatal("expected a fresh path for the replacement")
	}
	if _, err := os.Stat(filepath.Join(store.root, first.Path)); !os.IsNotExist(err) {
		t.Fatal("old file should be deleted after replacement")
	}
	if _, err := os.Stat(filepath.Join(store.root, second.Path)); err != nil {
		t.Fatalf("new file missing: %v", err)
	}

	// Resubmitting the same path must not delete the live file.
	third, err := store.Replace(ctx, pngBytes(t, 100, 100), "three.png", enums.UploadKindProductImage, "")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.root, third.Path)); err != nil {
		t.Fatalf("new file missing: %v", err)
	}
}

func TestGeneratedFilenamesAreUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		name := generateFilename("product", ".jpg")
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate generated filename %s", name)
		}
		seen[name] = struct{}{}
	}
}
