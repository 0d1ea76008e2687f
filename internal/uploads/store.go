package uploads

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

const mib = 1 << 20

// documentExtensions are stored verbatim; everything else is treated as an
// image and re-encoded.
var documentExtensions = map[string]string{
	".pdf":  "application/pdf",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type kindPolicy struct {
	subdir   string
	prefix   string
	boxW     int
	boxH     int
	logoSize bool
}

var policyByKind = map[enums.UploadKind]kindPolicy{
	enums.UploadKindLogo:         {subdir: "logos", prefix: "logo", boxW: 1000, boxH: 1000, logoSize: true},
	enums.UploadKindProductImage: {subdir: "products", prefix: "product", boxW: 800, boxH: 800},
	enums.UploadKindCertificate:  {subdir: "certificates", prefix: "cert", boxW: 1200, boxH: 1200},
	enums.UploadKindMarketing:    {subdir: "marketing", prefix: "material", boxW: 1920, boxH: 1080},
	enums.UploadKindPackageImage: {subdir: "packages", prefix: "package", boxW: 1200, boxH: 1200},
}

// Store writes uploaded assets under the configured root, re-encoding raster
// images to bounded JPEGs and passing documents through untouched.
type Store struct {
	root    string
	quality int
	logoMax int64
	assetMax int64
	logg    *logger.Logger
}

func NewStore(cfg config.UploadsConfig, logg *logger.Logger) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("uploads root is required")
	}
	quality := cfg.ImageQuality
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &Store{
		root:     cfg.Root,
		quality:  quality,
		logoMax:  int64(cfg.LogoMaxMB) * mib,
		assetMax: int64(cfg.AssetMaxMB) * mib,
		logg:     logg,
	}, nil
}

// Ceiling returns the byte-size limit for the kind.
func (s *Store) Ceiling(kind enums.UploadKind) int64 {
	if policyByKind[kind].logoSize {
		return s.logoMax
	}
	return s.assetMax
}

// Result describes a durably written asset.
type Result struct {
	Path        string
	ContentType string
}

// Save validates size, classifies the payload, and writes it under the
// kind's subdirectory. Image payloads are shrunk to fit the kind's bounding
// box (never upscaled) and re-encoded as JPEG; the returned content type
// reflects the stored bytes, not the original upload.
func (s *Store) Save(ctx context.Context, data []byte, originalName string, kind enums.UploadKind) (*Result, error) {
	policy, ok := policyByKind[kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown upload kind").WithDetails(map[string]any{"kind": kind})
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty upload")
	}

	ceiling := s.Ceiling(kind)
	if int64(len(data)) > ceiling {
		return nil, pkgerrors.New(pkgerrors.CodePayloadTooLarge, "file exceeds size limit").
			WithDetails(map[string]any{"limit_bytes": ceiling, "size_bytes": len(data)})
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if docType, isDoc := documentExtensions[ext]; isDoc {
		path, err := s.write(policy, ext, data)
		if err != nil {
			return nil, err
		}
		return &Result{Path: path, ContentType: docType}, nil
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		// Unrecognized binary with a non-document extension; store verbatim
		// rather than guessing at a transcode.
		path, err := s.write(policy, ext, data)
		if err != nil {
			return nil, err
		}
		return &Result{Path: path, ContentType: detected.String()}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding image")
	}

	bounds := img.Bounds()
	if bounds.Dx() > policy.boxW || bounds.Dy() > policy.boxH {
		img = imaging.Fit(img, policy.boxW, policy.boxH, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(s.quality)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding image")
	}

	path, err := s.write(policy, ".jpg", buf.Bytes())
	if err != nil {
		return nil, err
	}
	return &Result{Path: path, ContentType: "image/jpeg"}, nil
}

// Replace stores the new asset, then deletes the old one. The old file
// survives a failed write, and is kept when the caller resubmits the same
// path unchanged.
func (s *Store) Replace(ctx context.Context, data []byte, originalName string, kind enums.UploadKind, oldPath string) (*Result, error) {
	result, err := s.Save(ctx, data, originalName, kind)
	if err != nil {
		return nil, err
	}
	if oldPath != "" && oldPath != result.Path {
		s.Remove(ctx, oldPath)
	}
	return result, nil
}

// Remove deletes a stored asset best-effort; a missing file is not an error.
func (s *Store) Remove(ctx context.Context, path string) {
	if path == "" {
		return
	}
	full := filepath.Join(s.root, filepath.Clean("/"+path))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "path", path), "removing stored asset failed")
		}
	}
}

func (s *Store) write(policy kindPolicy, ext string, data []byte) (string, error) {
	dir := filepath.Join(s.root, policy.subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating upload directory")
	}

	name := generateFilename(policy.prefix, ext)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing upload")
	}
	return filepath.ToSlash(filepath.Join(policy.subdir, name)), nil
}

// generateFilename is collision-resistant: concurrent uploads share a
// directory, so names carry a nanosecond timestamp plus a random suffix.
func generateFilename(prefix, ext string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%d-%s%s", prefix, time.Now().UnixNano(), suffix, ext)
}
