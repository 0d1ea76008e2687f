package uploads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
	"github.com/qmedica/catalog-backend/pkg/metrics"
)

var (
	uploadIDRe  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	chunkFileRe = regexp.MustCompile(`^chunk-(\d+)$`)
)

// Assembler accumulates numbered chunks in a per-upload staging directory
// and hands the reassembled bytes to the Store once every index has arrived.
type Assembler struct {
	staging string
	store   *Store
	metrics *metrics.UploadMetrics
	logg    *logger.Logger
}

func NewAssembler(staging string, store *Store, m *metrics.UploadMetrics, logg *logger.Logger) (*Assembler, error) {
	if staging == "" {
		return nil, fmt.Errorf("staging dir is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &Assembler{staging: staging, store: store, metrics: m, logg: logg}, nil
}

// ChunkResult is either pending (more chunks expected) or the stored asset.
type ChunkResult struct {
	Pending     bool
	Path        string
	ContentType string
}

// ReceiveChunk records one chunk and triggers reassembly when the received
// index set covers 0..totalChunks-1. Completion is decided by the index set,
// not a file count, so a retransmitted chunk can never trigger an early or
// missed reassembly. The staging directory is removed whether the final
// store succeeds or fails.
func (a *Assembler) ReceiveChunk(ctx context.Context, uploadID string, chunkIndex, totalChunks int, fileName string, kind enums.UploadKind, data []byte) (*ChunkResult, error) {
	if !uploadIDRe.MatchString(uploadID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid upload id")
	}
	if totalChunks <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total chunks must be positive")
	}
	if chunkIndex < 0 || chunkIndex >= totalChunks {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "chunk index out of range").
			WithDetails(map[string]any{"index": chunkIndex, "total": totalChunks})
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty chunk")
	}

	a.metrics.IncChunk(string(kind))

	dir := filepath.Join(a.staging, uploadID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating staging directory")
	}

	// Overwrite is deliberate: a retried chunk replaces its previous copy.
	chunkPath := filepath.Join(dir, fmt.Sprintf("chunk-%d", chunkIndex))
	if err := os.WriteFile(chunkPath, data, 0o644); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing chunk")
	}

	received, err := receivedIndices(dir)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing staging directory")
	}
	for i := 0; i < totalChunks; i++ {
		if _, ok := received[i]; !ok {
			return &ChunkResult{Pending: true}, nil
		}
	}

	result, err := a.assemble(ctx, dir, totalChunks, fileName, kind)
	if removeErr := os.RemoveAll(dir); removeErr != nil && a.logg != nil {
		a.logg.Warn(a.logg.WithField(ctx, "upload_id", uploadID), "removing staging directory failed")
	}
	if err != nil {
		a.metrics.IncFailed(string(kind))
		return nil, err
	}

	return &ChunkResult{Path: result.Path, ContentType: result.ContentType}, nil
}

func (a *Assembler) assemble(ctx context.Context, dir string, totalChunks int, fileName string, kind enums.UploadKind) (*Result, error) {
	ceiling := a.store.Ceiling(kind)

	var combined []byte
	for i := 0; i < totalChunks; i++ {
		chunk, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("chunk-%d", i)))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading chunk")
		}
		combined = append(combined, chunk...)
		// Enforced during concatenation so an oversize upload fails before
		// the full buffer is materialized.
		if int64(len(combined)) > ceiling {
			return nil, pkgerrors.New(pkgerrors.CodePayloadTooLarge, "upload exceeds size limit").
				WithDetails(map[string]any{"limit_bytes": ceiling})
		}
	}

	result, err := a.store.Save(ctx, combined, fileName, kind)
	if err != nil {
		return nil, err
	}
	a.metrics.IncCompleted(string(kind), int64(len(combined)))
	return result, nil
}

func receivedIndices(dir string) (map[int]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	indices := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := chunkFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		indices[idx] = struct{}{}
	}
	return indices, nil
}
