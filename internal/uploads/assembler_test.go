package uploads

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmedica/catalog-backend/pkg/config"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
)

func newTestAssembler(t *testing.T) (*Assembler, *Store, string) {
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
	staging := t.TempDir()
	assembler, err := NewAssembler(staging, store, nil, nil)
	if err != nil {
		t.Fatalf("NewAssembler: %v", err)
	}
	return assembler, store, staging
}

func splitChunks(data []byte, n int) [][]byte {
	size := (len(data) + n - 1) / n
	chunks := make([][]byte, 0, n)
	for start := 0; start < len(data); start += size {
		end := start + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[start:end])
	}
	return chunks
}

func TestReassemblyOutOfOrderIsByteIdentical(t *testing.T) {
	assembler, store, staging := newTestAssembler(t)
	ctx := context.Background()

	original := []byte("%PDF-1.4 ")
	for i := 0; i < 5000; i++ {
		original = append(original, byte(i%251))
	}
	chunks := splitChunks(original, 4)

	// Deliver out of order; only the last delivery completes the set.
	order := []int{2, 0, 3, 1}
	var final *ChunkResult
	for n, idx := range order {
		result, err := assembler.ReceiveChunk(ctx, "upload-abc", idx, len(chunks), "doc.pdf", enums.UploadKindCertificate, chunks[idx])
		if err != nil {
			t.Fatalf("ReceiveChunk(%d): %v", idx, err)
		}
		if n < len(order)-1 && !result.Pending {
			t.Fatalf("chunk %d should leave the upload pending", idx)
		}
		final = result
	}

	if final.Pending {
		t.Fatal("expected reassembly after the final chunk")
	}
	stored, err := os.ReadFile(filepath.Join(store.root, final.Path))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(stored, original) {
		t.Fatal("reassembled bytes differ from original")
	}
	if _, err := os.Stat(filepath.Join(staging, "upload-abc")); !os.IsNotExist(err) {
		t.Fatal("staging directory should be removed after success")
	}
}

func TestDuplicateChunkDoesNotTriggerEarlyReassembly(t *testing.T) {
	assembler, _, _ := newTestAssembler(t)
	ctx := context.Background()

	// Two of three chunks, with index 0 retried; a file count would hit 3
	// here and reassemble a corrupt payload.
	for _, idx := range []int{0, 1, 0} {
		result, err := assembler.ReceiveChunk(ctx, "upload-retry", idx, 3, "doc.pdf", enums.UploadKindCertificate, []byte("chunk"))
		if err != nil {
			t.Fatalf("ReceiveChunk(%d): %v", idx, err)
		}
		if !result.Pending {
			t.Fatalf("upload must stay pending until index 2 arrives")
		}
	}
}

func TestOversizeReassemblyFailsAndCleansUp(t *testing.T) {
	assembler, store, staging := newTestAssembler(t)
	ctx := context.Background()

	// Three chunks that together exceed the 5 MiB asset ceiling.
	chunk := make([]byte, 2*mib)
	var lastErr error
	for idx := 0; idx < 3; idx++ {
		_, err := assembler.ReceiveChunk(ctx, "upload-big", idx, 3, "huge.pdf", enums.UploadKindCertificate, chunk)
		lastErr = err
	}

	typed := pkgerrors.As(lastErr)
	if typed == nil || typed.Code() != pkgerrors.CodePayloadTooLarge {
		t.Fatalf("expected PayloadTooLarge, got %v", lastErr)
	}
	if _, err := os.Stat(filepath.Join(staging, "upload-big")); !os.IsNotExist(err) {
		t.Fatal("staging directory should be removed after failure")
	}
	entries, _ := os.ReadDir(filepath.Join(store.root, "certificates"))
	if len(entries) != 0 {
		t.Fatalf("expected no stored output, found %d files", len(entries))
	}
}

func TestReceiveChunkValidatesArguments(t *testing.T) {
	assembler, _, _ := newTestAssembler(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		uploadID string
		index    int
		total    int
		data     []byte
	}{
		{"traversal id", "../evil", 0, 2, []byte("x")},
		{"empty id", "", 0, 2, []byte("x")},
		{"negative index", "ok", -1, 2, []byte("x")},
		{"index beyond total", "ok", 2, 2, []byte("x")},
		{"zero total", "ok", 0, 0, []byte("x")},
		{"empty chunk", "ok", 0, 2, nil},
	}
	for _, tc := range cases {
		if _, err := assembler.ReceiveChunk(ctx, tc.uploadID, tc.index, tc.total, "f.pdf", enums.UploadKindCertificate, tc.data); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
