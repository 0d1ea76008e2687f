package controllers

import (
	"net/http"

	"github.com/qmedica/catalog-backend/api/responses"
	"github.com/qmedica/catalog-backend/api/validators"
	"github.com/qmedica/catalog-backend/internal/uploads"
	"github.com/qmedica/catalog-backend/pkg/enums"
	pkgerrors "github.com/qmedica/catalog-backend/pkg/errors"
	"github.com/qmedica/catalog-backend/pkg/logger"
)

type chunkResponse struct {
	Pending     bool   `json:"pending"`
	Path        string `json:"path,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// UploadChunk accepts one chunk of a client-split upload. The response stays
// {"pending":true} until the final chunk completes the index set, at which
// point the stored path and content type come back instead.
func UploadChunk(assembler *uploads.Assembler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if assembler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload assembler unavailable"))
			return
		}

		if err := parseMultipart(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uploadID := formValue(r, "upload_id")
		fileName := formValue(r, "file_name")

		chunkIndex, err := validators.ParseFormInt(r, "chunk_index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		totalChunks, err := validators.ParseFormInt(r, "total_chunks")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseUploadKind(formValue(r, "kind"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown upload kind"))
			return
		}

		data, _, err := readFormFile(r, "chunk")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(data) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "chunk data is required"))
			return
		}

		result, err := assembler.ReceiveChunk(r.Context(), uploadID, chunkIndex, totalChunks, fileName, kind, data)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, chunkResponse{
			Pending:     result.Pending,
			Path:        result.Path,
			ContentType: result.ContentType,
		})
	}
}
