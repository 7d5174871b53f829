package transaction

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/dealdesk/internal/auth"
	"github.com/MrJamesThe3rd/dealdesk/internal/blob"
	"github.com/MrJamesThe3rd/dealdesk/internal/transaction"
)

const (
	multipartMemory = 8 << 20

	// multipartOverhead is the room left for boundaries and form fields on top
	// of the file size limit.
	multipartOverhead = 1 << 20
)

var (
	errNoFile    = errors.New("no file uploaded")
	errBadUpload = errors.New("invalid upload")
	errTooLarge  = errors.New("file too large")
)

// addDocument accepts either a multipart upload in the "file" field or a JSON
// reference to an object that is already stored.
func (h *Handler) addDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var (
		req       transaction.DocumentParams
		storedKey string
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		params, key, err := h.receiveUpload(w, r, id)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || errors.Is(err, errTooLarge) {
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}

			if errors.Is(err, errNoFile) || errors.Is(err, errBadUpload) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			writeError(w, r, err)

			return
		}

		req, storedKey = params, key
	} else if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.UploadedBy == "" {
		if caller, ok := auth.FromContext(r.Context()); ok {
			req.UploadedBy = caller.DisplayName()
		}
	}

	tx, err := h.svc.AddDocument(r.Context(), id, req)
	if err != nil {
		if storedKey != "" {
			if delErr := h.blobs.Delete(r.Context(), storedKey); delErr != nil {
				slog.WarnContext(r.Context(), "failed to discard orphaned upload", "key", storedKey, "error", delErr)
			}
		}

		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

// receiveUpload stores the multipart file and returns the document metadata
// together with the blob key it was written under.
func (h *Handler) receiveUpload(w http.ResponseWriter, r *http.Request, id uuid.UUID) (transaction.DocumentParams, string, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return transaction.DocumentParams{}, "", fmt.Errorf("%w: %w", errBadUpload, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return transaction.DocumentParams{}, "", errNoFile
		}

		return transaction.DocumentParams{}, "", fmt.Errorf("%w: %w", errBadUpload, err)
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return transaction.DocumentParams{}, "", errTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if detected, err := mimetype.DetectReader(file); err == nil {
			contentType = detected.String()
		}

		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return transaction.DocumentParams{}, "", fmt.Errorf("rewinding upload: %w", err)
		}
	}

	obj, err := h.blobs.Put(r.Context(), blob.NewKey(id.String(), header.Filename, time.Now().UTC()), file, contentType)
	if err != nil {
		return transaction.DocumentParams{}, "", fmt.Errorf("storing upload: %w", err)
	}

	return transaction.DocumentParams{
		Name:       header.Filename,
		URL:        obj.URL,
		UploadedBy: r.FormValue("uploaded_by"),
		FileSize:   header.Size,
		MimeType:   contentType,
	}, obj.Key, nil
}
