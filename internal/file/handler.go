package file

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radif/blobprovider/internal/middleware"
	"github.com/radif/blobprovider/internal/response"
	"github.com/radif/blobprovider/internal/storage"
)

// Handler holds HTTP handlers for file endpoints.
type Handler struct {
	svc      *Service
	maxBytes int64
	backend  string
	fields   []storage.Field
}

// NewHandler creates a new file Handler. Uploads larger than maxBytes are
// rejected; backend and fields describe the provider served by Provider.
func NewHandler(svc *Service, maxBytes int64, backend string, fields []storage.Field) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes, backend: backend, fields: fields}
}

// Routes mounts the authenticated file endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Upload)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
}

// Upload godoc
//
//	@Summary		Upload file
//	@Description	Stream a multipart file to blob storage. Public files get a public (or CDN) URL, private files a private container URL.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"File content"
//	@Param			private	formData	bool	false	"Store in the private area"
//	@Param			path	formData	string	false	"Folder overriding the default path, without . or .. segments"
//	@Success		201		{object}	response.Envelope{data=Record}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Failure		504		{object}	response.Envelope
//	@Router			/files [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.Subject(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "file exceeds upload limit")
			return
		}
		response.BadRequest(w, "invalid multipart body")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field is required")
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		response.BadRequest(w, "could not read file")
		return
	}

	private := false
	if v := r.FormValue("private"); v != "" {
		private, err = strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "private must be a boolean")
			return
		}
	}

	rec, err := h.svc.Upload(r.Context(), UploadInput{
		OwnerID: owner,
		Name:    header.Filename,
		Mime:    header.Header.Get("Content-Type"),
		Data:    data,
		Private: private,
		Path:    r.FormValue("path"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, rec)
}

// Get godoc
//
//	@Summary		Get file
//	@Description	Return the catalog entry of a file. Private files are only visible to their owner.
//	@Tags			files
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"File ID"
//	@Success		200	{object}	response.Envelope{data=Record}
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/files/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.Subject(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), owner)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, rec)
}

// Delete godoc
//
//	@Summary		Delete file
//	@Description	Remove the blob from storage and drop the catalog entry.
//	@Tags			files
//	@Security		BearerAuth
//	@Param			id	path	string	true	"File ID"
//	@Success		204
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Router			/files/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.Subject(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), owner); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// Provider godoc
//
//	@Summary		Provider options
//	@Description	List the configuration options understood by the storage provider.
//	@Tags			provider
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]storage.Field}
//	@Router			/provider [get]
func (h *Handler) Provider(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]interface{}{
		"provider": h.backend,
		"fields":   h.fields,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyUpload):
		response.BadRequest(w, "file is empty")
	case errors.Is(err, storage.ErrInvalidPath):
		response.BadRequest(w, "path must not contain . or .. segments")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "file not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "file belongs to another owner")
	case storage.IsNotFound(err):
		response.NotFound(w, "blob not found")
	case storage.IsTimeout(err):
		response.GatewayTimeout(w, "storage operation timed out")
	case storage.IsTransfer(err):
		h.svc.log.Error("storage transfer failed", "error", err)
		response.BadGateway(w, "storage unavailable")
	default:
		h.svc.log.Error("file request failed", "error", err)
		response.InternalError(w)
	}
}
