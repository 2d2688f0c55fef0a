package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/catalog"
	"github.com/mesh-intelligence/storefront/internal/content"
	"github.com/mesh-intelligence/storefront/internal/lists"
	"github.com/mesh-intelligence/storefront/internal/objstore"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

var (
	notFoundErrors = []error{
		types.ErrNotFound, lists.ErrItemNotFound, lists.ErrUnknownList,
		admin.ErrUnknownForm, objstore.ErrObjectNotFound,
	}
	badRequestErrors = []error{
		catalog.ErrInvalidRange, admin.ErrImageRequired, objstore.ErrInvalidKey,
		types.ErrInvalidID, types.ErrInvalidData, types.ErrInvalidFilter,
		types.ErrInvalidName, types.ErrInvalidSection, types.ErrInvalidElement,
		types.ErrInvalidKind, types.ErrInvalidContent, types.ErrInvalidPrice,
		types.ErrInvalidURL, content.ErrNotJSON, errBadRequest,
	}
	conflictErrors = []error{types.ErrDuplicateName, objstore.ErrObjectExists}
)

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	var ve *admin.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity
	}
	for _, group := range []struct {
		status int
		errs   []error
	}{
		{http.StatusNotFound, notFoundErrors},
		{http.StatusBadRequest, badRequestErrors},
		{http.StatusConflict, conflictErrors},
	} {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status code and a JSON body. Validation errors
// carry the failing fields.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := errorBody{Error: err.Error()}
	var ve *admin.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, body)
}

// decodeFields reads a flat JSON object of strings.
func decodeFields(r *http.Request) (map[string]string, error) {
	fields := map[string]string{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return fields, nil
}

// multipartInput is a parsed multipart form: its first value per field and
// the optional "file" part.
type multipartInput struct {
	fields map[string]string
	upload *admin.Upload
	file   multipart.File
}

func (m *multipartInput) Close() {
	if m.file != nil {
		m.file.Close()
	}
}

func parseMultipart(w http.ResponseWriter, r *http.Request) (*multipartInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	in := &multipartInput{fields: map[string]string{}}
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			in.fields[k] = v[0]
		}
	}
	file, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		in.file = file
		in.upload = &admin.Upload{Filename: hdr.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile):
	default:
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return in, nil
}
