package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/storefront/internal/content"
)

// objectName returns the catch-all segment, which holds image names that
// contain slashes.
func objectName(r *http.Request) string {
	return strings.TrimPrefix(chi.URLParam(r, "*"), "/")
}

// putContent handles PUT /api/admin/content/{section}. The body maps element
// names to values: JSON strings are stored as text, anything else as json.
func (h *handler) putContent(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	values := content.Section{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&values); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := h.app.Content.WriteSection(r.Context(), section, values); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.app.Content.Read(r.Context(), section)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handler) deleteContent(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Content.Delete(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "element")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submitForm handles PUT /api/admin/forms/{form}.
func (h *handler) submitForm(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.app.Sections.Submit(r.Context(), chi.URLParam(r, "form"), fields); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addImage handles POST /api/admin/gallery/{section} with a multipart file
// and alt_text.
func (h *handler) addImage(w http.ResponseWriter, r *http.Request) {
	in, err := parseMultipart(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer in.Close()
	img, err := h.app.ImageService.Add(r.Context(), chi.URLParam(r, "section"), in.upload, in.fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, img)
}

// putSlot handles PUT /api/admin/slots/{section}/{name}.
func (h *handler) putSlot(w http.ResponseWriter, r *http.Request) {
	in, err := parseMultipart(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer in.Close()
	img, err := h.app.ImageService.Slot(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "name"), in.upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// editImage handles PUT /api/admin/images/{name...}: a new alt_text and an
// optional replacement file.
func (h *handler) editImage(w http.ResponseWriter, r *http.Request) {
	in, err := parseMultipart(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer in.Close()
	img, err := h.app.ImageService.Edit(r.Context(), objectName(r), in.upload, in.fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

func (h *handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.app.ImageService.Delete(r.Context(), objectName(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createProduct handles POST /api/admin/products with multipart fields and
// an optional image file.
func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, err := parseMultipart(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer in.Close()
	p, err := h.app.Products.Create(r.Context(), in.fields, in.upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	in, err := parseMultipart(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer in.Close()
	p, err := h.app.Products.Update(r.Context(), chi.URLParam(r, "id"), in.fields, in.upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createCategory(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.app.Categories.Create(r.Context(), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createFAQ(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := h.app.FAQs.Create(r.Context(), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *handler) updateFAQ(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := h.app.FAQs.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *handler) deleteFAQ(w http.ResponseWriter, r *http.Request) {
	if err := h.app.FAQs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) appendListItem(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.app.Lists.Append(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "element"), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *handler) updateListItem(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	err = h.app.Lists.Update(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "element"), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) deleteListItem(w http.ResponseWriter, r *http.Request) {
	err := h.app.Lists.Delete(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "element"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
