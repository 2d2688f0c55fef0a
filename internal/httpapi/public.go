package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/storefront/internal/catalog"
	"github.com/mesh-intelligence/storefront/internal/content"
)

// getContent handles GET /api/content/{section}. Text elements are JSON
// strings; json elements are embedded as their structured value.
func (h *handler) getContent(w http.ResponseWriter, r *http.Request) {
	s, err := h.app.Content.Read(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// listImages handles GET /api/images and GET /api/images/{section}.
func (h *handler) listImages(w http.ResponseWriter, r *http.Request) {
	imgs, err := h.app.Images.List(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imgs)
}

// listProducts handles GET /api/products?q=&category=&price=&size=.
func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	price, err := catalog.ParsePriceRange(q.Get("price"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	size, err := catalog.ParseSizeRange(q.Get("size"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	products, err := h.app.Catalog.Query(r.Context(), catalog.Filter{
		Search:     q.Get("q"),
		CategoryID: q.Get("category"),
		Price:      price,
		Size:       size,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Store.Products().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.app.Catalog.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *handler) listFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.app.FAQs.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, faqs)
}

// getList handles GET /api/lists/{section}/{element}.
func (h *handler) getList(w http.ResponseWriter, r *http.Request) {
	l, err := h.app.Lists.Load(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "element"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l.Items)
}

// whatsapp handles GET /api/orders/whatsapp.
func (h *handler) whatsapp(w http.ResponseWriter, r *http.Request) {
	orders, err := h.app.Content.Read(r.Context(), "orders_page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": content.WhatsAppLink(orders)})
}
