// Package httpapi serves the storefront content, catalog and admin
// endpoints over HTTP.
package httpapi

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/storefront/internal/app"
)

// maxUploadSize bounds multipart request bodies.
const maxUploadSize = 16 << 20

type handler struct {
	app    *app.App
	logger zerolog.Logger
}

// NewRouter returns the HTTP handler for a running App.
func NewRouter(a *app.App) http.Handler {
	h := &handler{app: a, logger: a.Logger}

	timeout := a.Config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(a.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))

	r.Get("/healthz", h.health)

	if mount, ok := storageMount(a.Config.PublicBaseURL, a.Bucket.Name()); ok {
		files := http.StripPrefix(mount, http.FileServer(a.Bucket.FileSystem()))
		r.Handle(mount+"*", files)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/content/{section}", h.getContent)
		r.Get("/images", h.listImages)
		r.Get("/images/{section}", h.listImages)
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.listCategories)
		r.Get("/faqs", h.listFAQs)
		r.Get("/lists/{section}/{element}", h.getList)
		r.Get("/orders/whatsapp", h.whatsapp)

		r.Route("/admin", func(r chi.Router) {
			r.Use(bearerAuth(a.Config.Auth.AdminTokens))

			r.Put("/content/{section}", h.putContent)
			r.Delete("/content/{section}/{element}", h.deleteContent)
			r.Put("/forms/{form}", h.submitForm)

			r.Post("/gallery/{section}", h.addImage)
			r.Put("/slots/{section}/{name}", h.putSlot)
			r.Put("/images/*", h.editImage)
			r.Delete("/images/*", h.deleteImage)

			r.Post("/products", h.createProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)

			r.Post("/categories", h.createCategory)
			r.Delete("/categories/{id}", h.deleteCategory)

			r.Post("/faqs", h.createFAQ)
			r.Put("/faqs/{id}", h.updateFAQ)
			r.Delete("/faqs/{id}", h.deleteFAQ)

			r.Post("/lists/{section}/{element}", h.appendListItem)
			r.Put("/lists/{section}/{element}/{id}", h.updateListItem)
			r.Delete("/lists/{section}/{element}/{id}", h.deleteListItem)
		})
	})

	return r
}

// storageMount returns the local path prefix the bucket is served under.
// A public base URL with a host points at an external server and is not
// mounted.
func storageMount(publicBaseURL, bucket string) (string, bool) {
	u, err := url.Parse(publicBaseURL)
	if err != nil || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	return strings.TrimRight(u.Path, "/") + "/" + bucket + "/", true
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "storefront"})
}
