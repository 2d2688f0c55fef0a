package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/app"
	"github.com/mesh-intelligence/storefront/internal/catalog"
	"github.com/mesh-intelligence/storefront/internal/config"
	"github.com/mesh-intelligence/storefront/internal/content"
	"github.com/mesh-intelligence/storefront/internal/lists"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

const adminToken = "s3cret"

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Store:         types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()},
		Bucket:        "site-images",
		PublicBaseURL: "/storage",
		Cache:         config.CacheConfig{Driver: config.CacheMemory, TTL: time.Minute},
		Server:        config.ServerConfig{RequestTimeout: 5 * time.Second},
		Auth:          config.AuthConfig{AdminTokens: []string{"other", adminToken}},
	}
	a, err := app.New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	srv := httptest.NewServer(NewRouter(a))
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return srv
}

type request struct {
	method string
	path   string
	token  string
	body   io.Reader
	ctype  string
}

func do(t *testing.T, srv *httptest.Server, req request) (*http.Response, []byte) {
	t.Helper()
	r, err := http.NewRequest(req.method, srv.URL+req.path, req.body)
	require.NoError(t, err)
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.ctype != "" {
		r.Header.Set("Content-Type", req.ctype)
	}
	resp, err := srv.Client().Do(r)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func adminJSON(method, path string, body io.Reader) request {
	return request{method: method, path: path, token: adminToken, body: body, ctype: "application/json"}
}

// multipartBody builds a form with fields and, when filename is set, a file part.
func multipartBody(t *testing.T, fields map[string]string, filename, data string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func adminMultipart(t *testing.T, method, path string, fields map[string]string, filename, data string) request {
	body, ctype := multipartBody(t, fields, filename, data)
	return request{method: method, path: path, token: adminToken, body: body, ctype: ctype}
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)
	resp, body := do(t, srv, request{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"storefront"}`, string(body))
}

func TestAdminAuth(t *testing.T) {
	srv := setupServer(t)
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + adminToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodPut, srv.URL+"/api/admin/forms/catalog",
				strings.NewReader(`{"title":"Catálogo","subtitle":"Nuestros quesos"}`))
			require.NoError(t, err)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			resp, err := srv.Client().Do(r)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestContentEndpoints(t *testing.T) {
	srv := setupServer(t)

	resp, body := do(t, srv, request{method: http.MethodGet, path: "/api/content/home"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	home := decode[map[string]any](t, body)
	assert.Equal(t, "Lorem Ipsum", home["title"])

	resp, body = do(t, srv, request{method: http.MethodGet, path: "/api/content/contact"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	contact := decode[map[string]any](t, body)
	assert.Equal(t, []any{}, contact["locations"])

	resp, body = do(t, srv, adminJSON(http.MethodPut, "/api/admin/content/about",
		strings.NewReader(`{"title":"Nosotros","stats":{"years":25},"quote":"{\"not\":\"json\"}"}`)))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	about := decode[map[string]any](t, body)
	assert.Equal(t, "Nosotros", about["title"])
	assert.Equal(t, map[string]any{"years": float64(25)}, about["stats"])
	assert.Equal(t, `{"not":"json"}`, about["quote"], "text stays text")

	resp, _ = do(t, srv, request{method: http.MethodDelete, path: "/api/admin/content/about/quote", token: adminToken})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, adminJSON(http.MethodPut, "/api/admin/content/about", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFormSubmit(t *testing.T) {
	srv := setupServer(t)

	resp, body := do(t, srv, adminJSON(http.MethodPut, "/api/admin/forms/home",
		jsonBody(t, map[string]string{"title": "Quesos", "subtitle": ""})))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	eb := decode[errorBody](t, body)
	assert.Equal(t, "El subtítulo es requerido", eb.Fields["subtitle"])
	assert.Equal(t, "El texto del botón CTA es requerido", eb.Fields["ctaText"])

	resp, _ = do(t, srv, adminJSON(http.MethodPut, "/api/admin/forms/home",
		jsonBody(t, map[string]string{"title": "Quesos", "subtitle": "Frescos", "ctaText": "Ver"})))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = do(t, srv, request{method: http.MethodGet, path: "/api/content/home"})
	assert.Equal(t, "Frescos", decode[map[string]any](t, body)["subtitle"])

	resp, _ = do(t, srv, adminJSON(http.MethodPut, "/api/admin/forms/nope", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImageEndpoints(t *testing.T) {
	srv := setupServer(t)

	resp, body := do(t, srv, adminMultipart(t, http.MethodPost, "/api/admin/gallery/gallery", map[string]string{}, "", ""))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	eb := decode[errorBody](t, body)
	assert.Contains(t, eb.Fields, "image")
	assert.Contains(t, eb.Fields, "alt_text")

	resp, body = do(t, srv, adminMultipart(t, http.MethodPost, "/api/admin/gallery/gallery",
		map[string]string{"alt_text": "Queso fresco"}, "Fresco.JPG", "jpeg-bytes"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	img := decode[types.Image](t, body)
	assert.True(t, strings.HasPrefix(img.Name, "gallery/"))
	assert.True(t, strings.HasSuffix(img.Name, ".jpg"))

	_, body = do(t, srv, request{method: http.MethodGet, path: "/api/images/gallery"})
	listed := decode[[]types.Image](t, body)
	require.Len(t, listed, 1)
	assert.Equal(t, "Queso fresco", listed[0].AltText)

	resp, body = do(t, srv, request{method: http.MethodGet, path: img.URL})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "jpeg-bytes", string(body))

	resp, body = do(t, srv, adminMultipart(t, http.MethodPut, "/api/admin/images/"+img.Name,
		map[string]string{"alt_text": "Queso de rancho"}, "new.jpg", "new-bytes"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	edited := decode[types.Image](t, body)
	assert.Equal(t, "Queso de rancho", edited.AltText)
	assert.Contains(t, edited.URL, "?v=")

	resp, body = do(t, srv, adminMultipart(t, http.MethodPut, "/api/admin/slots/home/home_background", nil, "bg.png", "png"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, _ = do(t, srv, adminMultipart(t, http.MethodPut, "/api/admin/slots/home/home_background", nil, "", ""))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = do(t, srv, request{method: http.MethodGet, path: "/api/images"})
	assert.Len(t, decode[[]types.Image](t, body), 2)

	resp, _ = do(t, srv, request{method: http.MethodDelete, path: "/api/admin/images/" + img.Name, token: adminToken})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, srv, request{method: http.MethodDelete, path: "/api/admin/images/" + img.Name, token: adminToken})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProductEndpoints(t *testing.T) {
	srv := setupServer(t)

	create := func(name, price, weight string) types.Product {
		t.Helper()
		resp, body := do(t, srv, adminMultipart(t, http.MethodPost, "/api/admin/products", map[string]string{
			"name": name, "description": "Queso artesanal", "price": price, "weight": weight, "category_id": "oaxaca",
		}, "", ""))
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
		return decode[types.Product](t, body)
	}
	cheap := create("Oaxaca chico", "45.50", "500g")
	create("Oaxaca grande", "150", "1kg")

	resp, body := do(t, srv, adminMultipart(t, http.MethodPost, "/api/admin/products", map[string]string{
		"name": "Sin precio", "description": "x", "price": "-1", "weight": "1kg",
	}, "", ""))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "El precio debe ser un número positivo", decode[errorBody](t, body).Fields["price"])

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Oaxaca chico", "Oaxaca grande"}},
		{"?price=low", []string{"Oaxaca chico"}},
		{"?price=high&category=oaxaca", []string{"Oaxaca grande"}},
		{"?size=large", []string{"Oaxaca grande"}},
		{"?q=CHICO", []string{"Oaxaca chico"}},
		{"?category=manchego", []string{}},
	}
	for _, tt := range tests {
		t.Run("query"+tt.query, func(t *testing.T) {
			resp, body := do(t, srv, request{method: http.MethodGet, path: "/api/products" + tt.query})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			names := []string{}
			for _, p := range decode[[]types.Product](t, body) {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	resp, _ = do(t, srv, request{method: http.MethodGet, path: "/api/products?price=cheap"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, srv, adminMultipart(t, http.MethodPut, "/api/admin/products/"+cheap.ProductID, map[string]string{
		"name": "Oaxaca chico", "description": "Queso artesanal", "price": "55", "weight": "500g",
	}, "oaxaca.png", "img"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	updated := decode[types.Product](t, body)
	assert.Equal(t, types.Price(5500), updated.Price)
	assert.Contains(t, updated.ImageURL, "/storage/site-images/products/")

	resp, body = do(t, srv, request{method: http.MethodGet, path: "/api/products/" + cheap.ProductID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, updated.ImageURL, decode[types.Product](t, body).ImageURL)

	resp, _ = do(t, srv, request{method: http.MethodDelete, path: "/api/admin/products/" + cheap.ProductID, token: adminToken})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, srv, request{method: http.MethodGet, path: "/api/products/" + cheap.ProductID})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategoryAndFAQEndpoints(t *testing.T) {
	srv := setupServer(t)

	resp, body := do(t, srv, adminJSON(http.MethodPost, "/api/admin/categories", jsonBody(t, map[string]string{"name": "Quesos Oaxaca"})))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decode[errorBody](t, body).Fields, "name")

	resp, body = do(t, srv, adminJSON(http.MethodPost, "/api/admin/categories", jsonBody(t, map[string]string{"name": "Quesos Añejos"})))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cat := decode[types.Category](t, body)

	_, body = do(t, srv, request{method: http.MethodGet, path: "/api/categories"})
	assert.Len(t, decode[[]types.Category](t, body), 5)

	resp, _ = do(t, srv, request{method: http.MethodDelete, path: "/api/admin/categories/" + cat.CategoryID, token: adminToken})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, srv, adminJSON(http.MethodPost, "/api/admin/faqs", jsonBody(t, map[string]string{"question": "¿Envían?", "answer": "Sí"})))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	faq := decode[types.FAQ](t, body)

	resp, _ = do(t, srv, adminJSON(http.MethodPut, "/api/admin/faqs/"+faq.FAQID, jsonBody(t, map[string]string{"question": "¿Envían?", "answer": "A todo el país"})))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = do(t, srv, request{method: http.MethodGet, path: "/api/faqs"})
	faqs := decode[[]types.FAQ](t, body)
	require.Len(t, faqs, 1)
	assert.Equal(t, "A todo el país", faqs[0].Answer)

	resp, _ = do(t, srv, adminJSON(http.MethodPut, "/api/admin/faqs/missing", jsonBody(t, map[string]string{"question": "q", "answer": "a"})))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, request{method: http.MethodDelete, path: "/api/admin/faqs/" + faq.FAQID, token: adminToken})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestListEndpoints(t *testing.T) {
	srv := setupServer(t)
	base := "/api/admin/lists/contact/locations"

	resp, body := do(t, srv, adminJSON(http.MethodPost, base, jsonBody(t, map[string]string{"name": "Centro", "address": "Av. 1", "hours": "9-18"})))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	item := decode[types.ListItem](t, body)
	require.NotEmpty(t, item.ID)

	resp, _ = do(t, srv, adminJSON(http.MethodPost, base, jsonBody(t, map[string]string{"name": "Sin dirección"})))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = do(t, srv, adminJSON(http.MethodPut, base+"/"+item.ID, jsonBody(t, map[string]string{"name": "Centro", "address": "Av. 2", "hours": "9-18"})))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, srv, adminJSON(http.MethodPut, base+"/missing", jsonBody(t, map[string]string{"name": "x", "address": "y", "hours": "z"})))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = do(t, srv, request{method: http.MethodGet, path: "/api/lists/contact/locations"})
	items := decode[[]types.ListItem](t, body)
	require.Len(t, items, 1)
	assert.Equal(t, "Av. 2", items[0].Field("address"))

	resp, _ = do(t, srv, request{method: http.MethodDelete, path: base + "/" + item.ID, token: adminToken})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, srv, request{method: http.MethodGet, path: "/api/lists/contact/unknown"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWhatsAppLink(t *testing.T) {
	srv := setupServer(t)

	_, body := do(t, srv, request{method: http.MethodGet, path: "/api/orders/whatsapp"})
	assert.Equal(t, content.WhatsAppURL(content.DefaultWhatsAppPhone, content.DefaultWhatsAppMessage), decode[map[string]string](t, body)["url"])

	resp, _ := do(t, srv, adminJSON(http.MethodPut, "/api/admin/forms/orders_page", jsonBody(t, map[string]string{
		"title": "Pedidos", "subtitle": "Escríbenos", "whatsapp_button": "Pedir", "whatsapp_link": "https://wa.me/5210000000",
	})))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = do(t, srv, request{method: http.MethodGet, path: "/api/orders/whatsapp"})
	assert.Equal(t, "https://wa.me/5210000000", decode[map[string]string](t, body)["url"])
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&admin.ValidationError{Fields: map[string]string{"x": "y"}}, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", types.ErrNotFound), http.StatusNotFound},
		{lists.ErrUnknownList, http.StatusNotFound},
		{catalog.ErrInvalidRange, http.StatusBadRequest},
		{types.ErrInvalidPrice, http.StatusBadRequest},
		{types.ErrDuplicateName, http.StatusConflict},
		{&content.WriteError{Section: "s", Element: "e", Err: types.ErrInvalidKind}, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestStorageMount(t *testing.T) {
	tests := []struct {
		base  string
		want  string
		mount bool
	}{
		{"/storage", "/storage/site-images/", true},
		{"/files/", "/files/site-images/", true},
		{"https://cdn.example.com/storage", "", false},
		{"storage", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			got, ok := storageMount(tt.base, "site-images")
			assert.Equal(t, tt.mount, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
