package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	productsvc "github.com/angelmondragon/catalogo-backend/internal/products"
	"github.com/angelmondragon/catalogo-backend/pkg/db/models"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
	"github.com/angelmondragon/catalogo-backend/pkg/storage/disk"
)

const testMaxUpload = 1 << 20

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Producto{}); err != nil {
		t.Fatalf("migrating schema: %v", err)
	}

	store, err := disk.NewStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := productsvc.NewService(productsvc.NewRepository(gdb), store, logg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	r := chi.NewRouter()
	r.Route("/api/productos", func(r chi.Router) {
		r.Get("/", ListProducts(svc, logg))
		r.Post("/", CreateProduct(svc, logg, testMaxUpload))
		r.Get("/{id}", GetProduct(svc, logg))
		r.Put("/{id}", UpdateProduct(svc, logg, testMaxUpload))
		r.Delete("/{id}", DeleteProduct(svc, logg))
	})
	return r
}

func productForm(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("writing field %s: %v", key, err)
		}
	}
	if withImage {
		part, err := writer.CreateFormFile("imagen", "producto.png")
		if err != nil {
			t.Fatalf("creating file part: %v", err)
		}
		if _, err := io.Copy(part, strings.NewReader("png-bytes")); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return body
}

func createProduct(t *testing.T, handler http.Handler, nombre string) map[string]any {
	t.Helper()
	body, contentType := productForm(t, map[string]string{"nombre": nombre}, true)
	rec := doRequest(t, handler, http.MethodPost, "/api/productos", body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %q returned %d: %s", nombre, rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)
}

func TestCreateProductEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		body := createProduct(t, handler, "Lamp")
		if body["message"] != "Product created successfully" {
			t.Fatalf("unexpected message %v", body["message"])
		}
		producto, ok := body["producto"].(map[string]any)
		if !ok {
			t.Fatalf("missing producto in %v", body)
		}
		if producto["nombre"] != "Lamp" {
			t.Fatalf("unexpected nombre %v", producto["nombre"])
		}
		if producto["imagenUrl"] == "" || producto["imagenUrl"] == nil {
			t.Fatal("expected imagenUrl on created product")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		body, contentType := productForm(t, nil, true)
		rec := doRequest(t, handler, http.MethodPost, "/api/productos", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if got := decodeBody(t, rec)["message"]; got != "Product name is required" {
			t.Fatalf("unexpected message %v", got)
		}
	})

	t.Run("missing image", func(t *testing.T) {
		body, contentType := productForm(t, map[string]string{"nombre": "Lamp"}, false)
		rec := doRequest(t, handler, http.MethodPost, "/api/productos", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if got := decodeBody(t, rec)["message"]; got != "Product image is required" {
			t.Fatalf("unexpected message %v", got)
		}
	})
}

func TestListProductsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	createProduct(t, handler, "Chair")
	createProduct(t, handler, "chair")
	createProduct(t, handler, "Table")

	rec := doRequest(t, handler, http.MethodGet, "/api/productos?q=chair", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["total"] != float64(2) {
		t.Fatalf("expected total=2, got %v", body["total"])
	}
	data, ok := body["data"].([]any)
	if !ok || len(data) != 2 {
		t.Fatalf("unexpected data %v", body["data"])
	}
	first := data[0].(map[string]any)
	second := data[1].(map[string]any)
	if first["id"] != float64(2) || second["id"] != float64(1) {
		t.Fatalf("expected newest-first ids [2 1], got [%v %v]", first["id"], second["id"])
	}
	if _, ok := first["imagen_url"]; !ok {
		t.Fatalf("list rows must carry imagen_url, got %v", first)
	}
}

func TestGetProductEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	createProduct(t, handler, "Lamp")

	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/productos/1", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["id"] != float64(1) || body["nombre"] != "Lamp" {
			t.Fatalf("unexpected record %v", body)
		}
		if _, ok := body["descripcion"]; !ok {
			t.Fatalf("detail record must carry descripcion, got %v", body)
		}
		if _, ok := body["imagen_url"]; !ok {
			t.Fatalf("detail record must carry imagen_url, got %v", body)
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/productos/99", nil, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if got := decodeBody(t, rec)["message"]; got != "Product not found" {
			t.Fatalf("unexpected message %v", got)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/productos/abc", nil, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestUpdateProductEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	created := createProduct(t, handler, "Chair")
	originalRef := created["producto"].(map[string]any)["imagenUrl"]

	t.Run("rename keeps image", func(t *testing.T) {
		body, contentType := productForm(t, map[string]string{"nombre": "Armchair"}, false)
		rec := doRequest(t, handler, http.MethodPut, "/api/productos/1", body, contentType)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		payload := decodeBody(t, rec)
		if payload["message"] != "Product updated successfully" {
			t.Fatalf("unexpected message %v", payload["message"])
		}
		producto := payload["producto"].(map[string]any)
		if producto["nombre"] != "Armchair" {
			t.Fatalf("unexpected nombre %v", producto["nombre"])
		}
		if producto["imagenUrl"] != originalRef {
			t.Fatalf("image reference must survive, got %v want %v", producto["imagenUrl"], originalRef)
		}
	})

	t.Run("replace image", func(t *testing.T) {
		body, contentType := productForm(t, map[string]string{"nombre": "Armchair"}, true)
		rec := doRequest(t, handler, http.MethodPut, "/api/productos/1", body, contentType)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		producto := decodeBody(t, rec)["producto"].(map[string]any)
		if producto["imagenUrl"] == originalRef {
			t.Fatal("expected a fresh image reference")
		}
	})

	t.Run("blank name", func(t *testing.T) {
		body, contentType := productForm(t, map[string]string{"nombre": "   "}, false)
		rec := doRequest(t, handler, http.MethodPut, "/api/productos/1", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if got := decodeBody(t, rec)["message"]; got != "Product name cannot be empty" {
			t.Fatalf("unexpected message %v", got)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		body, contentType := productForm(t, nil, false)
		rec := doRequest(t, handler, http.MethodPut, "/api/productos/1", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		body, contentType := productForm(t, map[string]string{"nombre": "Ghost"}, false)
		rec := doRequest(t, handler, http.MethodPut, "/api/productos/99", body, contentType)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if got := decodeBody(t, rec)["message"]; got != "Product not found" {
			t.Fatalf("unexpected message %v", got)
		}
	})
}

func TestDeleteProductEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	createProduct(t, handler, "Lamp")

	rec := doRequest(t, handler, http.MethodDelete, "/api/productos/1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["message"]; got != "Product and file deleted successfully" {
		t.Fatalf("unexpected message %v", got)
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/productos/1", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}
