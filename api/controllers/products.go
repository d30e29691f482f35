package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/catalogo-backend/api/responses"
	"github.com/angelmondragon/catalogo-backend/api/validators"
	productsvc "github.com/angelmondragon/catalogo-backend/internal/products"
	pkgerrors "github.com/angelmondragon/catalogo-backend/pkg/errors"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
)

// ListProducts serves the catalog list, optionally filtered by the q query
// parameter.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteListError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		items, err := svc.List(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			responses.WriteListError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, items, len(items))
	}
}

// GetProduct serves a single product as a raw record.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"), "Internal server error")
			return
		}

		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error")
			return
		}

		producto, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error")
			return
		}

		responses.WriteJSON(w, http.StatusOK, producto)
	}
}

// CreateProduct handles the multipart create form. Both name and image are
// mandatory; a rejected request never leaves a stored file behind.
func CreateProduct(svc productsvc.Service, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"), "Internal server error")
			return
		}

		form, err := validators.ParseProductForm(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error")
			return
		}
		defer form.Close()

		input := productsvc.CreateInput{
			Nombre:      deref(form.Nombre),
			Descripcion: form.Descripcion,
		}
		if form.HasImage() {
			input.Image = &productsvc.ImageUpload{Reader: form.File, Filename: form.Filename}
		}

		producto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error")
			return
		}

		responses.WriteProducto(w, http.StatusCreated, "Product created successfully", producto)
	}
}

// UpdateProduct handles the multipart update form. The name is always
// required; descripcion and image only change when the form carries them.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"), "Internal server error updating product")
			return
		}

		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error updating product")
			return
		}

		form, err := validators.ParseProductForm(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error updating product")
			return
		}
		defer form.Close()

		// an absent nombre is rejected the same way as a blank one
		nombre := deref(form.Nombre)
		if nombre == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Product name cannot be empty"), "Internal server error updating product")
			return
		}

		input := productsvc.UpdateInput{
			Nombre:      &nombre,
			Descripcion: form.Descripcion,
		}
		if form.HasImage() {
			input.Image = &productsvc.ImageUpload{Reader: form.File, Filename: form.Filename}
		}

		producto, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error updating product")
			return
		}

		responses.WriteProducto(w, http.StatusOK, "Product updated successfully", producto)
	}
}

// DeleteProduct removes the row and, best-effort, its image file.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"), "Internal server error during deletion")
			return
		}

		id, err := parseProductID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error during deletion")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err, "Internal server error during deletion")
			return
		}

		responses.WriteMessage(w, http.StatusOK, "Product and file deleted successfully")
	}
}

// parseProductID reads the id path parameter. Malformed ids behave like ids
// that match no row.
func parseProductID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return uint(id), nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
