package validators

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/catalogo-backend/pkg/errors"
)

// multipartMemory caps how much of a form is buffered in memory before
// spilling to temp files.
const multipartMemory = 32 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ProductForm is a decoded product multipart payload. Nil pointers mean the
// field was absent from the form, which matters for partial updates.
type ProductForm struct {
	Nombre      *string
	Descripcion *string
	File        multipart.File
	Filename    string
}

// HasImage reports whether an image part was uploaded.
func (f *ProductForm) HasImage() bool {
	return f.File != nil
}

// Close releases the uploaded file, if any.
func (f *ProductForm) Close() {
	if f.File != nil {
		f.File.Close()
	}
}

type productFieldLimits struct {
	Nombre      string `json:"nombre" validate:"omitempty,max=255"`
	Descripcion string `json:"descripcion" validate:"omitempty,max=2000"`
}

// ParseProductForm decodes a multipart product payload, enforcing the body
// size limit. Presence and emptiness of text fields stay distinguishable;
// required-field policy is the service's call, not ours.
func ParseProductForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*ProductForm, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Uploaded file is too large")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid multipart form")
	}

	form := &ProductForm{}
	if values, ok := r.MultipartForm.Value["nombre"]; ok && len(values) > 0 {
		form.Nombre = &values[0]
	}
	if values, ok := r.MultipartForm.Value["descripcion"]; ok && len(values) > 0 {
		form.Descripcion = &values[0]
	}

	limits := productFieldLimits{}
	if form.Nombre != nil {
		limits.Nombre = *form.Nombre
	}
	if form.Descripcion != nil {
		limits.Descripcion = *form.Descripcion
	}
	if err := validate.Struct(limits); err != nil {
		return nil, formatValidationErrors(err)
	}

	file, header, err := r.FormFile("imagen")
	switch {
	case err == nil:
		form.File = file
		form.Filename = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// image is optional here; create rejects its absence downstream
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid image upload")
	}

	return form, nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
