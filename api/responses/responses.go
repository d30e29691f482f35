package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/catalogo-backend/pkg/errors"
	"github.com/angelmondragon/catalogo-backend/pkg/logger"
	"github.com/angelmondragon/catalogo-backend/pkg/types"
)

// WriteJSON writes any payload. Handlers use it for responses that are a raw
// record rather than an envelope.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// WriteList writes the list envelope the legacy frontend consumes.
func WriteList(w http.ResponseWriter, items any, total int) {
	writeJSON(w, http.StatusOK, types.ListEnvelope{
		Success: true,
		Total:   total,
		Data:    items,
	})
}

// WriteMessage writes a bare {"message": ...} payload.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.MessageEnvelope{Message: message})
}

// WriteProducto writes a message plus the affected record.
func WriteProducto(w http.ResponseWriter, status int, message string, producto any) {
	writeJSON(w, status, types.ProductoEnvelope{Message: message, Producto: producto})
}

// WriteError maps a typed error onto the legacy {"message": ...} failure
// shape. Validation and not-found messages pass through verbatim; anything
// else collapses to internalMessage so backend detail never leaks.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error, internalMessage string) {
	_, meta, msg := resolve(err, internalMessage)
	logError(ctx, logg, err)
	writeJSON(w, meta.HTTPStatus, types.MessageEnvelope{Message: msg})
}

// WriteListError writes the list endpoint's distinct failure envelope.
func WriteListError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta, msg := resolve(err, "Error getting products")
	logError(ctx, logg, err)
	writeJSON(w, meta.HTTPStatus, types.ListErrorEnvelope{
		Success: false,
		Message: msg,
		Error:   typed.Error(),
	})
}

func resolve(err error, internalMessage string) (*pkgerrors.Error, pkgerrors.Metadata, string) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := internalMessage
	if msg == "" {
		msg = meta.PublicMessage
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	return typed, meta, msg
}

func logError(ctx context.Context, logg *logger.Logger, err error) {
	if logg == nil {
		return
	}

	dump := pkgerrors.Dump(err)

	ctx = logg.WithFields(ctx, map[string]any{
		"error":         dump.TopMessage,
		"error_code":    dump.Code,
		"error_chain":   dump.Chain,
		"pg_code":       dump.PGCode,
		"pg_detail":     dump.PGDetail,
		"pg_message":    dump.PGMessage,
		"pg_table":      dump.PGTable,
		"pg_column":     dump.PGColumn,
		"pg_constraint": dump.PGConstraint,
	})
	logg.Error(ctx, "request.error", err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
