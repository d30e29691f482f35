package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://localhost:3000", // local preview
}

// CORS returns middleware that applies the API's allowed origin policy.
// Extra origins from config are appended to the dev defaults.
func CORS(extraOrigins []string) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(defaultCORSOrigins)+len(extraOrigins))
	origins = append(origins, defaultCORSOrigins...)
	origins = append(origins, extraOrigins...)

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
