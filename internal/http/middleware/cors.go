package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/tarifa/internal/config"
)

// exposedHeaders lets embedding pages revalidate documents and report request ids.
var exposedHeaders = []string{"ETag", "Last-Modified", RequestIDHeader}

// CORS lets the configurator pages embedded on other origins fetch documents.
// A nil config disables the middleware.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return c.Handler
}
