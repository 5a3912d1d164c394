// notebook/http/app.go
package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"

	"github.com/vinizap/lumi/notebook/auth"
)

// NewApp wires the read-only API. Everything under /api needs the token;
// /health is open.
func NewApp(s *Server, token string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "lumi",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(s.log),
	})

	app.Use(requestLogger(s.log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, OPTIONS",
		AllowHeaders: "Content-Type, " + auth.Header,
	}))

	app.Get("/health", s.HandleHealth)

	api := app.Group("/api", auth.Middleware(token))
	api.Get("/tree", s.HandleTree)
	api.Get("/notes", s.HandleNotes)
	api.Get("/notes/:index", s.HandleGetNote)
	api.Get("/notes/:index/html", s.HandleNoteHTML)
	api.Get("/tags", s.HandleTags)
	api.Get("/visual", s.HandleVisual)

	return app
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("request")
		return err
	}
}

func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
