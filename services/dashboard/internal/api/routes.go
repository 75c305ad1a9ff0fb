package api

import (
	"time"

	"jobtrends/common/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type ServerOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

func NewApp(h *JobsHandler, opts ServerOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Job Trends Dashboard API",
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	allow := opts.AllowOrigins
	if allow == "" {
		allow = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allow,
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	api.Get("/filters", h.HandleFilters)
	api.Get("/jobs", h.HandleJobs)
	api.Get("/jobs/export", h.HandleExport)
	api.Get("/summary", h.HandleSummary)
	api.Get("/charts", h.HandleCharts)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Job Trends Dashboard API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/filters",
				"GET /api/v1/jobs",
				"GET /api/v1/jobs/export",
				"GET /api/v1/summary",
				"GET /api/v1/charts",
			},
		})
	})

	return app
}

// ErrorHandler maps domain errors to HTTP status codes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	} else {
		switch errors.TypeOf(err) {
		case errors.ErrTypeInvalidInput:
			code = fiber.StatusBadRequest
		case errors.ErrTypeNotFound:
			code = fiber.StatusNotFound
		case errors.ErrTypeUnavailable:
			code = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
