package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tunogya/salescast/pkg/data"
	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/plot"
)

// Runner forecasts every tier of a record set
type Runner interface {
	Run(ctx context.Context, records []model.SalesRecord) (*forecast.Run, error)
}

// RunSaver persists a finished run
type RunSaver interface {
	SaveRun(ctx context.Context, run *forecast.Run, windowSize int) error
}

// Handler serves forecast requests
type Handler struct {
	runner     Runner
	saver      RunSaver // optional
	windowSize int
	weeks      int
	logger     *log.Logger
}

// Options configures a Handler
type Options struct {
	Saver      RunSaver
	WindowSize int
	Weeks      int
	Logger     *log.Logger
}

// NewHandler creates a handler over a pipeline
func NewHandler(runner Runner, opts Options) *Handler {
	if opts.WindowSize <= 0 {
		opts.WindowSize = model.DefaultWindowSize
	}
	if opts.Weeks <= 0 {
		opts.Weeks = plot.DefaultWeeks
	}
	return &Handler{
		runner:     runner,
		saver:      opts.Saver,
		windowSize: opts.WindowSize,
		weeks:      opts.Weeks,
		logger:     opts.Logger,
	}
}

// HandleHealth reports liveness
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleForecast accepts a CSV upload, as multipart field "file" or a text/csv body,
// and returns the per-tier forecast.
func (h *Handler) HandleForecast(c *fiber.Ctx) error {
	body, err := uploadedCSV(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	defer body.Close()

	records, stats, err := data.ReadRecords(body, h.logger)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, data.ErrMissingColumn) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	h.logf("forecast request: %d rows, %d kept, %d dropped", stats.Rows, stats.Kept, stats.Dropped())

	ctx := c.UserContext()
	run, err := h.runner.Run(ctx, records)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	resp := NewForecastResponse(run, stats, h.weeks)
	if h.saver != nil {
		if err := h.saver.SaveRun(ctx, run, h.windowSize); err != nil {
			h.logf("failed to archive run %s: %v", run.ID, err)
		} else {
			resp.Archived = true
		}
	}

	return c.JSON(resp)
}

func uploadedCSV(c *fiber.Ctx) (io.ReadCloser, error) {
	if fh, err := c.FormFile("file"); err == nil {
		return fh.Open()
	}

	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if strings.HasPrefix(ct, "text/csv") || strings.HasPrefix(ct, fiber.MIMETextPlain) {
		body := c.Body()
		if len(body) == 0 {
			return nil, errors.New("empty CSV body")
		}
		// fasthttp reuses the body buffer after the handler returns
		return io.NopCloser(bytes.NewReader(bytes.Clone(body))), nil
	}

	return nil, errors.New("expected a CSV upload in form field \"file\" or a text/csv body")
}

func (h *Handler) logf(format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
