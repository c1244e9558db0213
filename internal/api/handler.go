package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/qbo-statement-converter/internal/convert"
	"github.com/insightdelivered/qbo-statement-converter/internal/jobs"
	"github.com/insightdelivered/qbo-statement-converter/internal/logger"
	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/source"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

// maxUpload caps the multipart body (32MB).
const maxUpload = 32 << 20

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	Job          *jobs.ConvertJob     `json:"job,omitempty"`
	Summary      *models.Summary      `json:"summary,omitempty"`
	TotalsMatch  bool                 `json:"totalsMatch"`
	Transactions []models.Transaction `json:"transactions"`
}

// BankInfo describes one supported bank for /api/banks.
type BankInfo struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Aliases []string        `json:"aliases,omitempty"`
	Formats []models.Format `json:"formats"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Converter *convert.Converter
	Store     jobs.Store
	// UploadDir receives the uploaded statements, one sub-directory per job.
	UploadDir string
	Log       zerolog.Logger
}

// NewApp returns a fiber app with the API routes and the shared middleware.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "qbo-statement-converter",
		BodyLimit:    maxUpload,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.Register(app)
	return app
}

// Register sets up the HTTP routes.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Get("/banks", h.HandleBanks)
	api.Post("/convert", h.HandleConvert)
	api.Get("/jobs", h.HandleListJobs)
	api.Get("/jobs/:id", h.HandleGetJob)
	api.Get("/jobs/:id/download", h.HandleDownload)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// HandleBanks lists the registered bank profiles.
func (h *Handler) HandleBanks(c *fiber.Ctx) error {
	profiles := h.Converter.Registry.Profiles()
	out := make([]BankInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, BankInfo{
			ID:      string(p.Bank),
			Name:    p.Name,
			Aliases: p.Aliases,
			Formats: p.Formats(),
		})
	}
	return c.JSON(out)
}

// HandleConvert converts one uploaded statement synchronously and records
// the run as a job. Form fields: file (required), bank, balance.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	name := filepath.Base(header.Filename)
	if _, ok := source.FormatOf(name); !ok {
		return fiber.NewError(fiber.StatusBadRequest, "Only PDF, CSV and TXT files are supported.")
	}

	opts := convert.Options{Bank: strings.TrimSpace(c.FormValue("bank"))}
	if opts.Bank != "" {
		if _, err := h.Converter.Registry.Lookup(opts.Bank); err != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Unknown bank %q. Use one of: %s.", opts.Bank, strings.Join(h.Converter.Registry.Names(), ", ")))
		}
	}
	if v := c.FormValue("balance"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "balance must be true or false")
		}
		opts.IncludeBalance = &b
	}

	ctx := c.UserContext()
	job := jobs.NewConvertJob(name)
	log := h.Log.With().Str("job_id", job.JobID).Logger()
	ctx = logger.WithContext(ctx, log)

	if err := h.Store.SaveJob(ctx, job); err != nil {
		return err
	}

	dir := filepath.Join(h.UploadDir, job.JobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return h.fail(c, job, err)
	}
	input := filepath.Join(dir, name)
	if err := c.SaveFile(header, input); err != nil {
		return h.fail(c, job, err)
	}

	if err := h.Store.UpdateJobStatus(ctx, job.JobID, jobs.JobStatusRunning, ""); err != nil {
		return err
	}
	res, err := h.Converter.ConvertFile(ctx, input, opts)
	if res != nil {
		job.Bank = string(res.Bank)
		job.OutputPath = res.Output
		job.Transactions = res.Transactions
		job.Skipped = res.Skipped
		job.Corrections = res.Corrections
		job.Mismatches = res.Mismatches
		job.UnparsedDates = res.UnparsedDates
		job.Warnings = res.Warnings
	}
	if err != nil {
		return h.fail(c, job, err)
	}

	job.Finish(nil)
	if err := h.Store.SaveJob(ctx, job); err != nil {
		return err
	}

	txns := res.TransactionList()
	if txns == nil {
		txns = []models.Transaction{}
	}
	return c.JSON(ConvertResponse{
		Success:      true,
		Job:          job,
		Summary:      &res.Summary,
		TotalsMatch:  res.TotalsMatch,
		Transactions: txns,
	})
}

// HandleListJobs lists recorded jobs. Query: bank, status, limit, offset.
func (h *Handler) HandleListJobs(c *fiber.Ctx) error {
	filter := jobs.JobFilter{
		Bank:   c.Query("bank"),
		Status: jobs.JobStatus(c.Query("status")),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}
	list, err := h.Store.ListJobs(c.UserContext(), filter)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*jobs.ConvertJob{}
	}
	return c.JSON(list)
}

// HandleGetJob returns one job.
func (h *Handler) HandleGetJob(c *fiber.Ctx) error {
	job, err := h.Store.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(job)
}

// HandleDownload sends the CSV written for a completed job.
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	job, err := h.Store.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if job.Status != jobs.JobStatusCompleted || job.OutputPath == "" {
		return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("job %s has no output (%s)", job.JobID, job.Status))
	}
	return c.Download(job.OutputPath, filepath.Base(job.OutputPath))
}

// fail records err on the job and answers with the job attached.
func (h *Handler) fail(c *fiber.Ctx, job *jobs.ConvertJob, err error) error {
	job.Finish(err)
	if serr := h.Store.SaveJob(c.UserContext(), job); serr != nil {
		h.Log.Error().Err(serr).Str("job_id", job.JobID).Msg("failed to save job")
	}
	h.Log.Warn().Err(err).Str("job_id", job.JobID).Str("input", job.Input).Msg("conversion failed")

	return c.Status(statusFor(err)).JSON(ConvertResponse{
		Success:      false,
		Error:        err.Error(),
		Job:          job,
		Transactions: []models.Transaction{},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownBank),
		errors.Is(err, models.ErrUnsupportedFormat),
		errors.Is(err, models.ErrNoTransactions),
		errors.Is(err, models.ErrSourceUnreadable):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, jobs.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ConvertResponse{
		Success:      false,
		Error:        err.Error(),
		Transactions: []models.Transaction{},
	})
}
