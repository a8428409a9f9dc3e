package handlers

import (
	"time"

	"labstock/internal/app"
	reportController "labstock/internal/controllers/reports"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	Handler
	reportController reportController.ReportControllerInterface
}

func NewReportHandler(app app.App, router fiber.Router) *ReportHandler {
	return &ReportHandler{
		reportController: app.Controllers.Report,
		Handler: Handler{
			log:        logger.New("handlers").File("report_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ReportHandler) Register() {
	reports := h.router.Group("/reports", h.middleware.RequireAuth())

	reports.Get("/status", h.statusCounts)
	reports.Get("/categories", h.categoryCounts)
	reports.Get("/overdue", h.overdue)
	reports.Get("/user-activity", h.userActivity)
}

func (h *ReportHandler) statusCounts(c *fiber.Ctx) error {
	rows, err := h.reportController.StatusCounts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"counts": rows})
}

func (h *ReportHandler) categoryCounts(c *fiber.Ctx) error {
	rows, err := h.reportController.CategoryCounts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"counts": rows})
}

func (h *ReportHandler) overdue(c *fiber.Ctx) error {
	rows, err := h.reportController.Overdue(c.UserContext(), time.Now())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"overdue": rows})
}

// userActivity accepts optional start and end query params (RFC 3339 date),
// defaulting to the trailing 90 days.
func (h *ReportHandler) userActivity(c *fiber.Ctx) error {
	end := time.Now()
	start := end.AddDate(0, 0, -90)

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid start date, expected YYYY-MM-DD",
			})
		}
		start = parsed
	}

	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid end date, expected YYYY-MM-DD",
			})
		}
		// Include the whole end day
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	rows, err := h.reportController.UserActivity(c.UserContext(), start, end)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"activity": rows})
}
