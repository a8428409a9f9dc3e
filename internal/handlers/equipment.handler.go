package handlers

import (
	"labstock/internal/app"
	equipmentController "labstock/internal/controllers/equipment"
	"labstock/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type EquipmentHandler struct {
	Handler
	equipmentController equipmentController.EquipmentControllerInterface
}

func NewEquipmentHandler(app app.App, router fiber.Router) *EquipmentHandler {
	return &EquipmentHandler{
		equipmentController: app.Controllers.Equipment,
		Handler: Handler{
			log:        logger.New("handlers").File("equipment_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *EquipmentHandler) Register() {
	equipment := h.router.Group("/equipment", h.middleware.RequireAuth())

	equipment.Get("/", h.list)
	equipment.Get("/:sku", h.get)
	equipment.Get("/:sku/history", h.history)

	write := equipment.Group("/", h.middleware.RequireWrite())
	write.Post("/checkout", h.checkout)
	write.Post("/return", h.returnEquipment)
	write.Put("/:sku", h.edit)

	admin := equipment.Group("/", h.middleware.RequireAdmin())
	admin.Post("/", h.intake)
	admin.Delete("/:sku", h.delete)
}

func (h *EquipmentHandler) list(c *fiber.Ctx) error {
	equipment, err := h.equipmentController.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"equipment": equipment})
}

func (h *EquipmentHandler) get(c *fiber.Ctx) error {
	equipment, err := h.equipmentController.Get(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"equipment": equipment})
}

func (h *EquipmentHandler) history(c *fiber.Ctx) error {
	records, err := h.equipmentController.History(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"history": records})
}

func (h *EquipmentHandler) intake(c *fiber.Ctx) error {
	var request equipmentController.IntakeRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	equipment, err := h.equipmentController.Intake(c.UserContext(), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"equipment": equipment})
}

func (h *EquipmentHandler) checkout(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var request equipmentController.CheckoutRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	equipment, err := h.equipmentController.Checkout(c.UserContext(), user, &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"equipment": equipment})
}

func (h *EquipmentHandler) returnEquipment(c *fiber.Ctx) error {
	var request equipmentController.ReturnRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	equipment, err := h.equipmentController.Return(c.UserContext(), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"equipment": equipment})
}

func (h *EquipmentHandler) edit(c *fiber.Ctx) error {
	var request equipmentController.EditRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	equipment, err := h.equipmentController.Edit(c.UserContext(), c.Params("sku"), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"equipment": equipment})
}

func (h *EquipmentHandler) delete(c *fiber.Ctx) error {
	if err := h.equipmentController.Delete(c.UserContext(), c.Params("sku")); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
