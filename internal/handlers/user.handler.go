package handlers

import (
	"labstock/internal/app"
	userController "labstock/internal/controllers/users"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Handler
	userController userController.UserControllerInterface
}

func NewUserHandler(app app.App, router fiber.Router) *UserHandler {
	return &UserHandler{
		userController: app.Controllers.User,
		Handler: Handler{
			log:        logger.New("handlers").File("user_handler"),
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UserHandler) Register() {
	users := h.router.Group("/users", h.middleware.RequireAuth())

	users.Get("/", h.list)

	admin := users.Group("/", h.middleware.RequireAdmin())
	admin.Post("/", h.create)
	admin.Delete("/:username", h.delete)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	profiles, err := h.userController.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"users": profiles})
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	var request userController.CreateUserRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	profile, err := h.userController.Create(c.UserContext(), &request)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": profile})
}

func (h *UserHandler) delete(c *fiber.Ctx) error {
	if err := h.userController.Delete(c.UserContext(), c.Params("username")); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
