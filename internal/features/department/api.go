package department

import (
	"go-erp/internal/config"
	"go-erp/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DepartmentApi struct {
	controller *DepartmentController
	config     *config.Config
}

func NewDepartmentApi(controller *DepartmentController, config *config.Config) *DepartmentApi {
	return &DepartmentApi{
		controller: controller,
		config:     config,
	}
}

func (h *DepartmentApi) Setup(app *fiber.App) {
	departments := app.Group("/api/departments", middleware.AuthMiddleware(h.config.SkipAuth))

	departments.Get("/", h.controller.ListDepartments)
	departments.Get("/:id", h.controller.GetDepartment)
	departments.Post("/", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.CreateDepartment)
	departments.Put("/:id", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.UpdateDepartment)
	departments.Delete("/:id", middleware.RequireRole(h.config.SkipAuth, "admin"), h.controller.DeactivateDepartment)
}
