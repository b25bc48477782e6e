package system

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "go-erp/docs"
)

type SwaggerApi struct{}

func NewSwaggerApi() *SwaggerApi {
	return &SwaggerApi{}
}

func (h *SwaggerApi) Setup(app *fiber.App) {
	app.Get("/swagger/*", swagger.HandlerDefault)
}
