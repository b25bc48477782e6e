package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-erp/internal/common/api"
	"go-erp/internal/config"
	"go-erp/internal/database"
	"go-erp/internal/features/audit"
	"go-erp/internal/features/auth"
	"go-erp/internal/features/automation"
	"go-erp/internal/features/consumable"
	cron_feature "go-erp/internal/features/cron"
	"go-erp/internal/features/dashboard"
	"go-erp/internal/features/department"
	"go-erp/internal/features/notification"
	"go-erp/internal/features/purchaseorder"
	"go-erp/internal/features/report"
	"go-erp/internal/features/reporting"
	"go-erp/internal/features/requisition"
	"go-erp/internal/features/supplier"
	"go-erp/internal/features/system"
	"go-erp/internal/features/user"
	"go-erp/internal/logger"
	"go-erp/internal/middleware"
	"go-erp/pkg/utils"

	_ "go-erp/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags a constructor so Fx adds its result to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the "routes" group and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down on exit.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// @title           ERP Inventory API
// @version         1.0
// @description     Requisition workflow, stock and procurement API built on Fiber and Uber Fx.

// @host            localhost:8080
// @BasePath        /api
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			notification.NewHub,

			// Repositories
			audit.NewAuditRepository,
			user.NewUserRepository,
			department.NewDepartmentRepository,
			consumable.NewConsumableRepository,
			requisition.NewRequisitionRepository,
			supplier.NewSupplierRepository,
			purchaseorder.NewPurchaseOrderRepository,
			notification.NewNotificationRepository,
			automation.NewAutomationRepository,

			// Services
			audit.NewAuditService,
			auth.NewAuthService,
			user.NewUserService,
			department.NewDepartmentService,
			consumable.NewConsumableService,
			requisition.NewRequisitionService,
			supplier.NewSupplierService,
			purchaseorder.NewPurchaseOrderService,
			notification.NewNotificationService,
			automation.NewAutomationService,
			dashboard.NewDashboardService,
			report.NewReportService,
			reporting.NewExporter,

			// Interface adapters to satisfy Fx without import cycles
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r user.UserRepository) notification.RoleUserFinder { return r },
			func(e *reporting.Exporter) requisition.DecisionExporter { return e },

			// Controllers
			auth.NewAuthController,
			user.NewUserController,
			department.NewDepartmentController,
			consumable.NewConsumableController,
			requisition.NewRequisitionController,
			supplier.NewSupplierController,
			purchaseorder.NewPurchaseOrderController,
			notification.NewNotificationController,
			automation.NewAutomationController,
			audit.NewAuditController,
			dashboard.NewDashboardController,
			report.NewReportController,

			// API routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(department.NewDepartmentApi),
			AsRoute(consumable.NewConsumableApi),
			AsRoute(requisition.NewRequisitionApi),
			AsRoute(supplier.NewSupplierApi),
			AsRoute(purchaseorder.NewPurchaseOrderApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(automation.NewAutomationApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(report.NewReportApi),
			AsRoute(system.NewSystemApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebsocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			StartServer,
			cron_feature.NewScheduler,
			func(lc fx.Lifecycle, exporter *reporting.Exporter) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						return exporter.Close()
					},
				})
			},
		),
	)

	app.Run()
}
