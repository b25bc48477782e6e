package main

import (
	"context"
	"fmt"
	"time"

	common_models "go-erp/internal/common/models"
	"go-erp/internal/config"
	"go-erp/internal/database"
	"go-erp/internal/features/consumable"
	"go-erp/internal/features/department"
	"go-erp/internal/features/requisition"
	"go-erp/internal/features/user"
	"go-erp/internal/logger"
	"go-erp/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var departments = []department.Department{
	{Name: "Engineering", Code: "ENG", Manager: "Grace Ojo"},
	{Name: "Operations", Code: "OPS", Manager: "Daniel Eze"},
	{Name: "Finance", Code: "FIN", Manager: "Amina Bello"},
	{Name: "Human Resources", Code: "HR", Manager: "Tunde Bakare"},
	{Name: "Procurement", Code: "PRC", Manager: "Ngozi Okafor"},
	{Name: "Logistics", Code: "LOG", Manager: "Samuel Adeyemi"},
	{Name: "IT", Code: "IT", Manager: "Chidi Nwosu"},
	{Name: "Quality Assurance", Code: "QA", Manager: "Fatima Yusuf"},
	{Name: "Health & Safety", Code: "HSE", Manager: "Peter Obi"},
	{Name: "Administration", Code: "ADM", Manager: "Mary Johnson"},
}

var consumables = []consumable.Consumable{
	{Code: "CON001", Name: "A4 Paper", Category: "Stationery", Unit: "Ream", StockLevel: 120, ReorderLevel: 30, UnitPrice: 4500, Location: "Store A"},
	{Code: "CON002", Name: "Ballpoint Pens", Category: "Stationery", Unit: "Box", StockLevel: 80, ReorderLevel: 20, UnitPrice: 1500, Location: "Store A"},
	{Code: "CON003", Name: "Printer Toner", Category: "IT Supplies", Unit: "Piece", StockLevel: 15, ReorderLevel: 5, UnitPrice: 28000, Location: "Store B"},
	{Code: "CON004", Name: "Diesel", Category: "Fuel", Unit: "Liter", StockLevel: 2000, ReorderLevel: 500, UnitPrice: 1100, Location: "Fuel Depot"},
	{Code: "CON005", Name: "Safety Gloves", Category: "PPE", Unit: "Pair", StockLevel: 60, ReorderLevel: 25, UnitPrice: 2200, Location: "Store C"},
	{Code: "CON006", Name: "Hand Sanitizer", Category: "Hygiene", Unit: "Bottle", StockLevel: 45, ReorderLevel: 15, UnitPrice: 1800, Location: "Store A"},
	{Code: "CON007", Name: "Notebooks A5", Category: "Stationery", Unit: "Piece", StockLevel: 100, ReorderLevel: 30, UnitPrice: 900, Location: "Store A"},
	{Code: "CON008", Name: "Engine Oil", Category: "Lubricants", Unit: "Liter", StockLevel: 180, ReorderLevel: 50, UnitPrice: 5200, Location: "Fuel Depot"},
}

type seedUser struct {
	Username   string
	FullName   string
	StaffID    string
	Department string
	Roles      []common_models.Role
}

var users = []seedUser{
	{Username: "jadebayo", FullName: "John Adebayo", StaffID: "EMP-1042", Department: "Engineering", Roles: []common_models.Role{common_models.RoleStaff}},
	{Username: "gojo", FullName: "Grace Ojo", StaffID: "EMP-1001", Department: "Engineering", Roles: []common_models.Role{common_models.RoleStaff, common_models.RoleSupervisor}},
	{Username: "nokafor", FullName: "Ngozi Okafor", StaffID: "EMP-0007", Department: "Procurement", Roles: []common_models.Role{common_models.RoleStaff, common_models.RoleSupervisor, common_models.RoleAdmin}},
}

// Seed loads demo master data and a handful of requisitions across the
// workflow stages, then shuts the app down.
func Seed(
	lc fx.Lifecycle,
	departmentRepo department.DepartmentRepository,
	consumableRepo consumable.ConsumableRepository,
	userRepo user.UserRepository,
	requisitionRepo requisition.RequisitionRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Starting database seeding...")

				now := time.Now()

				for _, d := range departments {
					existing, err := departmentRepo.FindByCode(ctx, d.Code)
					if err != nil {
						logger.Error("department lookup failed", zap.String("code", d.Code), zap.Error(err))
						return
					}
					if existing != nil {
						continue
					}
					d.Active = true
					d.CreatedAt = now
					d.UpdatedAt = now
					if err := departmentRepo.Create(ctx, &d); err != nil {
						logger.Error("failed to seed department", zap.String("code", d.Code), zap.Error(err))
						return
					}
				}
				logger.Info("departments seeded", zap.Int("count", len(departments)))

				for _, c := range consumables {
					existing, err := consumableRepo.FindByCode(ctx, c.Code)
					if err != nil {
						logger.Error("consumable lookup failed", zap.String("code", c.Code), zap.Error(err))
						return
					}
					if existing != nil {
						continue
					}
					c.Active = true
					c.CreatedAt = now
					c.UpdatedAt = now
					if err := consumableRepo.Create(ctx, &c); err != nil {
						logger.Error("failed to seed consumable", zap.String("code", c.Code), zap.Error(err))
						return
					}
				}
				logger.Info("consumables seeded", zap.Int("count", len(consumables)))

				hash, err := utils.HashPassword("changeme123")
				if err != nil {
					logger.Error("failed to hash seed password", zap.Error(err))
					return
				}
				for _, su := range users {
					existing, err := userRepo.FindByUsername(ctx, su.Username)
					if err != nil {
						logger.Error("user lookup failed", zap.String("username", su.Username), zap.Error(err))
						return
					}
					if existing != nil {
						continue
					}
					u := &common_models.User{
						Username:   su.Username,
						Email:      su.Username + "@example.com",
						Password:   hash,
						FullName:   su.FullName,
						StaffID:    su.StaffID,
						Department: su.Department,
						Roles:      su.Roles,
						Status:     "active",
						CreatedAt:  now,
						UpdatedAt:  now,
					}
					if err := userRepo.Create(ctx, u); err != nil {
						logger.Error("failed to seed user", zap.String("username", su.Username), zap.Error(err))
						return
					}
				}
				logger.Info("users seeded", zap.Int("count", len(users)))

				if err := seedRequisitions(ctx, requisitionRepo, consumableRepo); err != nil {
					logger.Error("failed to seed requisitions", zap.Error(err))
					return
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func seedRequisitions(ctx context.Context, repo requisition.RequisitionRepository, consumableRepo consumable.ConsumableRepository) error {
	existing, err := repo.List(ctx, requisition.ListFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	pens, err := consumableRepo.FindByCode(ctx, "CON002")
	if err != nil {
		return err
	}
	if pens == nil {
		return fmt.Errorf("consumable CON002 missing; seed the catalog first")
	}
	toner, err := consumableRepo.FindByCode(ctx, "CON003")
	if err != nil {
		return err
	}
	if toner == nil {
		return fmt.Errorf("consumable CON003 missing; seed the catalog first")
	}

	now := time.Now()
	supDate := now.Add(-24 * time.Hour)
	expected := now.AddDate(0, 0, 7)

	samples := []requisition.Requisition{
		{
			Number:      utils.BusinessNumber("REQ"),
			RequestDate: now.Add(-2 * time.Hour),
			StaffName:   "John Adebayo",
			StaffID:     "EMP-1042",
			Department:  "Engineering",
			Supervisor:  "Grace Ojo",
			Items: []requisition.RequisitionItem{
				{ConsumableID: pens.ID.Hex(), ConsumableName: pens.Name, RequestedQuantity: 5, Unit: pens.Unit, Justification: "Site visit kits"},
			},
			Purpose:          "Field documentation",
			Urgency:          requisition.UrgencyMedium,
			Status:           requisition.StatusPending,
			ExpectedDelivery: &expected,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			Number:      utils.BusinessNumber("REQ"),
			RequestDate: now.Add(-48 * time.Hour),
			StaffName:   "Grace Ojo",
			StaffID:     "EMP-1001",
			Department:  "Engineering",
			Supervisor:  "Grace Ojo",
			Items: []requisition.RequisitionItem{
				{ConsumableID: toner.ID.Hex(), ConsumableName: toner.Name, RequestedQuantity: 2, Unit: toner.Unit, Justification: "Printer maintenance"},
			},
			Purpose:            "Office printing",
			Urgency:            requisition.UrgencyHigh,
			Status:             requisition.StatusAdminReview,
			SupervisorComments: "Approved by supervisor",
			SupervisorDate:     &supDate,
			ExpectedDelivery:   &expected,
			CreatedAt:          now.Add(-48 * time.Hour),
			UpdatedAt:          supDate,
		},
	}

	for i := range samples {
		if err := repo.Create(ctx, &samples[i]); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,

			department.NewDepartmentRepository,
			consumable.NewConsumableRepository,
			user.NewUserRepository,
			requisition.NewRequisitionRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
