package reporting

import (
	"context"
	"database/sql"

	"go-erp/internal/config"
	"go-erp/internal/features/requisition"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Exporter mirrors terminal requisition decisions into a relational
// reporting database so finance can query them with plain SQL. It is a
// no-op when no reporting URL is configured; export failures are logged
// and never surface to the workflow.
type Exporter struct {
	db     *sql.DB
	logger *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS requisition_decisions (
	requisition_id   TEXT PRIMARY KEY,
	number           TEXT NOT NULL,
	staff_name       TEXT NOT NULL,
	staff_id         TEXT NOT NULL,
	department       TEXT NOT NULL,
	supervisor       TEXT,
	purpose          TEXT,
	urgency          TEXT NOT NULL,
	status           TEXT NOT NULL,
	item_count       INT NOT NULL,
	supervisor_comments TEXT,
	admin_comments   TEXT,
	request_date     TIMESTAMPTZ NOT NULL,
	decided_at       TIMESTAMPTZ NOT NULL
)`

const upsert = `
INSERT INTO requisition_decisions (
	requisition_id, number, staff_name, staff_id, department, supervisor,
	purpose, urgency, status, item_count, supervisor_comments, admin_comments,
	request_date, decided_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (requisition_id) DO UPDATE SET
	status = EXCLUDED.status,
	admin_comments = EXCLUDED.admin_comments,
	decided_at = EXCLUDED.decided_at`

func NewExporter(cfg *config.Config, logger *zap.Logger) *Exporter {
	e := &Exporter{logger: logger}
	if cfg.ReportingDBURL == "" {
		logger.Info("reporting database not configured, decision export disabled")
		return e
	}

	db, err := sql.Open("postgres", cfg.ReportingDBURL)
	if err != nil {
		logger.Error("failed to open reporting database", zap.Error(err))
		return e
	}
	if _, err := db.Exec(schema); err != nil {
		logger.Error("failed to prepare reporting schema", zap.Error(err))
		db.Close()
		return e
	}

	e.db = db
	return e
}

func (e *Exporter) Enabled() bool {
	return e.db != nil
}

func (e *Exporter) ExportDecision(ctx context.Context, req *requisition.Requisition) {
	if e.db == nil {
		return
	}
	_, err := e.db.ExecContext(ctx, upsert,
		req.ID.Hex(),
		req.Number,
		req.StaffName,
		req.StaffID,
		req.Department,
		req.Supervisor,
		req.Purpose,
		string(req.Urgency),
		string(req.Status),
		req.ItemCount(),
		req.SupervisorComments,
		req.AdminComments,
		req.RequestDate,
		req.UpdatedAt,
	)
	if err != nil {
		e.logger.Error("failed to export requisition decision",
			zap.String("requisition", req.Number),
			zap.Error(err))
		return
	}
	e.logger.Debug("requisition decision exported", zap.String("requisition", req.Number))
}

// Backfill re-exports every terminal requisition. Run from the nightly
// job to repair rows missed while the reporting database was down.
func (e *Exporter) Backfill(ctx context.Context, repo requisition.RequisitionRepository) error {
	if e.db == nil {
		return nil
	}

	terminal := []requisition.Status{
		requisition.StatusSupervisorRejected,
		requisition.StatusAdminApproved,
		requisition.StatusAdminRejected,
		requisition.StatusCompleted,
	}
	requisitions, err := repo.FindByStatuses(ctx, terminal)
	if err != nil {
		return err
	}

	for i := range requisitions {
		e.ExportDecision(ctx, &requisitions[i])
	}
	e.logger.Info("reporting backfill complete", zap.Int("requisitions", len(requisitions)))
	return nil
}

func (e *Exporter) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}
