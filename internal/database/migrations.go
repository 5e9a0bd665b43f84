package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes that struct tags cannot express
// cleanly. Existing indexes are skipped, so the pass is safe to rerun.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Due-date sweep and list filters
		{"tasks", "idx_tasks_status_due_date", "status, due_date"},
		{"tasks", "idx_tasks_project_status", "project_id, status"},

		// Pending invitation lookups per (project, recipient)
		{"invitations", "idx_invitations_project_recipient_status", "project_id, recipient_id, status"},

		// Notification inbox ordering
		{"notifications", "idx_notifications_user_created_at", "user_id, created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			slog.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
