package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ApplyDDL executes the fragments in key order. The DDL is idempotent, but
// "add constraint" has no if-not-exists, so duplicate_object (42710) is
// skipped instead of failing a restart.
func ApplyDDL(ctx context.Context, db *sql.DB, ddl map[string]string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	keys := make([]string, 0, len(ddl))
	for k := range ddl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	for _, k := range keys {
		sqlText := strings.TrimSpace(ddl[k])
		if sqlText == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, sqlText); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "42710" {
				log.Debug("DDL skipped, object exists",
					zap.String("fragment", k),
					zap.String("constraint", pgErr.ConstraintName))
				continue
			}
			if e := strings.ToLower(err.Error()); strings.Contains(e, "already exists") || strings.Contains(e, "duplicate") {
				log.Debug("DDL skipped, object exists", zap.String("fragment", k), zap.Error(err))
				continue
			}
			return fmt.Errorf("DDL apply failed: %w", err)
		}
	}
	return nil
}
