package dataset

import (
	"context"
	"fmt"

	"github.com/proptalk/proptalk/internal/config"
)

// Load reads the inventory from whichever source the configuration names.
func Load(ctx context.Context, cfg *config.Config) (*Table, error) {
	switch cfg.Dataset.Source {
	case "xlsx":
		return LoadXLSX(cfg.Dataset.Path)
	case "csv":
		return LoadCSV(cfg.Dataset.Path)
	case "postgres":
		return LoadPostgres(
			ctx,
			cfg.GetPostgreSQLDSN(),
			cfg.Dataset.Table,
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
	default:
		return nil, fmt.Errorf("unknown dataset source: %q", cfg.Dataset.Source)
	}
}
