package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nlquery/mysql-ai/internal/llm"
	"github.com/nlquery/mysql-ai/internal/mysql"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the database and generator connections",
	Long:  `Probe the configured MySQL database and generator endpoint and report what answered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		params := connParams(cfg)
		failed := false

		if err := mysql.TestConnection(ctx, params); err != nil {
			failed = true
			fmt.Printf("MySQL:     FAILED (%s/%s): %v\n", params.Addr(), cfg.MySQL.Database, err)
		} else if count, err := countTables(ctx, params); err != nil {
			failed = true
			fmt.Printf("MySQL:     FAILED listing tables in %s: %v\n", cfg.MySQL.Database, err)
		} else {
			fmt.Printf("MySQL:     OK (%s/%s, %d tables)\n", params.Addr(), cfg.MySQL.Database, count)
		}

		client, err := llm.NewClient(llm.Config{
			Endpoint: cfg.Generator.Endpoint,
			APIKey:   cfg.Generator.APIKey,
			Model:    cfg.Generator.Model,
			Timeout:  cfg.Generator.Timeout(),
		})
		if err == nil {
			err = client.Ping(ctx)
		}
		if err != nil {
			failed = true
			fmt.Printf("Generator: FAILED (%s): %v\n", cfg.Generator.Endpoint, err)
		} else {
			fmt.Printf("Generator: OK (%s, model %s)\n", cfg.Generator.Endpoint, client.Model())
		}

		fmt.Printf("History:   %d recorded questions\n", len(cfg.QueryHistory))

		if failed {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}

// countTables opens a short-lived pool just for the catalog probe.
func countTables(ctx context.Context, params mysql.Params) (int, error) {
	db, err := mysql.Connect(params)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tables, err := mysql.NewCatalog(db).ListTables(ctx)
	if err != nil {
		return 0, err
	}
	return len(tables), nil
}
