package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nlquery/mysql-ai/internal/config"
	"github.com/nlquery/mysql-ai/internal/llm"
	"github.com/nlquery/mysql-ai/internal/logging"
	"github.com/nlquery/mysql-ai/internal/mysql"
	"github.com/nlquery/mysql-ai/internal/pipeline"
	"github.com/nlquery/mysql-ai/internal/tui"
)

var appVersion = "dev"

// SetVersion sets the application version
func SetVersion(v string) {
	appVersion = v
}

// Connection and generator flags, shared by all commands. Flags given on the
// command line win over the config file and environment.
var (
	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagDatabase string
	flagEndpoint string
	flagModel    string
	flagTemplate string
	flagTopK     string
	flagDebug    bool
)

// rootCmd starts the interactive session.
var rootCmd = &cobra.Command{
	Use:   "mysql-ai",
	Short: "Natural language interface to MySQL databases",
	Long: `mysql-ai answers plain-language questions about a MySQL database.

Each question is turned into a single SQL statement by a locally hosted
model, executed against the configured database, and shown together with
the generated SQL. Configuration lives in ~/.config/mysql-ai/config.json
and can be overridden per run with flags or MYSQL_AI_* environment
variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// Session logs go to a file: stderr belongs to the terminal UI.
		var logWriter io.Writer
		if cfg.Debug {
			f, err := logging.SessionLogFile()
			if err != nil {
				return err
			}
			defer f.Close()
			logWriter = f
		}
		logger := logging.New(logWriter, cfg.Debug)

		sess, err := openSession(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer sess.Close()

		return tui.RunApp(sess.pipeline, sess.client.Model(), cfg, logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagHost, "host", "", "MySQL host")
	pf.IntVar(&flagPort, "port", 0, "MySQL port")
	pf.StringVar(&flagUser, "user", "", "MySQL user")
	pf.StringVar(&flagPassword, "password", "", "MySQL password")
	pf.StringVar(&flagDatabase, "database", "", "MySQL database name")
	pf.StringVar(&flagEndpoint, "endpoint", "", "generator endpoint URL")
	pf.StringVar(&flagModel, "model", "", "generator model name")
	pf.StringVar(&flagTemplate, "template", "", "prompt template (standard or expert)")
	pf.StringVar(&flagTopK, "top-k", "", "row-limit hint substituted into the prompt")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, applies flag overrides
// and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.MySQL.Host = flagHost
	}
	if flags.Changed("port") {
		cfg.MySQL.Port = flagPort
	}
	if flags.Changed("user") {
		cfg.MySQL.User = flagUser
	}
	if flags.Changed("password") {
		cfg.MySQL.Password = flagPassword
	}
	if flags.Changed("database") {
		cfg.MySQL.Database = flagDatabase
	}
	if flags.Changed("endpoint") {
		cfg.Generator.Endpoint = flagEndpoint
	}
	if flags.Changed("model") {
		cfg.Generator.Model = flagModel
	}
	if flags.Changed("template") {
		cfg.Template = flagTemplate
	}
	if flags.Changed("top-k") {
		cfg.TopK = flagTopK
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session bundles the long-lived resources behind one run: the connection
// pool, the generator client and the question pipeline over both.
type session struct {
	db       *sql.DB
	client   *llm.Client
	pipeline *pipeline.Pipeline
}

// openSession connects to MySQL and builds the question pipeline. The
// generator is not probed here: a dead generator fails individual questions,
// not the session.
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session, error) {
	params := connParams(cfg)

	db, err := mysql.Connect(params)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to MySQL at %s: %w", params.Addr(), err)
	}

	client, err := llm.NewClient(llm.Config{
		Endpoint: cfg.Generator.Endpoint,
		APIKey:   cfg.Generator.APIKey,
		Model:    cfg.Generator.Model,
		Timeout:  cfg.Generator.Timeout(),
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	pipe, err := pipeline.New(ctx, mysql.NewCatalog(db), client, mysql.NewExecutor(db), pipeline.Options{
		TemplateID: cfg.Template,
		TopK:       cfg.TopK,
		Logger:     logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("session ready",
		"database", cfg.MySQL.Database,
		"tables", len(pipe.Tables()),
		"model", client.Model(),
	)

	return &session{db: db, client: client, pipeline: pipe}, nil
}

func (s *session) Close() {
	_ = s.db.Close()
}

func connParams(cfg *config.Config) mysql.Params {
	return mysql.Params{
		Host:     cfg.MySQL.Host,
		Port:     cfg.MySQL.Port,
		User:     cfg.MySQL.User,
		Password: cfg.MySQL.Password,
		Database: cfg.MySQL.Database,
	}
}
