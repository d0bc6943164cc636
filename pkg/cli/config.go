package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/soulthread/memoria/pkg/adapter"
	"github.com/soulthread/memoria/pkg/auth"
	"github.com/soulthread/memoria/pkg/embedding"
	"github.com/soulthread/memoria/pkg/policy"
	"github.com/soulthread/memoria/pkg/repository"
	"github.com/soulthread/memoria/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	embedderSimulated = "simulated"
	embedderGemini    = "gemini"
)

// config holds configuration values
type config struct {
	// Repository
	project  string
	database string

	// Logging
	logLevel  string
	logFormat string

	// Authentication
	partnersFile string
	policyDir    string

	// Embeddings
	embedder       string
	geminiProject  string
	geminiLocation string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("MEMORIA_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       logging.FormatConsole,
			Sources:     cli.EnvVars("MEMORIA_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
	}
}

// authFlags returns flags for partner authentication
func authFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "partners-file",
			Usage:       "YAML file of partners keyed by API key, used instead of the partnerAuth collection",
			Sources:     cli.EnvVars("MEMORIA_PARTNERS_FILE"),
			Destination: &cfg.partnersFile,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego files replacing the built-in tier permission policy",
			Sources:     cli.EnvVars("MEMORIA_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
	}
}

// embeddingFlags returns flags selecting the embedding source
func embeddingFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "embedder",
			Usage:       "Embedding source (simulated, gemini)",
			Value:       embedderSimulated,
			Sources:     cli.EnvVars("MEMORIA_EMBEDDER"),
			Destination: &cfg.embedder,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// setupLogger installs the configured logger as default and in ctx
func (cfg *config) setupLogger(ctx context.Context) (context.Context, error) {
	logger, err := logging.NewWithFormat(cfg.logFormat, cfg.logLevel, os.Stderr)
	if err != nil {
		return ctx, err
	}
	logging.SetDefault(logger)
	return logging.With(ctx, logger), nil
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (*repository.Firestore, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newRegistry returns the partner registry: the partners file when given,
// otherwise the document store
func (cfg *config) newRegistry(repo auth.Registry) (auth.Registry, error) {
	if cfg.partnersFile == "" {
		return repo, nil
	}

	registry, err := auth.LoadFile(cfg.partnersFile)
	if err != nil {
		return nil, err
	}
	logging.Default().Info("partners loaded from file",
		"path", cfg.partnersFile,
		"count", len(registry.Partners()))
	return registry, nil
}

// newPolicy creates the tier permission policy
func (cfg *config) newPolicy(ctx context.Context) (*policy.Permissions, error) {
	if cfg.policyDir == "" {
		return policy.New(ctx)
	}
	return policy.Load(ctx, cfg.policyDir)
}

// newEmbedder creates the configured embedding source
func (cfg *config) newEmbedder(ctx context.Context) (embedding.Embedder, error) {
	switch cfg.embedder {
	case "", embedderSimulated:
		return embedding.NewSimulated(), nil
	case embedderGemini:
		gemini, err := cfg.newGemini(ctx)
		if err != nil {
			return nil, err
		}
		return embedding.NewGemini(gemini), nil
	default:
		return nil, goerr.New("unsupported embedder",
			goerr.V("embedder", cfg.embedder),
			goerr.V("supported", []string{embedderSimulated, embedderGemini}))
	}
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
	if err != nil {
		return nil, err
	}
	return gemini, nil
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context, bucketName string) (adapter.Storage, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	storage, err := adapter.NewStorage(ctx, bucketName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newBigQuery creates a new BigQuery adapter instance
func (cfg *config) newBigQuery(ctx context.Context, projectID string) (adapter.BigQuery, error) {
	if projectID == "" {
		projectID = cfg.project
	}
	if projectID == "" {
		return nil, goerr.New("bigquery-project is required")
	}

	bq, err := adapter.NewBigQuery(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create bigquery client")
	}
	return bq, nil
}
