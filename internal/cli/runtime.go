package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/endocare/internal/config"
	"github.com/terraincognita07/endocare/internal/db"
	"github.com/terraincognita07/endocare/internal/inference"
	"github.com/terraincognita07/endocare/internal/logging"
	"github.com/terraincognita07/endocare/internal/mongostore"
	"github.com/terraincognita07/endocare/internal/services"
)

type runtime struct {
	cfg       *config.Config
	logger    *logrus.Logger
	logCloser io.Closer
}

// loadRuntime reads config and sets up logging. Commands that print JSON
// pass their stderr so log lines stay out of stdout.
func loadRuntime(opts *RootOptions, stderr io.Writer) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.LogLevel) != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}
	if stderr != nil && strings.TrimSpace(cfg.Log.File) == "" {
		logger.SetOutput(stderr)
	}

	return &runtime{cfg: cfg, logger: logger, logCloser: closer}, nil
}

func (rt *runtime) Close() {
	if rt.logCloser != nil {
		_ = rt.logCloser.Close()
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (services.RecordBackend, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		database, err := db.OpenSQLite(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return db.NewRecordRepository(config.BackendSQLite, database), nil
	case config.BackendMySQL:
		database, err := db.OpenMySQL(cfg.Store.MySQL)
		if err != nil {
			return nil, err
		}
		return db.NewRecordRepository(config.BackendMySQL, database), nil
	case config.BackendMongo:
		return mongostore.Connect(ctx, cfg.Store.Mongo)
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func newRecordStore(cfg *config.Config, backend services.RecordBackend, logger logrus.FieldLogger) (*services.RecordStore, error) {
	policy, err := services.ParseReadFailurePolicy(cfg.Store.OnReadFailure)
	if err != nil {
		return nil, err
	}
	return services.NewRecordStore(backend,
		services.WithReadFailurePolicy(policy),
		services.WithStoreLogger(logger),
	), nil
}

func loadPredictor(ctx context.Context, cfg *config.Config) (*inference.Predictor, error) {
	source, err := inference.NewArtifactSource(cfg.Model.Path, cfg.Model.ObjectStore)
	if err != nil {
		return nil, err
	}
	return inference.LoadPredictor(ctx, source)
}
