package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/platform/envutil"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/types"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New connects per DB_DRIVER: "postgres" (default) or "sqlite" for
// local single-practice deployments.
func New(baseLog *logger.Logger) (*Service, error) {
	serviceLog := baseLog.With("service", "DBService")
	driver := strings.ToLower(envutil.Str("DB_DRIVER", "postgres"))

	var conn gorm.Dialector
	switch driver {
	case "sqlite":
		path := envutil.Str("SQLITE_PATH", "fisionote.db")
		conn = sqlite.Open(path)
		serviceLog.Info("using sqlite database", "path", path)
	case "postgres":
		conn = postgres.Open(postgresDSN())
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(conn, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return &Service{db: db, log: serviceLog}, nil
}

func postgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		envutil.Str("POSTGRES_USER", "postgres"),
		envutil.Str("POSTGRES_PASSWORD", ""),
		envutil.Str("POSTGRES_HOST", "localhost"),
		envutil.Str("POSTGRES_PORT", "5432"),
		envutil.Str("POSTGRES_NAME", "fisionote"),
		envutil.Str("POSTGRES_SSLMODE", "disable"),
	)
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("running migrations")
	err := s.db.AutoMigrate(
		&types.ClinicalNote{},
		&types.NoteValidationLog{},
		&types.TreatmentChecklistItem{},
		&types.SignatureEvent{},
	)
	if err != nil {
		s.log.Error("migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
