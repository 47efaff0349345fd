package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/log"
	"github.com/Myst1-Dev1/Car-Retal-Api/pkg/core/repo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool is a pool of PostgreSQL connections which are managed by GORM
// and the pgx driver.
type Pool struct {
	db *gorm.DB
}

// slowQuery is the least duration of statements which are logged.
const slowQuery = 200 * time.Millisecond

// NewPool opens a pool for the url connection string and pings the
// DBMS by taking one connection.
func NewPool(ctx context.Context, url string) (*Pool, error) {
	gl := logger.New(slogWriter{}, logger.Config{
		SlowThreshold:             slowQuery,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
	gdb, err := gorm.Open(postgres.Open(url), &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}
	p := &Pool{db: gdb}
	if err := p.Conn(ctx, func(context.Context, repo.Conn) error {
		return nil
	}); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("testing connection: %w", err)
	}
	return p, nil
}

type ConnHandler = repo.ConnHandler

// Conn pins one connection for the duration of the f call.
func (p *Pool) Conn(ctx context.Context, f ConnHandler) error {
	return p.db.WithContext(ctx).Connection(func(gdb *gorm.DB) error {
		return f(ctx, &Conn{session{gdb}})
	})
}

func (p *Pool) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// slogWriter forwards the GORM slow query and error logs to slog.
type slogWriter struct{}

func (slogWriter) Printf(format string, args ...any) {
	log.Warn(context.Background(), "gorm",
		slog.String("detail", fmt.Sprintf(format, args...)),
	)
}
