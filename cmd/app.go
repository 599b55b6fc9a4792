package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/auth"
	authPostgres "github.com/frahmantamala/safety-management/internal/auth/postgres"
	"github.com/frahmantamala/safety-management/internal/certificate"
	certificatePostgres "github.com/frahmantamala/safety-management/internal/certificate/postgres"
	"github.com/frahmantamala/safety-management/internal/company"
	companyPostgres "github.com/frahmantamala/safety-management/internal/company/postgres"
	tenantDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/tenant"
	"github.com/frahmantamala/safety-management/internal/core/events"
	"github.com/frahmantamala/safety-management/internal/employee"
	employeePostgres "github.com/frahmantamala/safety-management/internal/employee/postgres"
	"github.com/frahmantamala/safety-management/internal/metrics"
	"github.com/frahmantamala/safety-management/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// App holds the wired services shared by every subcommand.
type App struct {
	Config  *internal.Config
	Logger  *slog.Logger
	SQLX    *sqlx.DB
	Gorm    *gorm.DB
	Bus     *events.EventBus
	Metrics *metrics.Metrics

	Auth         *auth.Service
	Companies    *company.Service
	Employees    *employee.Service
	Certificates *certificate.Service

	forwarder *events.KafkaForwarder
}

func newApp(cfg *internal.Config) (*App, error) {
	lg := logger.L()

	sqlxDB, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlxDB.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	app := &App{
		Config:  cfg,
		Logger:  lg,
		SQLX:    sqlxDB,
		Gorm:    gormDB,
		Bus:     events.NewEventBus(lg),
		Metrics: metrics.New(prometheus.NewRegistry()),
	}

	if k := cfg.Events.Kafka; k.Enabled {
		app.forwarder = events.NewKafkaForwarder(events.NewKafkaWriter(k.Brokers, k.Topic), lg, k.MaxRetries, k.Timeout)
		app.forwarder.Register(app.Bus)
		lg.Info("forwarding certificate events to kafka", "brokers", k.Brokers, "topic", k.Topic)
	}

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	app.Auth = auth.NewService(authPostgres.NewRepository(gormDB), tokens, lg)
	app.Companies = company.NewService(companyPostgres.NewCompanyRepository(sqlxDB), lg)
	app.Employees = employee.NewService(employeePostgres.NewEmployeeRepository(gormDB), app.Companies, lg)
	app.Certificates = certificate.NewService(
		certificatePostgres.NewCertificateRepository(gormDB),
		app.Employees,
		app.Companies,
		app.Bus,
		app.Metrics,
		cfg.Compliance.Thresholds(),
		lg,
	)

	return app, nil
}

// Close waits for in-flight event handlers before releasing connections.
func (a *App) Close() {
	a.Bus.Wait()
	if a.forwarder != nil {
		if err := a.forwarder.Close(); err != nil {
			a.Logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := a.SQLX.Close(); err != nil {
		a.Logger.Error("database close error", "error", err)
	}
}

// ActiveTenantIDs lists tenants in id order.
func (a *App) ActiveTenantIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := a.Gorm.WithContext(ctx).
		Model(&tenantDatamodel.Tenant{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
