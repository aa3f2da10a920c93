package app

import (
	"context"
	"fmt"

	"print-pricing/internal/artifact"
	"print-pricing/internal/catalog"
	"print-pricing/internal/config"
	"print-pricing/internal/database"
	"print-pricing/internal/logger"
	"print-pricing/internal/services/crawler"
	"print-pricing/internal/services/notify"
	"print-pricing/internal/services/printpac"
	"print-pricing/internal/services/registrar"
	"print-pricing/internal/warehouse"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Bootstrap loads .env and the environment, builds the logger and validates
// the configuration and the static catalog tables.
func Bootstrap() (*config.Config, *logger.Logger, error) {
	envErr := godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if envErr != nil {
		log.Debug("No .env file found")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, nil, fmt.Errorf("catalog tables are inconsistent: %w", err)
	}
	return cfg, log, nil
}

// Services are the long-lived dependencies shared by the server and the CLIs.
type Services struct {
	Store     artifact.Store
	Warehouse warehouse.Warehouse
	DB        *gorm.DB // nil on the bigquery warehouse
	Crawler   *crawler.Crawler
	Registrar *registrar.Registrar
}

// NewCrawlServices wires only what a crawl needs.
func NewCrawlServices(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	store, err := artifact.NewStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}
	client := printpac.NewClient(cfg.VendorBaseURL, cfg.HTTPTimeout)
	return &Services{
		Store:   store,
		Crawler: crawler.New(cfg, log, client, client, store),
	}, nil
}

// NewServices wires the crawler, the warehouse and the registrar.
func NewServices(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	s, err := NewCrawlServices(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	switch cfg.WarehouseDriver {
	case config.DriverBigQuery:
		s.Warehouse, err = warehouse.New(ctx, cfg, log)
	default:
		s.DB, err = database.Initialize(cfg.WarehouseDriver, cfg.DatabaseURL, log)
		if err == nil {
			var wh *warehouse.SQLWarehouse
			if wh, err = warehouse.NewSQL(s.DB); err == nil {
				s.Warehouse = wh
			}
		}
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	s.Registrar = registrar.New(cfg, s.Warehouse, notify.New(cfg, log), log)
	return s, nil
}

func (s *Services) Close() {
	if s.Warehouse != nil {
		s.Warehouse.Close()
	}
	if s.DB != nil {
		database.Close(s.DB)
	}
	if s.Store != nil {
		s.Store.Close()
	}
}
