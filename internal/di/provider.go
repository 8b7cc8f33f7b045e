package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/LeJamon/goEscrowd/internal/config"
	"github.com/LeJamon/goEscrowd/internal/core/ledger/state"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	_ "github.com/LeJamon/goEscrowd/internal/core/tx/all"
	"github.com/LeJamon/goEscrowd/internal/core/tx/escrow"
	"github.com/LeJamon/goEscrowd/internal/metrics"
	"github.com/LeJamon/goEscrowd/internal/rpc"
	"github.com/LeJamon/goEscrowd/internal/storage/database"
	"github.com/LeJamon/goEscrowd/internal/storage/database/backends"
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb"
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb/postgres"
	"github.com/LeJamon/goEscrowd/internal/storage/relationaldb/sqlite"
)

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
	version   string
	startTime time.Time
}

// NewProvider creates a new service provider.
func NewProvider(container *Container, cfg *config.Config, version string) *Provider {
	return &Provider{
		container: container,
		config:    cfg,
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterAll registers all services.
func (p *Provider) RegisterAll() error {
	if p.config == nil {
		return errors.New("provider needs a configuration")
	}
	p.container.Register(ServiceConfig, p.config)

	p.registerStorageBuilders()
	p.registerEngineBuilders()
	p.registerRPCBuilders()
	return nil
}

// registerStorageBuilders registers the state store and the journal.
func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceStateDB, func(c *Container) (interface{}, error) {
		cfg := p.config.NodeDB
		db, err := backends.Open(backends.Config{
			Type:      cfg.Type,
			Path:      p.config.ResolvePath(cfg.Path),
			CacheSize: cfg.CacheSize,
		})
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"type": cfg.Type, "path": cfg.Path}).Info("Opened node database")
		return db, nil
	})

	p.container.RegisterBuilder(ServiceStore, func(c *Container) (interface{}, error) {
		db, err := c.Get(ServiceStateDB)
		if err != nil {
			return nil, err
		}
		return state.New(db.(database.DB), p.config.NodeDB.CacheEntries)
	})

	// A disabled journal resolves to a nil instance
	p.container.RegisterBuilder(ServiceJournal, func(c *Container) (interface{}, error) {
		if !p.config.Journal.Enabled() {
			return nil, nil
		}
		journal := p.newJournal()
		ctx, cancel := context.WithTimeout(context.Background(), p.config.Journal.Timeout())
		defer cancel()
		if err := journal.Open(ctx); err != nil {
			return nil, err
		}
		log.WithField("driver", p.config.Journal.Driver).Info("Opened transaction journal")
		return journal, nil
	})
}

func (p *Provider) newJournal() relationaldb.Journal {
	jc := p.config.Journal
	if jc.Driver == relationaldb.DriverSQLite {
		cfg := relationaldb.SQLiteConfig(p.config.ResolvePath(jc.Path))
		cfg.ConnectionString = jc.ConnectionString
		cfg.DefaultTimeout = jc.Timeout()
		return sqlite.New(cfg)
	}

	cfg := relationaldb.NewConfig()
	cfg.ConnectionString = jc.ConnectionString
	if jc.Host != "" {
		cfg.Host = jc.Host
	}
	if jc.Port != 0 {
		cfg.Port = jc.Port
	}
	if jc.Database != "" {
		cfg.Database = jc.Database
	}
	if jc.Username != "" {
		cfg.Username = jc.Username
	}
	cfg.Password = jc.Password
	if jc.SSLMode != "" {
		cfg.SSLMode = jc.SSLMode
	}
	if jc.MaxOpenConns > 0 {
		cfg.MaxOpenConns = jc.MaxOpenConns
	}
	cfg.DefaultTimeout = jc.Timeout()
	return postgres.New(cfg)
}

// registerEngineBuilders registers the engine and its listeners.
func (p *Provider) registerEngineBuilders() {
	p.container.RegisterBuilder(ServiceMetrics, func(c *Container) (interface{}, error) {
		return metrics.New(), nil
	})

	p.container.RegisterBuilder(ServiceEngine, func(c *Container) (interface{}, error) {
		store, err := p.Store()
		if err != nil {
			return nil, err
		}
		m, err := p.Metrics()
		if err != nil {
			return nil, err
		}

		engine := tx.NewEngine(store, tx.EngineConfig{
			SkipSignatureVerification: p.config.Engine.SkipSignatureVerification,
		})
		if p.config.Engine.SkipSignatureVerification {
			log.Warn("Signature verification is disabled")
		}

		var open int
		if err := engine.Read(func(view tx.LedgerView) error {
			open, err = escrow.CountOffers(view)
			return err
		}); err != nil {
			return nil, fmt.Errorf("counting open offers: %w", err)
		}
		m.SetOpenOffers(open)
		engine.AddListener(m)

		recorder, err := p.Recorder()
		if err != nil {
			return nil, err
		}
		if recorder != nil {
			engine.AddListener(recorder)
		}
		return engine, nil
	})

	p.container.RegisterBuilder(ServiceRecorder, func(c *Container) (interface{}, error) {
		journal, err := p.Journal()
		if err != nil || journal == nil {
			return nil, err
		}
		return relationaldb.NewRecorder(journal, relationaldb.DefaultRecorderBuffer, p.config.Journal.Timeout()), nil
	})
}

// registerRPCBuilders registers the HTTP and websocket servers.
func (p *Provider) registerRPCBuilders() {
	p.container.RegisterBuilder(ServiceRPCServer, func(c *Container) (interface{}, error) {
		services, err := p.serviceContainer()
		if err != nil {
			return nil, err
		}
		return rpc.NewServer(services, p.config.Server.Timeout()), nil
	})

	p.container.RegisterBuilder(ServiceWSServer, func(c *Container) (interface{}, error) {
		server, err := p.RPCServer()
		if err != nil {
			return nil, err
		}
		services, err := p.serviceContainer()
		if err != nil {
			return nil, err
		}
		m, err := p.Metrics()
		if err != nil {
			return nil, err
		}
		ws := rpc.NewWebSocketServer(server.Registry(), services, p.config.Server.Timeout(), p.config.Server.MaxWSClients, m)
		services.Engine.AddListener(ws)
		return ws, nil
	})
}

func (p *Provider) serviceContainer() (*rpc.ServiceContainer, error) {
	engine, err := p.Engine()
	if err != nil {
		return nil, err
	}
	store, err := p.Store()
	if err != nil {
		return nil, err
	}
	journal, err := p.Journal()
	if err != nil {
		return nil, err
	}
	services := &rpc.ServiceContainer{
		Engine:     engine,
		Cache:      store,
		Version:    p.version,
		NodeDBType: p.config.NodeDB.Type,
		StartTime:  p.startTime,
	}
	if journal != nil {
		services.Journal = journal
	}
	return services, nil
}

// Store returns the ledger state store.
func (p *Provider) Store() (*state.Store, error) {
	svc, err := p.container.Get(ServiceStore)
	if err != nil {
		return nil, err
	}
	return svc.(*state.Store), nil
}

// Engine returns the transaction engine.
func (p *Provider) Engine() (*tx.Engine, error) {
	svc, err := p.container.Get(ServiceEngine)
	if err != nil {
		return nil, err
	}
	return svc.(*tx.Engine), nil
}

// Journal returns the transaction journal, or nil when it is disabled.
func (p *Provider) Journal() (relationaldb.Journal, error) {
	svc, err := p.container.Get(ServiceJournal)
	if err != nil || svc == nil {
		return nil, err
	}
	return svc.(relationaldb.Journal), nil
}

// Recorder returns the journal recorder, or nil when the journal is disabled.
func (p *Provider) Recorder() (*relationaldb.Recorder, error) {
	svc, err := p.container.Get(ServiceRecorder)
	if err != nil || svc == nil {
		return nil, err
	}
	return svc.(*relationaldb.Recorder), nil
}

// Metrics returns the prometheus collectors.
func (p *Provider) Metrics() (*metrics.Metrics, error) {
	svc, err := p.container.Get(ServiceMetrics)
	if err != nil {
		return nil, err
	}
	return svc.(*metrics.Metrics), nil
}

// RPCServer returns the JSON-RPC handler.
func (p *Provider) RPCServer() (*rpc.Server, error) {
	svc, err := p.container.Get(ServiceRPCServer)
	if err != nil {
		return nil, err
	}
	return svc.(*rpc.Server), nil
}

// WebSocketServer returns the websocket handler.
func (p *Provider) WebSocketServer() (*rpc.WebSocketServer, error) {
	svc, err := p.container.Get(ServiceWSServer)
	if err != nil {
		return nil, err
	}
	return svc.(*rpc.WebSocketServer), nil
}

// GetConfig returns the configuration from the container.
func (p *Provider) GetConfig() *config.Config {
	return p.config
}

// Close shuts down every service that was built, consumers first.
func (p *Provider) Close(ctx context.Context) error {
	var errs []error
	if p.container.Built(ServiceWSServer) {
		ws, _ := p.WebSocketServer()
		ws.Close()
	}
	if p.container.Built(ServiceRecorder) {
		if recorder, _ := p.Recorder(); recorder != nil {
			if err := recorder.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("draining journal: %w", err))
			}
		}
	}
	if p.container.Built(ServiceJournal) {
		if journal, _ := p.Journal(); journal != nil {
			if err := journal.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("closing journal: %w", err))
			}
		}
	}
	if p.container.Built(ServiceStore) {
		store, _ := p.Store()
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing state store: %w", err))
		}
	} else if p.container.Built(ServiceStateDB) {
		db, _ := p.container.Get(ServiceStateDB)
		if err := db.(database.DB).Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing node database: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("closing services: %v", errs)
	}
	return nil
}
