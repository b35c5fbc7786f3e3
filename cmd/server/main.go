package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"mop/internal/api"
	"mop/internal/cache"
	"mop/internal/config"
	"mop/internal/entity"
	"mop/internal/modelcfg"
	"mop/internal/pg"
	"mop/internal/reference"
	"mop/internal/store"
)

func main() {
	cfg := config.Load()

	var log *zap.Logger
	var err error
	if cfg.Debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	catalogs, err := reference.LoadCatalogs(cfg.CatalogsDir)
	if err != nil {
		log.Warn("reference catalogs not loaded", zap.String("dir", cfg.CatalogsDir), zap.Error(err))
		catalogs = map[string]reference.Catalog{}
	}
	log.Info("reference catalogs loaded", zap.Int("count", len(catalogs)))

	reg := modelcfg.NewRegistry()
	if cfg.ModelsDir != "" {
		if err := reg.LoadOverlay(cfg.ModelsDir); err != nil {
			log.Fatal("model config overlay failed", zap.String("dir", cfg.ModelsDir), zap.Error(err))
		}
	}
	if issues := reg.Lint(); len(issues) > 0 {
		for _, it := range issues {
			log.Error("model config issue",
				zap.String("entityType", it.EntityType),
				zap.String("field", it.Field),
				zap.String("code", it.Code),
				zap.String("message", it.Message))
		}
		log.Fatal("model config has blocking issues")
	}

	var backend api.Backend
	if cfg.DBURL != "" {
		ctx := context.Background()
		db, err := pg.Open(ctx, cfg.DBURL)
		if err != nil {
			log.Fatal("postgres connect failed", zap.Error(err))
		}
		defer db.Close()
		if cfg.AutoMigrate {
			if err := pg.ApplyDDL(ctx, db, pg.GenerateDDL(), log); err != nil {
				log.Fatal("auto-migrate failed", zap.Error(err))
			}
		}
		backend = pg.NewStore(db, catalogs, log)
		log.Info("postgres backend ready")
	} else {
		backend = store.New(catalogs)
		log.Info("in-memory backend ready")
	}

	for _, t := range entity.SupportedTypes() {
		if err := reg.BindFunctions(t, backend.Functions(t)); err != nil {
			log.Fatal("binding data functions failed", zap.String("entityType", string(t)), zap.Error(err))
		}
	}

	cacheSvc := cache.NewService(nil, log)
	srv := api.NewServer(reg, backend, cacheSvc, catalogs, log)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
