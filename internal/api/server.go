// Package api is the HTTP surface: gin handlers over the DTO pipeline.
// Handlers never reach into adapters directly; every response goes through
// the DTO facade so single and combined views behave identically.
package api

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mop/internal/cache"
	"mop/internal/dto"
	"mop/internal/entity"
	"mop/internal/inherit"
	"mop/internal/modelcfg"
	"mop/internal/reference"
)

// Backend is the record store the handlers write through. Both the in-memory
// and the Postgres store satisfy it.
type Backend interface {
	Get(ctx context.Context, t entity.Type, id int64) (*entity.Entity, error)
	List(ctx context.Context, t entity.Type) ([]*entity.Entity, error)
	Create(ctx context.Context, t entity.Type, e *entity.Entity) (*entity.Entity, error)
	Update(ctx context.Context, t entity.Type, id int64, e *entity.Entity, expectedVersion int64) (*entity.Entity, error)
	Delete(ctx context.Context, t entity.Type, id int64) error
	Functions(t entity.Type) modelcfg.Functions
}

// restorer is the optional soft-delete undo, in-memory backend only.
type restorer interface {
	Restore(ctx context.Context, t entity.Type, id int64) (*entity.Entity, error)
}

// versioner exposes optimistic-lock versions for ETag headers.
type versioner interface {
	Version(t entity.Type, id int64) (int64, bool)
}

type Server struct {
	mu       sync.RWMutex
	reg      *modelcfg.Registry
	builder  *dto.Builder
	backend  Backend
	cacheSvc *cache.Service
	coords   map[entity.Type]*inherit.Coordinator
	catalogs map[string]reference.Catalog
	log      *zap.Logger
}

func NewServer(reg *modelcfg.Registry, backend Backend, cacheSvc *cache.Service, catalogs map[string]reference.Catalog, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		reg:      reg,
		builder:  dto.NewBuilder(reg),
		backend:  backend,
		cacheSvc: cacheSvc,
		catalogs: catalogs,
		log:      log,
	}
	s.coords = make(map[entity.Type]*inherit.Coordinator, 4)
	for _, t := range entity.SupportedTypes() {
		var getKrav modelcfg.GetByIDFunc
		if entity.IsTiltakFamily(t) {
			target := entity.TypeKrav
			if t == entity.TypeProsjektTiltak {
				target = entity.TypeProsjektKrav
			}
			getKrav = func(target entity.Type) modelcfg.GetByIDFunc {
				return func(ctx context.Context, id int64) (any, error) {
					return backend.Get(ctx, target, id)
				}
			}(target)
		}
		getParent := func(t entity.Type) modelcfg.GetByIDFunc {
			return func(ctx context.Context, id int64) (any, error) {
				return backend.Get(ctx, t, id)
			}
		}(t)
		s.coords[t] = inherit.NewCoordinator(t, getParent, getKrav, 30*time.Second)
	}
	return s
}

// dtoFor resolves the DTO for a raw entity-type path segment.
func (s *Server) dtoFor(entityType string) (dto.DTO, error) {
	s.mu.RLock()
	b := s.builder
	s.mu.RUnlock()
	return b.For(entityType)
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.requestLog(), gin.Recovery())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/meta", s.metaList)
		apiGroup.GET("/meta/:entityType", s.metaEntity)
		apiGroup.GET("/catalogs/:name", s.catalog)
		apiGroup.POST("/admin/reload", s.adminReload)

		apiGroup.GET("/:entityType", s.list)
		apiGroup.GET("/:entityType/grouped", s.grouped)
		apiGroup.GET("/:entityType/filters", s.availableFilters)
		apiGroup.POST("/:entityType/inheritance", s.inheritancePreview)
		apiGroup.POST("/:entityType", s.create)
		apiGroup.GET("/:entityType/:id", s.getOne)
		apiGroup.PUT("/:entityType/:id", s.update)
		apiGroup.DELETE("/:entityType/:id", s.remove)
		apiGroup.POST("/:entityType/:id/restore", s.restore)
	}
	return r
}

func (s *Server) Run(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return s.Router().Run(addr)
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
