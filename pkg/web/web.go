package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/germanamz/playground/pkg/catalog"
	"github.com/germanamz/playground/pkg/engine"
	"github.com/germanamz/playground/pkg/modeladapter/usage"
	"github.com/germanamz/playground/pkg/prompts"
)

// Backend is the part of engine.Engine the handlers need.
type Backend interface {
	AvailableModels() []catalog.ModelDescriptor
	Prompts() *prompts.Store
	Generate(ctx context.Context, req engine.GenerationRequest) engine.GenerationResult
	Usage(p catalog.Provider) (usage.TokenCount, int)
}

var _ Backend = (*engine.Engine)(nil)

// Options configures the router.
type Options struct {
	Logger         *zap.Logger
	AllowedOrigins []string            // Enables CORS on /api when non-empty.
	Gatherer       prometheus.Gatherer // Serves /metrics when non-nil.
}

// New builds the gin router serving the playground.
func New(b Backend, opts Options) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}

	g := gin.New()
	g.Use(requestLogger(log), gin.Recovery())
	g.SetHTMLTemplate(tmpl)

	attachRoutes(g, b, log, opts)

	return g, nil
}

func attachRoutes(r *gin.Engine, b Backend, log *zap.Logger, opts Options) {
	pageH := NewPlayground(b, log)
	apiH := NewAPI(b)

	r.GET("/", pageH.Show)
	r.POST("/generate", pageH.Generate)

	api := r.Group("/api")
	if len(opts.AllowedOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
		}))
	}
	{
		api.GET("/models", apiH.Models)
		api.GET("/templates", apiH.Templates)
		api.POST("/generate", apiH.Generate)
		api.GET("/usage", apiH.Usage)
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "models": len(b.AvailableModels())})
	})

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
