package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/germanamz/playground/pkg/catalog"
	"github.com/germanamz/playground/pkg/engine"
	"github.com/germanamz/playground/pkg/modeladapter/usage"
	"github.com/germanamz/playground/pkg/prompts"
)

// API serves the JSON endpoints.
type API struct {
	backend Backend
}

// NewAPI creates the JSON handlers.
func NewAPI(b Backend) *API {
	return &API{backend: b}
}

type modelsResponse struct {
	Providers []catalog.Provider        `json:"providers"`
	Models    []catalog.ModelDescriptor `json:"models"`
}

// Models lists the available models and their providers.
func (h *API) Models(c *gin.Context) {
	models := h.backend.AvailableModels()
	if models == nil {
		models = []catalog.ModelDescriptor{}
	}
	providers := catalog.ProvidersOf(models)
	if providers == nil {
		providers = []catalog.Provider{}
	}
	c.JSON(http.StatusOK, modelsResponse{Providers: providers, Models: models})
}

type templateView struct {
	prompts.Template
	Placeholders []string `json:"placeholders"`
}

// Templates lists the prompt templates with their placeholders.
func (h *API) Templates(c *gin.Context) {
	list := h.backend.Prompts().List()
	out := make([]templateView, 0, len(list))
	for _, t := range list {
		ph := t.Placeholders()
		if ph == nil {
			ph = []string{}
		}
		out = append(out, templateView{Template: t, Placeholders: ph})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out})
}

type generateRequest struct {
	Model     string            `json:"model"     binding:"required"`
	Template  string            `json:"template"  binding:"required"`
	Variables map[string]string `json:"variables"`
}

type generateResponse struct {
	RequestID  string            `json:"request_id"`
	Model      string            `json:"model"`
	Provider   catalog.Provider  `json:"provider,omitempty"`
	Prompt     string            `json:"prompt"`
	Response   string            `json:"response"`
	Error      string            `json:"error,omitempty"`
	Truncated  bool              `json:"truncated"`
	Usage      *usage.TokenCount `json:"usage,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

// Generate renders a template and sends it to a model. Template errors are
// client errors; generation errors are reported in the response body the same
// way the HTML page shows them.
func (h *API) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error: " + err.Error()})
		return
	}

	prompt, err := h.backend.Prompts().Render(req.Template, req.Variables)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error: " + err.Error()})
		return
	}

	res := h.backend.Generate(c.Request.Context(), engine.GenerationRequest{
		ModelID: req.Model,
		Prompt:  prompt,
	})

	out := generateResponse{
		RequestID:  res.RequestID,
		Model:      res.ModelID,
		Provider:   res.Provider,
		Prompt:     prompt,
		Response:   res.Text,
		Truncated:  res.Truncated,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	if res.HasUsage {
		out.Usage = &res.Usage
	}

	c.JSON(http.StatusOK, out)
}

type providerUsage struct {
	Provider catalog.Provider `json:"provider"`
	Calls    int              `json:"calls"`
	usage.TokenCount
	TotalTokens int `json:"total_tokens"`
}

// Usage reports the token usage accumulated per provider since startup.
func (h *API) Usage(c *gin.Context) {
	out := make([]providerUsage, 0, len(catalog.Providers))
	for _, p := range catalog.Providers {
		tc, calls := h.backend.Usage(p)
		out = append(out, providerUsage{
			Provider:    p,
			Calls:       calls,
			TokenCount:  tc,
			TotalTokens: tc.Total(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"usage": out})
}
