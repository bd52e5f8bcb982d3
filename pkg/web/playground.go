package web

import (
	"html/template"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/germanamz/playground/pkg/catalog"
	"github.com/germanamz/playground/pkg/engine"
	"github.com/germanamz/playground/pkg/prompts"
)

// NoModelsMessage is shown when no provider has an API key.
const NoModelsMessage = "No AI models available. Please check your API keys in the .env file."

// varPrefix prefixes the form field of each template placeholder.
const varPrefix = "var_"

// Playground serves the HTML form.
type Playground struct {
	backend  Backend
	log      *zap.Logger
	markdown *markdownRenderer
}

// NewPlayground creates the HTML handlers.
func NewPlayground(b Backend, log *zap.Logger) *Playground {
	return &Playground{backend: b, log: log, markdown: newMarkdownRenderer()}
}

type field struct {
	Name  string
	Input string
	Value string
}

type pageData struct {
	Fatal string

	Providers []catalog.Provider
	Provider  catalog.Provider
	Models    []catalog.ModelDescriptor
	Model     catalog.ModelDescriptor
	Templates []prompts.Template
	Template  prompts.Template
	Fields    []field

	Prompt      string
	RenderError string
	Result      *engine.GenerationResult
	Preview     template.HTML
}

// selection resolves the requested provider, model and template against what
// is available, falling back to the first entry of each list.
func (h *Playground) selection(provider, model, tmpl string, value func(string) string) pageData {
	models := h.backend.AvailableModels()
	if len(models) == 0 {
		return pageData{Fatal: NoModelsMessage}
	}

	d := pageData{Providers: catalog.ProvidersOf(models)}

	d.Provider = d.Providers[0]
	if p := catalog.Provider(provider); slices.Contains(d.Providers, p) {
		d.Provider = p
	}

	d.Models = catalog.ByProvider(models, d.Provider)
	d.Model = d.Models[0]
	if i := slices.IndexFunc(d.Models, func(m catalog.ModelDescriptor) bool { return m.ID == model }); i >= 0 {
		d.Model = d.Models[i]
	}

	d.Templates = h.backend.Prompts().List()
	if len(d.Templates) > 0 {
		d.Template = d.Templates[0]
	}
	if t, err := h.backend.Prompts().Get(tmpl); err == nil {
		d.Template = t
	}

	for _, name := range d.Template.Placeholders() {
		d.Fields = append(d.Fields, field{
			Name:  name,
			Input: varPrefix + name,
			Value: value(varPrefix + name),
		})
	}

	return d
}

// submittedVariables collects the posted value of each placeholder of t.
// Fields absent from the form are left out so rendering reports them.
func submittedVariables(c *gin.Context, t prompts.Template) map[string]string {
	vars := make(map[string]string)
	for _, name := range t.Placeholders() {
		if v, ok := c.GetPostForm(varPrefix + name); ok {
			vars[name] = v
		}
	}
	return vars
}

// Show renders the form for the choices given in the query string.
func (h *Playground) Show(c *gin.Context) {
	d := h.selection(c.Query("provider"), c.Query("model"), c.Query("template"), c.Query)
	c.HTML(http.StatusOK, "index.html", d)
}

func (h *Playground) render(c *gin.Context) (string, error) {
	t, err := h.backend.Prompts().Get(c.PostForm("template"))
	if err != nil {
		return "", err
	}
	return t.Render(submittedVariables(c, t))
}

// Generate renders the chosen template with the submitted variables and sends
// the prompt to the chosen model.
func (h *Playground) Generate(c *gin.Context) {
	d := h.selection(c.PostForm("provider"), c.PostForm("model"), c.PostForm("template"), c.PostForm)
	if d.Fatal != "" {
		c.HTML(http.StatusOK, "index.html", d)
		return
	}

	prompt, err := h.render(c)
	if err != nil {
		d.RenderError = "Error: " + err.Error()
		c.HTML(http.StatusOK, "index.html", d)
		return
	}
	d.Prompt = prompt

	res := h.backend.Generate(c.Request.Context(), engine.GenerationRequest{
		ModelID: d.Model.ID,
		Prompt:  prompt,
	})
	d.Result = &res
	if res.OK() {
		d.Preview = h.markdown.Render(res.Text)
	} else {
		h.log.Warn("generation failed",
			zap.String("request_id", res.RequestID),
			zap.String("model", res.ModelID),
			zap.Error(res.Err),
		)
	}

	c.HTML(http.StatusOK, "index.html", d)
}
