package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateRenderer renders the embedded pongo2 pages.
type TemplateRenderer struct {
	templateSet *pongo2.TemplateSet
}

// NewTemplateRenderer loads templates from fsys. A nil fsys uses the
// templates compiled into the binary.
func NewTemplateRenderer(fsys fs.FS) (*TemplateRenderer, error) {
	if fsys == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("template directory not found: %w", err)
		}
		fsys = sub
	}
	return &TemplateRenderer{
		templateSet: pongo2.NewSet("inventory", pongo2.NewFSLoader(fsys)),
	}, nil
}

// HTML renders a template with data. The signed-in user, if any, is added
// to the context as "user".
func (r *TemplateRenderer) HTML(c *gin.Context, code int, name string, data gin.H) {
	ctx := pongo2.Context{}
	for k, v := range data {
		ctx[k] = v
	}
	if u, ok := CurrentUser(c); ok {
		ctx["user"] = u
	}

	tmpl, err := r.templateSet.FromFile(name)
	if err != nil {
		c.String(http.StatusInternalServerError, "Template not found: %s", name)
		return
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		c.String(http.StatusInternalServerError, "Template execution error: %v", err)
		return
	}
	c.Data(code, "text/html; charset=utf-8", []byte(out))
}
