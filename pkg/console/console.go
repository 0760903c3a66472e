// Package console serves the server-rendered administration pages of the
// joke bot.
package console

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harveywai/jokeadmin/pkg/apiclient"
	"github.com/harveywai/jokeadmin/pkg/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	// dict builds a map from alternating keys and values for sub-templates.
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("dict: odd number of arguments")
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
}

// Server renders the dashboard and the three management pages.
type Server struct {
	client   *apiclient.Client
	sessions *SessionStore
	logger   *zap.Logger
}

// New creates a console server that talks to the bot API through client.
func New(client *apiclient.Client, sessions *SessionStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{client: client, sessions: sessions, logger: logger}
}

// Router builds the gin engine with every console route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(s.logger), middleware.RequestLogger(s.logger))
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"api":      s.client.BaseURL(),
			"sessions": s.sessions.Len(),
		})
	})
	r.GET("/", s.handleDashboard)
	r.GET("/jokes", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/tags")
	})

	pages := r.Group("/", sessionMiddleware(s.sessions))
	triggersPage().register(pages, "/tags")
	jokesPage().register(pages, "/jokes/:triggerId", middleware.IDParam("triggerId", rejectID("trigger id")))
	standalonePage().register(pages, "/jokes-x")

	return r
}
