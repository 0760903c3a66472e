package console

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type dashboardData struct {
	Title       string
	Subtitle    string
	Nav         string
	Available   bool
	Triggers    int
	Jokes       int
	Standalone  int
	APIEndpoint string
}

// handleDashboard shows dataset totals. Both collections are fetched
// concurrently; if either request fails the totals are shown as unavailable.
func (s *Server) handleDashboard(c *gin.Context) {
	data := dashboardData{
		Title:       "Панель управления",
		Subtitle:    "Сводка по данным бота",
		Nav:         "home",
		APIEndpoint: s.client.BaseURL(),
	}

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		triggers, err := s.client.ListTriggers(ctx)
		if err != nil {
			return err
		}
		data.Triggers = len(triggers)
		for _, t := range triggers {
			data.Jokes += len(t.Jokes)
		}
		return nil
	})
	g.Go(func() error {
		jokes, err := s.client.ListStandaloneJokes(ctx)
		if err != nil {
			return err
		}
		data.Standalone = len(jokes)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard totals unavailable", zap.Error(err))
	} else {
		data.Available = true
	}

	c.HTML(http.StatusOK, "dashboard.html", data)
}
