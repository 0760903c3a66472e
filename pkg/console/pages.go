package console

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harveywai/jokeadmin/pkg/listview"
	"github.com/harveywai/jokeadmin/pkg/middleware"
	"github.com/harveywai/jokeadmin/pkg/models"
)

// listCopy is the wording of one management page.
type listCopy struct {
	Nav           string
	Subtitle      string
	Field         string
	Placeholder   string
	Submit        string
	Column        string
	Empty         string
	DeleteLabel   string
	ConfirmPrompt string
}

type listRow struct {
	ID   uint
	Text string
	Link string
	Meta string
}

type listData struct {
	listCopy
	Title       string
	Base        string
	Rows        []listRow
	Draft       string
	Confirming  bool
	PendingID   uint
	PendingText string
}

// listPage serves the five routes of one managed list: show, create,
// request, confirm and cancel deletion.
type listPage[T listview.Record] struct {
	copy  listCopy
	title func(c *gin.Context) string
	base  func(c *gin.Context) string
	// bind returns the session's view for the request without loading it.
	// stale is true when the view holds nothing worth rendering yet.
	bind  func(c *gin.Context, s *Session) (view *listview.View[T], stale bool)
	mount func(ctx context.Context, c *gin.Context, s *Session) (*listview.View[T], error)
	row   func(T) listRow
}

func (p listPage[T]) show(c *gin.Context) {
	session, _ := currentSession(c)
	view, _ := p.mount(c.Request.Context(), c, session)
	p.render(c, view)
}

func (p listPage[T]) create(c *gin.Context) {
	view, stale := p.acquire(c)
	text := c.PostForm(p.copy.Field)

	err := view.Create(c.Request.Context(), text)
	refetched := err == nil && strings.TrimSpace(text) != ""
	p.finish(c, view, stale && !refetched)
}

func (p listPage[T]) requestDelete(c *gin.Context) {
	view, stale := p.acquire(c)
	view.RequestDelete(middleware.PathID(c, "id"))
	p.finish(c, view, stale)
}

func (p listPage[T]) confirmDelete(c *gin.Context) {
	view, stale := p.acquire(c)
	err := view.ConfirmDelete(c.Request.Context())
	p.finish(c, view, stale && err != nil)
}

func (p listPage[T]) cancelDelete(c *gin.Context) {
	view, stale := p.acquire(c)
	view.CancelDelete()
	p.finish(c, view, stale)
}

func (p listPage[T]) acquire(c *gin.Context) (*listview.View[T], bool) {
	session, fresh := currentSession(c)
	view, stale := p.bind(c, session)
	return view, stale || fresh
}

// finish renders the page, first loading the list when the action left the
// view without data.
func (p listPage[T]) finish(c *gin.Context, view *listview.View[T], load bool) {
	if load {
		_ = view.Load(c.Request.Context())
	}
	p.render(c, view)
}

func (p listPage[T]) render(c *gin.Context, view *listview.View[T]) {
	state := view.Snapshot()
	data := listData{
		listCopy: p.copy,
		Title:    p.title(c),
		Base:     p.base(c),
		Rows:     make([]listRow, 0, len(state.Items)),
		Draft:    state.Draft,
	}
	for _, item := range state.Items {
		data.Rows = append(data.Rows, p.row(item))
	}
	if id, ok := state.PendingDelete(); ok {
		data.Confirming = true
		data.PendingID = id
		data.PendingText = fmt.Sprintf("#%d", id)
		for _, item := range state.Items {
			if item.RecordID() == id {
				data.PendingText = item.DisplayText()
				break
			}
		}
	}
	c.HTML(http.StatusOK, "list.html", data)
}

func (p listPage[T]) register(g gin.IRoutes, path string, scoped ...gin.HandlerFunc) {
	id := middleware.IDParam("id", rejectID("id"))
	with := func(h ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, scoped...), h...)
	}

	g.GET(path, with(p.show)...)
	g.POST(path, with(p.create)...)
	g.POST(path+"/:id/delete", with(id, p.requestDelete)...)
	g.POST(path+"/delete/confirm", with(p.confirmDelete)...)
	g.POST(path+"/delete/cancel", with(p.cancelDelete)...)
}

func rejectID(name string) func(c *gin.Context, raw string) {
	return func(c *gin.Context, raw string) {
		c.String(http.StatusBadRequest, "invalid %s %q", name, raw)
	}
}

func staticTitle(title string) func(*gin.Context) string {
	return func(*gin.Context) string { return title }
}

func triggersPage() listPage[models.Trigger] {
	return listPage[models.Trigger]{
		copy: listCopy{
			Nav:           "tags",
			Subtitle:      "Добавьте новое слово-триггер для бота",
			Field:         "value",
			Placeholder:   "Введите триггер",
			Submit:        "Добавить",
			Column:        "Триггер",
			Empty:         "Нет триггеров для отображения",
			DeleteLabel:   "Удалить триггер",
			ConfirmPrompt: "Удалить триггер вместе со всеми его ответами?",
		},
		title: staticTitle("Триггеры"),
		base:  staticTitle("/tags"),
		bind: func(_ *gin.Context, s *Session) (*listview.View[models.Trigger], bool) {
			return s.Triggers, false
		},
		mount: func(ctx context.Context, _ *gin.Context, s *Session) (*listview.View[models.Trigger], error) {
			return s.Triggers, s.Triggers.Load(ctx)
		},
		row: func(t models.Trigger) listRow {
			return listRow{
				ID:   t.ID,
				Text: t.Value,
				Link: fmt.Sprintf("/jokes/%d", t.ID),
				Meta: fmt.Sprintf("ответов: %d", len(t.Jokes)),
			}
		},
	}
}

func jokesPage() listPage[models.Joke] {
	return listPage[models.Joke]{
		copy: listCopy{
			Nav:           "tags",
			Subtitle:      "Ответы, которые бот присылает на этот триггер",
			Field:         "text",
			Placeholder:   "Введите новый ответ",
			Submit:        "Добавить ответ",
			Column:        "Ответ",
			Empty:         "Нет ответов для отображения",
			DeleteLabel:   "Удалить",
			ConfirmPrompt: "Удалить этот ответ?",
		},
		title: func(c *gin.Context) string {
			return fmt.Sprintf("Ответы триггера #%d", middleware.PathID(c, "triggerId"))
		},
		base: func(c *gin.Context) string {
			return fmt.Sprintf("/jokes/%d", middleware.PathID(c, "triggerId"))
		},
		bind: func(c *gin.Context, s *Session) (*listview.View[models.Joke], bool) {
			rebound := s.Jokes.Bind(middleware.PathID(c, "triggerId"))
			return s.Jokes.View, rebound
		},
		mount: func(ctx context.Context, c *gin.Context, s *Session) (*listview.View[models.Joke], error) {
			return s.Jokes.View, s.Jokes.Mount(ctx, middleware.PathID(c, "triggerId"))
		},
		row: func(j models.Joke) listRow {
			return listRow{ID: j.ID, Text: j.Text}
		},
	}
}

func standalonePage() listPage[models.StandaloneJoke] {
	return listPage[models.StandaloneJoke]{
		copy: listCopy{
			Nav:           "jokes-x",
			Subtitle:      "Добавьте новый анекдот",
			Field:         "text",
			Placeholder:   "Введите анекдот",
			Submit:        "Добавить",
			Column:        "Анекдот",
			Empty:         "Нет анекдотов для отображения",
			DeleteLabel:   "Удалить анекдот",
			ConfirmPrompt: "Удалить этот анекдот?",
		},
		title: staticTitle("Анекдоты"),
		base:  staticTitle("/jokes-x"),
		bind: func(_ *gin.Context, s *Session) (*listview.View[models.StandaloneJoke], bool) {
			return s.Standalone, false
		},
		mount: func(ctx context.Context, _ *gin.Context, s *Session) (*listview.View[models.StandaloneJoke], error) {
			return s.Standalone, s.Standalone.Load(ctx)
		},
		row: func(j models.StandaloneJoke) listRow {
			return listRow{ID: j.ID, Text: j.Text}
		},
	}
}
