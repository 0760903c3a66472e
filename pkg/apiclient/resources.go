package apiclient

import (
	"context"

	"github.com/harveywai/jokeadmin/pkg/listview"
	"github.com/harveywai/jokeadmin/pkg/models"
)

var (
	_ listview.Resource[models.Trigger]        = TriggerResource{}
	_ listview.Resource[models.Joke]           = JokeResource{}
	_ listview.Resource[models.StandaloneJoke] = StandaloneResource{}
)

// TriggerResource exposes /api/triggers as a managed list.
type TriggerResource struct{ Client *Client }

func (r TriggerResource) List(ctx context.Context) ([]models.Trigger, error) {
	return r.Client.ListTriggers(ctx)
}

func (r TriggerResource) Create(ctx context.Context, value string) error {
	return r.Client.CreateTrigger(ctx, value)
}

func (r TriggerResource) Delete(ctx context.Context, id uint) error {
	return r.Client.DeleteTrigger(ctx, id)
}

// JokeResource exposes the jokes of one trigger as a managed list.
type JokeResource struct {
	Client    *Client
	TriggerID uint
}

func (r JokeResource) List(ctx context.Context) ([]models.Joke, error) {
	return r.Client.ListJokes(ctx, r.TriggerID)
}

func (r JokeResource) Create(ctx context.Context, text string) error {
	return r.Client.CreateJoke(ctx, r.TriggerID, text)
}

func (r JokeResource) Delete(ctx context.Context, id uint) error {
	return r.Client.DeleteJoke(ctx, id)
}

// JokesOf returns a factory for listview.NewScoped.
func (c *Client) JokesOf(triggerID uint) listview.Resource[models.Joke] {
	return JokeResource{Client: c, TriggerID: triggerID}
}

// StandaloneResource exposes /api/jokes-x as a managed list.
type StandaloneResource struct{ Client *Client }

func (r StandaloneResource) List(ctx context.Context) ([]models.StandaloneJoke, error) {
	return r.Client.ListStandaloneJokes(ctx)
}

func (r StandaloneResource) Create(ctx context.Context, text string) error {
	return r.Client.CreateStandaloneJoke(ctx, text)
}

func (r StandaloneResource) Delete(ctx context.Context, id uint) error {
	return r.Client.DeleteStandaloneJoke(ctx, id)
}
