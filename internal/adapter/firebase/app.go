// Package firebase builds the vendor SDK app shared by the realtime store and
// identity-token verification.
package firebase

import (
	"context"
	"fmt"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/db"
	"go.uber.org/fx"
	"google.golang.org/api/option"

	"github.com/polkiloo/courieragent/internal/config"
)

// Module provides a lazily initialized App.
var Module = fx.Provide(newApp)

// Options selects the project and credentials.
type Options struct {
	CredentialsFile string
	DatabaseURL     string
	ProjectID       string
}

// App defers SDK initialization until a component needs it, so setups that
// use neither the vendor database nor token verification need no credentials.
type App struct {
	opts Options

	once sync.Once
	app  *firebase.App
	err  error
}

// NewApp returns an uninitialized App.
func NewApp(opts Options) *App {
	return &App{opts: opts}
}

func newApp(cfg *config.Config) *App {
	return NewApp(Options{
		CredentialsFile: cfg.FirebaseCredentialsFile,
		DatabaseURL:     cfg.FirebaseDatabaseURL,
		ProjectID:       cfg.FirebaseProjectID,
	})
}

func (a *App) init(ctx context.Context) (*firebase.App, error) {
	a.once.Do(func() {
		var opts []option.ClientOption
		if a.opts.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(a.opts.CredentialsFile))
		}
		conf := &firebase.Config{
			DatabaseURL: a.opts.DatabaseURL,
			ProjectID:   a.opts.ProjectID,
		}
		a.app, a.err = firebase.NewApp(ctx, conf, opts...)
		if a.err != nil {
			a.err = fmt.Errorf("init firebase app: %w", a.err)
		}
	})
	return a.app, a.err
}

// Database returns the realtime database client.
func (a *App) Database(ctx context.Context) (*db.Client, error) {
	app, err := a.init(ctx)
	if err != nil {
		return nil, err
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase database: %w", err)
	}
	return client, nil
}

// Auth returns the identity client.
func (a *App) Auth(ctx context.Context) (*auth.Client, error) {
	app, err := a.init(ctx)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	return client, nil
}
