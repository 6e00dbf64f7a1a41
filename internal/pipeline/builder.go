package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/devfolio/internal/github"
	"github.com/kalambet/devfolio/internal/logfields"
	"github.com/kalambet/devfolio/internal/vercel"
)

// Stage names, used in log lines.
const (
	StageFetch    = "fetch"
	StageGenerate = "generate"
	StagePublish  = "publish"
)

// Fetcher reads a public profile. Implemented by *github.Client.
type Fetcher interface {
	FetchProfile(ctx context.Context, login string) (github.Profile, error)
}

// Generator renders a profile into page markup. Implemented by
// *generator.Generator.
type Generator interface {
	Generate(ctx context.Context, profile any) (string, error)
}

// Publisher deploys page markup as the named project. Implemented by
// *vercel.Publisher.
type Publisher interface {
	Publish(ctx context.Context, markup, project string) (vercel.Deployment, error)
}

// Result is what a successful build reports.
type Result struct {
	RunID    string
	Username string
	Project  string
	URL      string
	Output   string
}

// Builder runs fetch → generate → publish for one username at a time.
type Builder struct {
	fetcher   Fetcher
	generator Generator
	publisher Publisher
}

// NewBuilder wires the three stages. publisher may be nil for a builder
// that is only used with Render.
func NewBuilder(f Fetcher, g Generator, p Publisher) *Builder {
	return &Builder{fetcher: f, generator: g, publisher: p}
}

// Build performs one full run. The first failing stage ends the run and its
// error is returned unchanged; later stages are never called.
func (b *Builder) Build(ctx context.Context, username string) (Result, error) {
	runID := uuid.NewString()
	log := slog.With(logfields.RunID(runID), logfields.Username(username))
	start := time.Now()

	markup, err := b.render(ctx, log, username)
	if err != nil {
		return Result{}, err
	}

	project := vercel.ProjectName(username)
	log.Debug("stage started", logfields.Stage(StagePublish), logfields.Project(project))
	dep, err := b.publisher.Publish(ctx, markup, project)
	if err != nil {
		log.Debug("stage failed", logfields.Stage(StagePublish), logfields.Error(err))
		return Result{}, err
	}

	log.Info("build complete", logfields.Project(project), slog.String("url", dep.URL), logfields.Since(start))
	return Result{
		RunID:    runID,
		Username: username,
		Project:  project,
		URL:      dep.URL,
		Output:   dep.Output,
	}, nil
}

// Render runs fetch and generate only and returns the markup.
func (b *Builder) Render(ctx context.Context, username string) (string, error) {
	log := slog.With(logfields.RunID(uuid.NewString()), logfields.Username(username))
	return b.render(ctx, log, username)
}

func (b *Builder) render(ctx context.Context, log *slog.Logger, username string) (string, error) {
	log.Debug("stage started", logfields.Stage(StageFetch))
	profile, err := b.fetcher.FetchProfile(ctx, username)
	if err != nil {
		log.Debug("stage failed", logfields.Stage(StageFetch), logfields.Error(err))
		return "", err
	}

	log.Debug("stage started", logfields.Stage(StageGenerate))
	markup, err := b.generator.Generate(ctx, profile)
	if err != nil {
		log.Debug("stage failed", logfields.Stage(StageGenerate), logfields.Error(err))
		return "", err
	}
	return markup, nil
}
