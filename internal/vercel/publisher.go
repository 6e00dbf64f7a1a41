package vercel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kalambet/devfolio/internal/errors"
	"github.com/kalambet/devfolio/internal/logfields"
	"github.com/kalambet/devfolio/internal/workspace"
)

const defaultBinary = "vercel"

// Deployment is the outcome of a successful deploy.
type Deployment struct {
	Project string
	URL     string
	Output  string
}

// Publisher stages a page in a scoped workspace and deploys it with the
// Vercel CLI.
type Publisher struct {
	binary  string
	token   string
	baseDir string
	runner  CommandRunner
}

// NewPublisher creates a Publisher that runs the real CLI.
func NewPublisher(binary, token, baseDir string) *Publisher {
	return NewPublisherWithRunner(binary, token, baseDir, ExecRunner{})
}

// NewPublisherWithRunner is NewPublisher with an injected command runner.
func NewPublisherWithRunner(binary, token, baseDir string, runner CommandRunner) *Publisher {
	if binary == "" {
		binary = defaultBinary
	}
	return &Publisher{binary: binary, token: token, baseDir: baseDir, runner: runner}
}

// deployArgs selects a non-interactive production deployment.
func (p *Publisher) deployArgs() []string {
	return []string{"--token", p.token, "-y", "--prod"}
}

// Publish writes markup and the manifest into <workspace>/<project>/ and
// runs the deploy command there. The workspace is removed before Publish
// returns, whatever the outcome.
func (p *Publisher) Publish(ctx context.Context, markup, project string) (Deployment, error) {
	ws := workspace.New(p.baseDir)
	if err := ws.Create(); err != nil {
		return Deployment{}, errors.Wrap(err, errors.CategoryFileSystem, "creating workspace")
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Error("workspace cleanup failed", logfields.Project(project), logfields.Error(err))
		}
	}()

	dir, err := Stage(ws, markup, project)
	if err != nil {
		return Deployment{}, err
	}

	start := time.Now()
	slog.Info("deploying site", logfields.Project(project), logfields.Path(dir))

	res, err := p.runner.Run(ctx, dir, p.binary, p.deployArgs()...)
	if err != nil {
		return Deployment{}, errors.Wrap(err, errors.CategoryDeployment, fmt.Sprintf("running %s", p.binary)).
			WithContext("project", project)
	}

	if res.ExitCode != 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Deployment{}, errors.Wrap(ctxErr, errors.CategoryDeployment, "deployment interrupted").
				WithContext("project", project)
		}
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(res.Stdout)
		}
		slog.Debug("deploy command failed",
			logfields.Project(project),
			slog.Int("exit_code", res.ExitCode),
			logfields.Since(start))
		return Deployment{}, errors.Newf(errors.CategoryDeployment, "%s exited with status %d", p.binary, res.ExitCode).
			WithContext("project", project).
			WithContext("exit_code", res.ExitCode).
			WithContext("output", detail)
	}

	out := strings.TrimSpace(res.Stdout)
	slog.Info("deployment finished", logfields.Project(project), logfields.Since(start))
	return Deployment{Project: project, URL: liveURL(out), Output: out}, nil
}

// Stage creates <ws>/<project>/ holding exactly index.html (markup, byte for
// byte) and vercel.json, and returns that directory.
func Stage(ws *workspace.Workspace, markup, project string) (string, error) {
	dir, err := ws.CreateSubdir(project)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, "creating project directory").
			WithContext("project", project)
	}

	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte(markup), 0o644); err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, "writing "+IndexFile)
	}
	if err := NewManifest(project).WriteFile(dir); err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, "writing manifest")
	}
	return dir, nil
}

// liveURL picks the last https:// line of the CLI output, which is where
// the CLI prints the production URL. Falls back to the whole output.
func liveURL(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "https://") {
			return line
		}
	}
	return out
}

// Output returns the captured CLI output attached to a deployment error.
func Output(err error) string {
	e, ok := errors.As(err)
	if !ok {
		return ""
	}
	s, _ := e.Field("output").(string)
	return s
}
