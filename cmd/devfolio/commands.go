package main

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/devfolio/internal/config"
	"github.com/kalambet/devfolio/internal/errors"
	"github.com/kalambet/devfolio/internal/github"
	"github.com/kalambet/devfolio/internal/logfields"
	"github.com/kalambet/devfolio/internal/preview"
	"github.com/kalambet/devfolio/internal/vercel"
	"github.com/kalambet/devfolio/internal/workspace"
)

// --- build ---

var buildCmd = &cobra.Command{
	Use:   "build <username>",
	Short: "Generate a portfolio for a GitHub user and deploy it",
	Long: `Fetch the public GitHub profile for <username>, generate a portfolio
page from it and deploy the page to Vercel as <username>-portfolio.

Requires OPENAI_API_KEY and VERCEL_TOKEN, from the environment or a .env file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := configure(config.RequireAll)
		if err != nil {
			return reportFailure(out, err)
		}

		printStep(cmd.ErrOrStderr(), "Building portfolio for %s", args[0])
		res, err := newBuilder(cfg).Build(cmd.Context(), args[0])
		if err != nil {
			return reportFailure(out, err)
		}

		printSuccess(out, "Deployment successful!")
		fmt.Fprintf(out, "Your website is live at: %s\n", res.URL)
		printStatus(cmd.ErrOrStderr(), "Project", "%s", res.Project)
		printStatus(cmd.ErrOrStderr(), "Run", "%s", res.RunID)
		return nil
	},
}

// --- preview ---

var previewCmd = &cobra.Command{
	Use:   "preview <username>",
	Short: "Generate a portfolio and serve it locally instead of deploying",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		username := args[0]

		cfg, err := configure(config.RequireGeneration)
		if err != nil {
			return reportFailure(out, err)
		}
		port := cfg.Preview.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		printStep(cmd.ErrOrStderr(), "Generating portfolio for %s", username)
		markup, err := newBuilder(cfg).Render(cmd.Context(), username)
		if err != nil {
			return reportFailure(out, err)
		}

		ws := workspace.New(cfg.Workspace.BaseDir)
		if err := ws.Create(); err != nil {
			return reportFailure(out, err)
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				slog.Error("workspace cleanup failed", logfields.Path(ws.Path()), logfields.Error(err))
			}
		}()

		dir, err := vercel.Stage(ws, markup, vercel.ProjectName(username))
		if err != nil {
			return reportFailure(out, err)
		}

		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			return reportFailure(out, errors.Wrap(err, errors.CategoryInternal, "starting preview server"))
		}

		printSuccess(out, "Preview ready at http://%s", ln.Addr())
		printStep(cmd.ErrOrStderr(), "Press Ctrl+C to stop")
		return preview.Serve(cmd.Context(), ln, dir)
	},
}

func init() {
	previewCmd.Flags().Int("port", 0, "port to listen on (default from preview.port)")
}

// --- models ---

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available to the configured API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		cfg, err := configure(config.RequireGeneration)
		if err != nil {
			return reportFailure(out, err)
		}

		models, err := newModelLister(cfg).ListModels(cmd.Context())
		if err != nil {
			return reportFailure(out, errors.Wrap(err, errors.CategoryGeneration, "listing models"))
		}

		ids := make([]string, 0, len(models))
		for _, m := range models {
			ids = append(ids, m.ID)
		}
		slices.Sort(ids)

		for _, id := range ids {
			marker := " "
			if id == cfg.OpenAI.Model {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, id)
		}
		if !slices.Contains(ids, cfg.OpenAI.Model) {
			printWarning(out, "Configured model %s is not in the list", cfg.OpenAI.Model)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(0)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(out, "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Valid keys: ` + strings.Join(config.ValidKeys(), ", ") + `

Secrets (tokens and API keys) are read from the environment only.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess(cmd.OutOrStdout(), "Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}

		printSuccess(cmd.OutOrStdout(), "Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}

// --- reporting ---

// reportFailure prints the user-facing message for a failed run and returns
// an error that main will not print again.
func reportFailure(w io.Writer, err error) error {
	switch errors.GetCategory(err) {
	case errors.CategoryFetch:
		if code := github.StatusCode(err); code != 0 {
			printError(w, "Error fetching GitHub profile data. Status code: %d", code)
		} else {
			printError(w, "Error fetching GitHub profile data: %s", describe(err))
		}
	case errors.CategoryGeneration:
		printError(w, "Generation failed: %s", describe(err))
	case errors.CategoryDeployment:
		output := vercel.Output(err)
		if output == "" {
			output = describe(err)
		}
		printError(w, "Deployment failed: %s", output)
	case errors.CategoryConfig:
		printError(w, "Configuration error: %s", describe(err))
	default:
		printError(w, "Build failed: %s", describe(err))
	}
	return &reportedError{err: err}
}

// describe renders err without its category prefix.
func describe(err error) string {
	e, ok := errors.As(err)
	if !ok {
		return err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}
