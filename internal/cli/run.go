package cli

import (
	"fmt"

	"github.com/cucumber/godog"
	"github.com/spf13/cobra"

	"github.com/roshangit23/ReadyTestAPI/internal/config"
	"github.com/roshangit23/ReadyTestAPI/internal/http"
	"github.com/roshangit23/ReadyTestAPI/internal/logging"
	"github.com/roshangit23/ReadyTestAPI/internal/steps"
	"github.com/roshangit23/ReadyTestAPI/pkg/jsonschema"
)

type runOptions struct {
	tags   string
	format string
	strict bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run feature files",
		Long: `Run feature files against the endpoints and queries named in the
settings file. Paths default to the settings' features list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeatures(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.tags, "tags", "t", "", "tag expression selecting scenarios, e.g. \"@smoke && ~@wip\"")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "godog formatter: pretty, progress, cucumber, junit, events")
	cmd.Flags().BoolVar(&opts.strict, "strict", true, "fail on pending or undefined steps")

	return cmd
}

func runFeatures(cmd *cobra.Command, g *globalOptions, opts *runOptions, args []string) error {
	s, err := g.settings()
	if err != nil {
		return err
	}
	if opts.format != "" {
		s.Format = opts.format
	}
	if opts.tags != "" {
		s.Tags = opts.tags
	}
	if len(args) > 0 {
		s.Features = args
	}
	if errs := config.ValidateSettings(s); len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errs[0])
	}

	apiPaths, err := config.LoadCheckedTable(s.APIPaths)
	if err != nil {
		return err
	}
	queries, err := config.LoadCheckedTable(s.Queries)
	if err != nil {
		return err
	}

	var schemas *jsonschema.Registry
	if s.Schemas != "" {
		schemas = jsonschema.NewRegistry(s.Schemas)
	}

	client := http.NewClient(http.WithTimeout(s.TimeoutDuration()))
	suite := steps.NewSuite(apiPaths, queries, schemas, client)

	logging.Info("cli", "running %v (tags=%q, format=%s)", s.Features, s.Tags, s.Format)

	status := suite.Run("readytest", godog.Options{
		Format:   s.Format,
		Output:   cmd.OutOrStdout(),
		NoColors: g.colorDisabled(),
		Strict:   opts.strict,
		Paths:    s.Features,
		Tags:     s.Tags,
	})
	if status != 0 {
		return fmt.Errorf("test run failed (status %d)", status)
	}
	return nil
}
