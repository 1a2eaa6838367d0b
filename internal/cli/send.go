package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roshangit23/ReadyTestAPI/internal/coerce"
	"github.com/roshangit23/ReadyTestAPI/internal/config"
	"github.com/roshangit23/ReadyTestAPI/internal/http"
	"github.com/roshangit23/ReadyTestAPI/internal/inspect"
	"github.com/roshangit23/ReadyTestAPI/internal/output"
	"github.com/roshangit23/ReadyTestAPI/internal/reqstate"
	"github.com/roshangit23/ReadyTestAPI/internal/steps"
	"github.com/roshangit23/ReadyTestAPI/pkg/jsonschema"
)

type sendOptions struct {
	baseURI      string
	headers      []string
	query        []string
	path         []string
	form         []string
	files        []string
	data         []string
	body         string
	bearer       string
	basic        string
	digest       string
	format       string
	timeout      time.Duration
	expectStatus int
	expectSchema string
}

func newSendCmd(g *globalOptions) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send METHOD NAME",
		Short: "Send one request to a named endpoint",
		Long: `Assemble a request the way a scenario would and send it. NAME is looked
up in the apiPaths table; the base URI defaults to its testUrl entry.`,
		Example: `  readytest send GET getUser --path id=7 --query fields=name
  readytest send POST createUser --data name=Alice --data age=30 --bearer $TOKEN`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd, g, opts, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.baseURI, "base-uri", "", "base URI (default: the testUrl entry)")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "header \"Key: Value\" (repeatable)")
	flags.StringArrayVar(&opts.query, "query", nil, "query parameter key=value, sent in flag order (repeatable)")
	flags.StringArrayVar(&opts.path, "path", nil, "path parameter key=value filling {key} (repeatable)")
	flags.StringArrayVar(&opts.form, "form", nil, "form field key=value (repeatable)")
	flags.StringArrayVar(&opts.files, "file", nil, "file to attach as a multipart part (repeatable)")
	flags.StringArrayVarP(&opts.data, "data", "d", nil, "JSON body field key=value, value typed like a table cell (repeatable)")
	flags.StringVar(&opts.body, "body", "", "raw request body")
	flags.StringVar(&opts.bearer, "bearer", "", "bearer token")
	flags.StringVar(&opts.basic, "basic", "", "basic auth user:password")
	flags.StringVar(&opts.digest, "digest", "", "digest auth user:password")
	flags.StringVarP(&opts.format, "output", "o", "text", "output format: text, json, yaml")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout (default: settings timeout)")
	flags.IntVar(&opts.expectStatus, "expect-status", 0, "fail unless the response has this status code")
	flags.StringVar(&opts.expectSchema, "expect-schema", "", "fail unless the body matches this named schema")

	return cmd
}

func send(cmd *cobra.Command, g *globalOptions, opts *sendOptions, method, name string) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	s, err := g.settings()
	if err != nil {
		return err
	}
	apiPaths, err := config.LoadCheckedTable(s.APIPaths)
	if err != nil {
		return err
	}
	template, err := apiPaths.Resolve(name)
	if err != nil {
		return fmt.Errorf("endpoint %q: %w", name, err)
	}

	timeout := opts.timeout
	if timeout <= 0 {
		timeout = s.TimeoutDuration()
	}
	client := http.NewClient(http.WithTimeout(timeout))

	state := reqstate.New(apiPaths, client)
	if err := opts.apply(state, apiPaths); err != nil {
		return err
	}

	formatter := output.GetFormatter(format, g.verbose, g.colorDisabled())
	out := cmd.OutOrStdout()

	req := state.Request(method, template)
	fmt.Fprintln(out, formatter.FormatRequest(req, ""))

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	resp, err := state.SendPath(ctx, method, template)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatter.FormatResponse(resp))

	if opts.expectStatus != 0 && !inspect.VerifyStatusCode(resp, opts.expectStatus) {
		return fmt.Errorf("expected status %d, got %d", opts.expectStatus, resp.StatusCode)
	}
	if opts.expectSchema != "" {
		if s.Schemas == "" {
			return fmt.Errorf("--expect-schema needs a schemas directory in the settings")
		}
		if err := inspect.ValidateSchema(resp, jsonschema.NewRegistry(s.Schemas), opts.expectSchema); err != nil {
			return err
		}
	}
	return nil
}

// apply copies the flags into state in the order a scenario would set them.
func (o *sendOptions) apply(state *reqstate.State, apiPaths *config.Table) error {
	base := o.baseURI
	if base == "" {
		base, _ = apiPaths.Lookup(steps.KeyTestURL)
	}
	state.SetBaseURI(base)

	headers := make(map[string]string, len(o.headers))
	for _, h := range o.headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, want \"Key: Value\"", h)
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	state.SetHeaders(headers)

	pathParams, err := keyValues("path", o.path)
	if err != nil {
		return err
	}
	state.SetPathParams(pairMap(pathParams))

	query, err := keyValues("query", o.query)
	if err != nil {
		return err
	}
	for _, p := range query {
		state.SetQueryParam(p.Key, p.Value)
	}

	form, err := keyValues("form", o.form)
	if err != nil {
		return err
	}
	state.SetFormParams(pairMap(form))

	for _, f := range o.files {
		state.AddMultiPart(f)
	}

	switch {
	case o.body != "" && len(o.data) > 0:
		return fmt.Errorf("--body and --data cannot be combined")
	case o.body != "":
		state.SetBody([]byte(o.body))
	case len(o.data) > 0:
		data, err := keyValues("data", o.data)
		if err != nil {
			return err
		}
		body, err := coerce.BodyFromPairs(data)
		if err != nil {
			return err
		}
		state.SetBody(body)
	}

	switch {
	case o.bearer != "":
		state.SetBearerToken(o.bearer)
	case o.basic != "":
		user, pass, _ := strings.Cut(o.basic, ":")
		state.SetBasicAuth(user, pass)
	case o.digest != "":
		user, pass, _ := strings.Cut(o.digest, ":")
		state.SetDigestAuth(user, pass)
	}

	return nil
}

// keyValues splits key=value flag values, keeping their order.
func keyValues(flag string, values []string) ([]coerce.Pair, error) {
	pairs := make([]coerce.Pair, 0, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s value %q, want key=value", flag, v)
		}
		pairs = append(pairs, coerce.Pair{Key: key, Value: value})
	}
	return pairs, nil
}

func pairMap(pairs []coerce.Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}
