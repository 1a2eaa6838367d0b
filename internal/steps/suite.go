// Package steps binds Gherkin step phrases to the request, inspection and
// SQL engines and runs feature files with godog.
package steps

import (
	"context"
	"os"

	"github.com/cucumber/godog"

	"github.com/roshangit23/ReadyTestAPI/internal/config"
	"github.com/roshangit23/ReadyTestAPI/internal/http"
	"github.com/roshangit23/ReadyTestAPI/internal/logging"
	"github.com/roshangit23/ReadyTestAPI/internal/sqlrunner"
	"github.com/roshangit23/ReadyTestAPI/pkg/jsonschema"
)

// Well-known entry names read by the scenario hooks.
const (
	KeyTestURL          = "testUrl"
	KeyLoginPath        = "loginPath"
	KeyEmail            = "email"
	KeyPassword         = "password"
	KeyDatabaseURL      = "databaseUrl"
	KeyDatabaseUsername = "databaseUsername"
	KeyDatabasePassword = "databasePassword"
	KeyDatabaseDriver   = "databaseDriver"
)

// Tags that trigger hooks.
const (
	TagDatabaseSetup = "@DatabaseSetup"
	TagLogin         = "@Login"
)

// OpenFunc opens the shared database session.
type OpenFunc func(ctx context.Context, opts sqlrunner.Options) (*sqlrunner.Executor, error)

// Suite holds what every scenario of a run shares: the name tables, the
// HTTP client, the schema registry and the single database session.
type Suite struct {
	APIPaths *config.Table
	Queries  *config.Table
	Schemas  *jsonschema.Registry
	Client   *http.Client
	Open     OpenFunc

	db *sqlrunner.Executor
}

// NewSuite creates a Suite. The database is opened lazily by the first
// scenario tagged @DatabaseSetup.
func NewSuite(apiPaths, queries *config.Table, schemas *jsonschema.Registry, client *http.Client) *Suite {
	if client == nil {
		client = http.NewClient()
	}
	if apiPaths == nil {
		apiPaths = &config.Table{}
	}
	if queries == nil {
		queries = &config.Table{}
	}
	return &Suite{
		APIPaths: apiPaths,
		Queries:  queries,
		Schemas:  schemas,
		Client:   client,
		Open:     sqlrunner.Open,
	}
}

// Database returns the shared session, nil until opened.
func (s *Suite) Database() *sqlrunner.Executor {
	return s.db
}

// Run executes the features selected by opts and returns godog's exit status.
func (s *Suite) Run(name string, opts godog.Options) int {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return godog.TestSuite{
		Name:                 name,
		TestSuiteInitializer: s.InitializeTestSuite,
		ScenarioInitializer:  s.InitializeScenario,
		Options:              &opts,
	}.Run()
}

// InitializeTestSuite closes the shared session once every scenario has run.
func (s *Suite) InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.AfterSuite(func() {
		if err := s.db.Close(); err != nil {
			logging.Error("steps", err, "closing database after suite")
		}
	})
}

// InitializeScenario registers hooks and steps for one scenario with its
// own request state.
func (s *Suite) InitializeScenario(ctx *godog.ScenarioContext) {
	sc := &scenario{suite: s}

	ctx.Before(sc.before)
	sc.registerAPISteps(ctx)
	sc.registerDatabaseSteps(ctx)
}

// openDatabase opens the shared session on first use.
func (s *Suite) openDatabase(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	opts := sqlrunner.Options{Driver: sqlrunner.DefaultDriver}
	for key, dst := range map[string]*string{
		KeyDatabaseURL:      &opts.URL,
		KeyDatabaseUsername: &opts.User,
		KeyDatabasePassword: &opts.Password,
	} {
		value, err := s.Queries.Resolve(key)
		if err != nil {
			return err
		}
		*dst = config.ExpandEnvironment(value)
	}
	if driver, ok := s.Queries.Lookup(KeyDatabaseDriver); ok {
		opts.Driver = driver
	}

	db, err := s.Open(ctx, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}
