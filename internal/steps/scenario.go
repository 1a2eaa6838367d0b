package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/roshangit23/ReadyTestAPI/internal/coerce"
	"github.com/roshangit23/ReadyTestAPI/internal/http"
	"github.com/roshangit23/ReadyTestAPI/internal/inspect"
	"github.com/roshangit23/ReadyTestAPI/internal/logging"
	"github.com/roshangit23/ReadyTestAPI/internal/reqstate"
	"github.com/roshangit23/ReadyTestAPI/internal/sqlrunner"
)

// scenario is the state one scenario's steps share. It is discarded when
// the scenario ends.
type scenario struct {
	suite *Suite

	state     *reqstate.State
	response  *http.Response
	extracted string
	values    []string
	xml       *inspect.Node

	rows         *sqlrunner.RowSet
	results      *sqlrunner.RowSet
	updateResult bool
}

func (sc *scenario) before(ctx context.Context, pickle *godog.Scenario) (context.Context, error) {
	sc.state = reqstate.New(sc.suite.APIPaths, sc.suite.Client)

	if base, ok := sc.suite.APIPaths.Lookup(KeyTestURL); ok {
		sc.state.SetBaseURI(base)
	} else {
		logging.Warn("steps", "%s is not defined; scenario %q has no base URI", KeyTestURL, pickle.Name)
	}

	if hasTag(pickle, TagDatabaseSetup) {
		if err := sc.suite.openDatabase(ctx); err != nil {
			return ctx, fmt.Errorf("database setup: %w", err)
		}
	}

	if hasTag(pickle, TagLogin) {
		if err := sc.login(ctx); err != nil {
			return ctx, fmt.Errorf("login: %w", err)
		}
	}

	return ctx, nil
}

// login posts the configured credentials and authenticates the rest of the
// scenario with the returned token.
func (sc *scenario) login(ctx context.Context) error {
	values := make(map[string]string, 3)
	for _, key := range []string{KeyLoginPath, KeyEmail, KeyPassword} {
		value, err := sc.suite.APIPaths.Resolve(key)
		if err != nil {
			return err
		}
		values[key] = value
	}

	body, err := json.Marshal(map[string]string{
		"email":    values[KeyEmail],
		"password": values[KeyPassword],
	})
	if err != nil {
		return err
	}

	sc.state.SetBody(body)
	resp, err := sc.state.SendPath(ctx, "POST", values[KeyLoginPath])
	sc.state.SetBody(nil)
	if err != nil {
		return err
	}

	token, err := inspect.ExtractValue(resp, "token")
	if err != nil {
		return fmt.Errorf("no token in login response (status %d): %w", resp.StatusCode, err)
	}
	sc.state.SetBearerToken(token)
	return nil
}

func hasTag(pickle *godog.Scenario, tag string) bool {
	for _, t := range pickle.Tags {
		if t.Name == tag {
			return true
		}
	}
	return false
}

// pairs reads a two column data table, one key/value per row, in row order.
func pairs(table *godog.Table) ([]coerce.Pair, error) {
	out := make([]coerce.Pair, 0, len(table.Rows))
	for i, row := range table.Rows {
		if len(row.Cells) != 2 {
			return nil, fmt.Errorf("row %d: expected 2 columns, got %d", i+1, len(row.Cells))
		}
		out = append(out, coerce.Pair{Key: row.Cells[0].Value, Value: row.Cells[1].Value})
	}
	return out, nil
}

func pairMap(table *godog.Table) (map[string]string, error) {
	ps, err := pairs(table)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		m[p.Key] = p.Value
	}
	return m, nil
}

// splitList splits a comma separated step argument, trimming each item.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// params turns a comma separated list into bind parameters, typing numbers
// and booleans the way request bodies are typed.
func params(raw string) []any {
	items := splitList(raw)
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = scalar(item)
	}
	return out
}

func scalar(raw string) any {
	v := coerce.Coerce(raw)
	switch v.Kind {
	case coerce.KindInt:
		return v.Int
	case coerce.KindFloat:
		return v.Float
	case coerce.KindBool:
		return v.Bool
	default:
		return raw
	}
}

func expect(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return fmt.Errorf(format, args...)
}
