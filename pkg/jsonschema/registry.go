package jsonschema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Registry resolves schema names to files under a directory.
// Schemas are compiled on every call so edits on disk are always picked up.
type Registry struct {
	Dir string
}

// NewRegistry creates a registry rooted at dir.
func NewRegistry(dir string) *Registry {
	return &Registry{Dir: dir}
}

// Path returns the file a schema name refers to. The name may omit the
// ".json" extension, and absolute paths are used as-is.
func (r *Registry) Path(name string) (string, error) {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = []string{filepath.Join(r.Dir, name)}
	}
	if !strings.HasSuffix(name, ".json") {
		candidates = append(candidates, candidates[0]+".json")
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("schema %q not found in %s", name, r.Dir)
}

// Validate checks jsonStr against the named schema. A nil error means the
// document conforms; a ValidationErrors value lists every failure.
func (r *Registry) Validate(name, jsonStr string) error {
	path, err := r.Path(name)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(abs)
	if err != nil {
		return fmt.Errorf("invalid schema %s: %w", name, err)
	}

	if ok, errs := validateCompiled(schema, jsonStr); !ok {
		return errs
	}
	return nil
}
