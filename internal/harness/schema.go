package harness

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed scenario.cue
var scenarioSchemaSource string

// schemaState holds the compiled #Scenario definition. A cue.Context is not
// safe for concurrent use, so validation serializes on mu.
var schemaState struct {
	once sync.Once
	mu   sync.Mutex
	ctx  *cue.Context
	def  cue.Value
	err  error
}

func scenarioSchema() (*cue.Context, cue.Value, error) {
	schemaState.once.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(scenarioSchemaSource, cue.Filename("scenario.cue"))
		if err := v.Err(); err != nil {
			schemaState.err = fmt.Errorf("compile scenario schema: %w", err)
			return
		}
		def := v.LookupPath(cue.ParsePath("#Scenario"))
		if !def.Exists() {
			schemaState.err = fmt.Errorf("scenario schema: #Scenario not defined")
			return
		}
		schemaState.ctx = ctx
		schemaState.def = def
	})
	return schemaState.ctx, schemaState.def, schemaState.err
}

// ValidateScenario checks a scenario document against the CUE schema.
// The name is used in error positions.
func ValidateScenario(name string, data []byte) error {
	ctx, def, err := scenarioSchema()
	if err != nil {
		return err
	}

	schemaState.mu.Lock()
	defer schemaState.mu.Unlock()

	file, err := cueyaml.Extract(name, data)
	if err != nil {
		return fmt.Errorf("%s: parse YAML: %w", name, err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("%s: %s", name, formatCUEError(err))
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s: schema violation: %s", name, formatCUEError(err))
	}
	return nil
}

func formatCUEError(err error) string {
	return strings.TrimSpace(cueerrors.Details(err, nil))
}
