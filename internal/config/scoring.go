package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tiebreak/internal/ir"
)

//go:embed scoring.cue
var scoringSchema string

// ErrInvalidScoring is returned when a scoring file fails validation.
var ErrInvalidScoring = errors.New("invalid scoring configuration")

// LoadScoring reads a scoring file (.cue, .json, .yaml or .yml) and
// validates it against the #Scoring schema. Omitted fields take the
// schema defaults (3/1/0, shuffle-all-rounds).
func LoadScoring(path string) (ir.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Config{}, fmt.Errorf("read scoring file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue", ".json":
		return ParseScoring(data, path)
	case ".yaml", ".yml":
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return ir.Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidScoring, path, err)
		}
		if m == nil {
			m = map[string]any{}
		}
		ctx := cuecontext.New()
		return validateScoring(ctx, ctx.Encode(m), path)
	default:
		return ir.Config{}, fmt.Errorf("%w: unsupported file extension %q", ErrInvalidScoring, ext)
	}
}

// ParseScoring validates CUE or JSON scoring source. name is used in
// error messages.
func ParseScoring(src []byte, name string) (ir.Config, error) {
	ctx := cuecontext.New()
	return validateScoring(ctx, ctx.CompileBytes(src, cue.Filename(name)), name)
}

// validateScoring unifies data with #Scoring and decodes the result.
func validateScoring(ctx *cue.Context, data cue.Value, name string) (ir.Config, error) {
	schema := ctx.CompileString(scoringSchema, cue.Filename("scoring.cue"))
	if err := schema.Err(); err != nil {
		return ir.Config{}, fmt.Errorf("compile scoring schema: %w", err)
	}

	if err := data.Err(); err != nil {
		return ir.Config{}, fmt.Errorf("%w: %s", ErrInvalidScoring, cueerrors.Details(err, nil))
	}

	v := schema.LookupPath(cue.ParsePath("#Scoring")).Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return ir.Config{}, fmt.Errorf("%w: %s: %s", ErrInvalidScoring, name, strings.TrimSpace(cueerrors.Details(err, nil)))
	}

	var cfg ir.Config
	if err := v.Decode(&cfg); err != nil {
		return ir.Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidScoring, name, err)
	}
	return cfg, nil
}
