package policy

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/soulthread/memoria/pkg/model"
)

//go:embed permissions.rego
var defaultPolicy string

const grantQuery = "data.permissions.grant"

// Permissions resolves the permission set of a license tier by evaluating
// the rule data.permissions.grant with input {"tier": <tier>}
type Permissions struct {
	query rego.PreparedEvalQuery
}

// New prepares the embedded default policy
func New(ctx context.Context) (*Permissions, error) {
	return prepare(ctx, []func(*rego.Rego){rego.Module("permissions.rego", defaultPolicy)})
}

// Load prepares every *.rego file of policyDir instead of the embedded policy
func Load(ctx context.Context, policyDir string) (*Permissions, error) {
	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files", goerr.V("dir", policyDir))
	}
	if len(files) == 0 {
		return nil, goerr.New("no policy file found", goerr.V("dir", policyDir))
	}

	modules := make([]func(*rego.Rego), 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		modules = append(modules, rego.Module(file, string(data)))
	}

	return prepare(ctx, modules)
}

func prepare(ctx context.Context, modules []func(*rego.Rego)) (*Permissions, error) {
	options := make([]func(*rego.Rego), 0, len(modules)+1)
	options = append(options, rego.Query(grantQuery))
	options = append(options, modules...)

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare permission policy", goerr.V("query", grantQuery))
	}

	return &Permissions{query: prepared}, nil
}

// Grant returns the permissions of tier in policy order
func (p *Permissions) Grant(ctx context.Context, tier model.LicenseTier) ([]model.Permission, error) {
	rs, err := p.query.Eval(ctx, rego.EvalInput(map[string]any{"tier": string(tier)}))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate permission policy", goerr.V("tier", tier))
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, nil
	}

	values, ok := rs[0].Expressions[0].Value.([]any)
	if !ok {
		return nil, goerr.New("grant must be an array",
			goerr.V("tier", tier),
			goerr.V("value", rs[0].Expressions[0].Value))
	}

	perms := make([]model.Permission, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, goerr.New("grant must contain strings", goerr.V("tier", tier), goerr.V("value", v))
		}
		perms = append(perms, model.Permission(s))
	}
	return perms, nil
}
