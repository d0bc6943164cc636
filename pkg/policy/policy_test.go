package policy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/model"
	"github.com/soulthread/memoria/pkg/policy"
)

func TestDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	p, err := policy.New(ctx)
	gt.NoError(t, err)

	testCases := map[string]struct {
		tier  model.LicenseTier
		perms []model.Permission
	}{
		"trial": {
			tier:  model.LicenseTierTrial,
			perms: []model.Permission{model.PermissionReadMemories, model.PermissionReadBasicAnalytics},
		},
		"standard": {
			tier: model.LicenseTierStandard,
			perms: []model.Permission{
				model.PermissionReadMemories,
				model.PermissionReadAnalytics,
				model.PermissionReadEmbeddings,
			},
		},
		"premium": {
			tier: model.LicenseTierPremium,
			perms: []model.Permission{
				model.PermissionReadMemories,
				model.PermissionReadAnalytics,
				model.PermissionReadEmbeddings,
				model.PermissionReadDetailedMeta,
				model.PermissionExportData,
			},
		},
		"unknown tier falls back to trial": {
			tier:  model.LicenseTier("enterprise"),
			perms: []model.Permission{model.PermissionReadMemories, model.PermissionReadBasicAnalytics},
		},
		"empty tier falls back to trial": {
			tier:  "",
			perms: []model.Permission{model.PermissionReadMemories, model.PermissionReadBasicAnalytics},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			perms, err := p.Grant(ctx, tc.tier)
			gt.NoError(t, err)
			gt.Equal(t, perms, tc.perms)
		})
	}
}

func TestLoadPolicyDir(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	custom := `package permissions

default grant := ["read:memories"]

grant := ["read:memories", "read:embeddings"] if input.tier == "trial"
`
	gt.NoError(t, os.WriteFile(filepath.Join(tmpDir, "custom.rego"), []byte(custom), 0644))

	p, err := policy.Load(ctx, tmpDir)
	gt.NoError(t, err)

	perms, err := p.Grant(ctx, model.LicenseTierTrial)
	gt.NoError(t, err)
	gt.Equal(t, perms, []model.Permission{model.PermissionReadMemories, model.PermissionReadEmbeddings})

	perms, err = p.Grant(ctx, model.LicenseTierPremium)
	gt.NoError(t, err)
	gt.Equal(t, perms, []model.Permission{model.PermissionReadMemories})
}

func TestLoadPolicyDirErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty directory", func(t *testing.T) {
		_, err := policy.Load(ctx, t.TempDir())
		gt.Error(t, err)
	})

	t.Run("invalid rego", func(t *testing.T) {
		tmpDir := t.TempDir()
		gt.NoError(t, os.WriteFile(filepath.Join(tmpDir, "broken.rego"), []byte("package permissions\n\ngrant := ["), 0644))
		_, err := policy.Load(ctx, tmpDir)
		gt.Error(t, err)
	})
}
