package classify

import (
	"path/filepath"
	"strings"

	"github.com/subworks/subflow/pkg/file"
)

// Rewrite computes the output path for one subtitle: the stem with any
// trailing language token removed, the target code inserted before the
// extension. Pure function of (path, targetCode); never touches the
// filesystem. Idempotent: rewriting an already-rewritten name with the
// same target yields the same name.
func Rewrite(path, targetCode string) (RewritePlan, error) {
	f, err := Parse(path)
	if err != nil {
		return RewritePlan{}, err
	}
	return PlanFile(f, targetCode), nil
}

// PlanFile builds the rewrite plan for an already-parsed file.
func PlanFile(f SubtitleFile, targetCode string) RewritePlan {
	clean, token := stripTrailingLangToken(file.Stem(f.Path))

	code := strings.ToLower(strings.TrimSpace(targetCode))
	output := filepath.Join(filepath.Dir(f.Path), clean+"."+code+f.Ext)

	return RewritePlan{
		File:       f,
		OutputPath: output,
		Changed:    token != "",
	}
}

// PlanGroup builds rewrite plans for every member of a group, preserving
// member order.
func PlanGroup(group MediaGroup, targetCode string) []RewritePlan {
	plans := make([]RewritePlan, 0, len(group.Files))
	for _, f := range group.Files {
		plans = append(plans, PlanFile(f, targetCode))
	}
	return plans
}
