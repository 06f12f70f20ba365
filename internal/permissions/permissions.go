package permissions

import (
	"fmt"

	"robotmk/internal/plan"
	"robotmk/internal/session"
	"robotmk/pkg/logging"
)

// Granter adjusts access rights on filesystem paths.
type Granter interface {
	// GrantFullAccess gives user recursive full control over path.
	GrantFullAccess(user, path string) error
	// ResetAccess replaces explicit rights on path with inherited ones.
	ResetAccess(path string) error
	// Grant gives user the given permissions on path.
	Grant(user, path, permissions string, extraArgs ...string) error
}

// GrantToAllPlanUsers grants permissions on path once per distinct user
// among plans. Plans of a user whose grant failed are removed and their
// failure detail is returned keyed by plan ID. Plans running as the current
// user always survive.
func GrantToAllPlanUsers(granter Granter, path string, plans []plan.Plan, permissions string, extraArgs ...string) ([]plan.Plan, map[string]string) {
	var survivors []plan.Plan
	failures := make(map[string]string)

	for _, group := range plan.BySession(plans) {
		user, ok := group.Session.(session.UserSession)
		if !ok {
			survivors = append(survivors, group.Plans...)
			continue
		}
		if err := granter.Grant(user.UserName, path, permissions, extraArgs...); err != nil {
			err = fmt.Errorf("adjusting permissions of %s for user `%s` failed: %w", path, user.UserName, err)
			logging.Error("Setup", err, "Permission grant failed")
			for _, p := range group.Plans {
				failures[p.ID] = err.Error()
			}
			continue
		}
		survivors = append(survivors, group.Plans...)
	}
	return survivors, failures
}
