// Package authz builds the in-memory RBAC enforcer guarding admin operations.
package authz

import (
	"fmt"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

// RoleAdmin is granted every action on the objects listed in Config.AdminObjects.
const RoleAdmin = "admin"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

type Config struct {
	// Admins are user ids assigned RoleAdmin.
	Admins []string
	// AdminObjects are the objects RoleAdmin may act on.
	AdminObjects []string
}

// NewEnforcer returns an enforcer whose policies live only in memory.
func NewEnforcer(cfg Config) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz: build model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: create enforcer: %w", err)
	}

	for _, obj := range cfg.AdminObjects {
		if _, err := e.AddPolicy(RoleAdmin, obj, "*"); err != nil {
			return nil, fmt.Errorf("authz: add policy for %q: %w", obj, err)
		}
	}

	for _, userID := range cfg.Admins {
		if _, err := e.AddGroupingPolicy(userID, RoleAdmin); err != nil {
			return nil, fmt.Errorf("authz: assign admin %q: %w", userID, err)
		}
	}

	return e, nil
}
