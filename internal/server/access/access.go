// Package access holds the authorization decisions for Memoir. Every function
// is pure: it inspects an Actor and a target record and returns nil to permit
// or an error wrapping one of the common sentinels to deny.
//
// Callers check existence between authentication and permission, so the
// order seen by clients is 401, then 404, then 403.
package access

import (
	"fmt"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/server/models"
)

// Actor is the identity a request runs as. A nil *Actor is anonymous.
type Actor struct {
	UserID int64
	Role   models.Role
}

// ActorFor builds an Actor from a stored user.
func ActorFor(u *models.User) *Actor {
	return &Actor{UserID: u.ID, Role: u.Role}
}

func (a *Actor) Authenticated() bool {
	return a != nil && a.UserID != 0
}

func (a *Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == models.RoleAdmin
}

// Is reports whether the actor is the user with the given id.
func (a *Actor) Is(userID int64) bool {
	return a.Authenticated() && a.UserID == userID
}

func RequireAuthenticated(a *Actor) error {
	if !a.Authenticated() {
		return common.ErrorUnauthenticated
	}
	return nil
}

func RequireAdmin(a *Actor) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return fmt.Errorf("%w: admin access required", common.ErrorForbidden)
	}
	return nil
}

// CanReadMemory gates reads on visibility. Public memories are open to
// everyone including anonymous actors.
func CanReadMemory(a *Actor, m *models.Memory) error {
	if m.IsPublic() {
		return nil
	}
	if !a.Authenticated() {
		return fmt.Errorf("%w: this memory is private", common.ErrorUnauthenticated)
	}
	if a.Is(m.UserID) || a.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: you don't have permission to view this private memory", common.ErrorForbidden)
}

func CanModifyMemory(a *Actor, m *models.Memory) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.Is(m.UserID) || a.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: you can only change your own memories", common.ErrorForbidden)
}

// CanModifyCategory applies the ownership rule and then rejects defaults,
// which stay immutable even for administrators.
func CanModifyCategory(a *Actor, c *models.Category) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if !c.IsDefault && !c.OwnedBy(a.UserID) && !a.IsAdmin() {
		return fmt.Errorf("%w: you can only change your own categories", common.ErrorForbidden)
	}
	if c.IsDefault {
		return common.ErrorDefaultCategory
	}
	return nil
}

// CanUseCategory decides whether a memory owned by ownerID may reference c.
// Foreign categories are reported as missing so their existence is not
// leaked.
func CanUseCategory(c *models.Category, ownerID int64) error {
	if c == nil || (!c.IsDefault && !c.OwnedBy(ownerID)) {
		return fmt.Errorf("%w: category not found", common.ErrorValidation)
	}
	return nil
}

func CanUpdateProfile(a *Actor, userID int64) error {
	if err := RequireAuthenticated(a); err != nil {
		return err
	}
	if a.Is(userID) || a.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: you can only update your own profile", common.ErrorForbidden)
}

// CanAdminUpdateUser stops an administrator from demoting themselves.
func CanAdminUpdateUser(a *Actor, userID int64, role *models.Role) error {
	if err := RequireAdmin(a); err != nil {
		return err
	}
	if a.Is(userID) && role != nil && *role != models.RoleAdmin {
		return fmt.Errorf("%w: you cannot remove your own admin privileges", common.ErrorSelfAction)
	}
	return nil
}

// CanAdminDeleteUser stops an administrator from deleting their own account.
func CanAdminDeleteUser(a *Actor, userID int64) error {
	if err := RequireAdmin(a); err != nil {
		return err
	}
	if a.Is(userID) {
		return fmt.Errorf("%w: you cannot delete your own admin account", common.ErrorSelfAction)
	}
	return nil
}
