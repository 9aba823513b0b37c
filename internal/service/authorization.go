package service

import (
	"github.com/noah-isme/claims-api/internal/models"
)

// ScopePredicate captures what one role may see and act on. Both the read-side
// filter and the write-side guard go through Covers, so they cannot disagree.
type ScopePredicate interface {
	// Covers reports whether the claim lies inside the actor's scope.
	Covers(actor *models.Actor, claim *models.Claim) bool
	// MayProcess reports whether the role can approve or reject claims it covers.
	MayProcess() bool
	// Centers returns the centers the actor may report on; unrestricted means every center.
	Centers(actor *models.Actor) (ids []string, unrestricted bool)
	// Narrow pushes the scope into a storage filter. It returns false when nothing can match.
	Narrow(actor *models.Actor, filter *models.ClaimFilter) bool
}

type registryScope struct{}

func (registryScope) Covers(*models.Actor, *models.Claim) bool { return true }
func (registryScope) MayProcess() bool                         { return true }
func (registryScope) Centers(*models.Actor) ([]string, bool)   { return nil, true }
func (registryScope) Narrow(*models.Actor, *models.ClaimFilter) bool {
	return true
}

type coordinatorScope struct{}

func (coordinatorScope) Covers(actor *models.Actor, claim *models.Claim) bool {
	return actor.CoordinatedCenterID != nil && claim.CenterID == *actor.CoordinatedCenterID
}

func (coordinatorScope) MayProcess() bool { return true }

func (coordinatorScope) Centers(actor *models.Actor) ([]string, bool) {
	if actor.CoordinatedCenterID == nil {
		return []string{}, false
	}
	return []string{*actor.CoordinatedCenterID}, false
}

func (s coordinatorScope) Narrow(actor *models.Actor, filter *models.ClaimFilter) bool {
	ids, _ := s.Centers(actor)
	return narrowCenters(ids, filter)
}

type staffRegistryScope struct{}

func (staffRegistryScope) Covers(actor *models.Actor, claim *models.Claim) bool {
	for _, id := range actor.AssignedCenterIDs {
		if id == claim.CenterID {
			return true
		}
	}
	return false
}

func (staffRegistryScope) MayProcess() bool { return true }

func (staffRegistryScope) Centers(actor *models.Actor) ([]string, bool) {
	ids := make([]string, len(actor.AssignedCenterIDs))
	copy(ids, actor.AssignedCenterIDs)
	return ids, false
}

func (s staffRegistryScope) Narrow(actor *models.Actor, filter *models.ClaimFilter) bool {
	ids, _ := s.Centers(actor)
	return narrowCenters(ids, filter)
}

type lecturerScope struct{}

func (lecturerScope) Covers(actor *models.Actor, claim *models.Claim) bool {
	return claim.SubmittedByID == actor.ID
}

func (lecturerScope) MayProcess() bool { return false }

func (lecturerScope) Centers(*models.Actor) ([]string, bool) { return []string{}, false }

func (lecturerScope) Narrow(actor *models.Actor, filter *models.ClaimFilter) bool {
	if filter.SubmittedByID != "" && filter.SubmittedByID != actor.ID {
		return false
	}
	filter.SubmittedByID = actor.ID
	return true
}

func narrowCenters(scope []string, filter *models.ClaimFilter) bool {
	if len(scope) == 0 {
		return false
	}
	if filter.CenterIDs == nil {
		filter.CenterIDs = scope
		return true
	}
	allowed := make(map[string]struct{}, len(scope))
	for _, id := range scope {
		allowed[id] = struct{}{}
	}
	kept := make([]string, 0, len(filter.CenterIDs))
	for _, id := range filter.CenterIDs {
		if _, ok := allowed[id]; ok {
			kept = append(kept, id)
		}
	}
	filter.CenterIDs = kept
	return len(kept) > 0
}

// AuthorizationResolver maps each role to its ScopePredicate. Unknown roles and nil actors see nothing.
type AuthorizationResolver struct {
	predicates map[models.UserRole]ScopePredicate
}

// NewAuthorizationResolver builds the resolver with the default per-role predicates.
func NewAuthorizationResolver() *AuthorizationResolver {
	return &AuthorizationResolver{predicates: map[models.UserRole]ScopePredicate{
		models.RoleRegistry:      registryScope{},
		models.RoleCoordinator:   coordinatorScope{},
		models.RoleStaffRegistry: staffRegistryScope{},
		models.RoleLecturer:      lecturerScope{},
	}}
}

func (r *AuthorizationResolver) predicate(actor *models.Actor) (ScopePredicate, bool) {
	if r == nil || actor == nil {
		return nil, false
	}
	p, ok := r.predicates[actor.Role]
	return p, ok
}

// CanView reports whether the actor may read the claim.
func (r *AuthorizationResolver) CanView(actor *models.Actor, claim *models.Claim) bool {
	p, ok := r.predicate(actor)
	if !ok || claim == nil {
		return false
	}
	return p.Covers(actor, claim)
}

// CanProcess reports whether the actor may approve or reject the claim.
func (r *AuthorizationResolver) CanProcess(actor *models.Actor, claim *models.Claim) bool {
	p, ok := r.predicate(actor)
	if !ok || claim == nil {
		return false
	}
	return p.MayProcess() && p.Covers(actor, claim)
}

// CanDelete reports whether the actor may use the administrative delete override.
func (r *AuthorizationResolver) CanDelete(actor *models.Actor) bool {
	return actor != nil && actor.Role == models.RoleRegistry
}

// FilterVisible keeps, in order, exactly the claims CanView accepts.
func (r *AuthorizationResolver) FilterVisible(actor *models.Actor, claims []models.Claim) []models.Claim {
	visible := make([]models.Claim, 0, len(claims))
	for i := range claims {
		if r.CanView(actor, &claims[i]) {
			visible = append(visible, claims[i])
		}
	}
	return visible
}

// VisibleCenters returns the centers the actor may report on.
func (r *AuthorizationResolver) VisibleCenters(actor *models.Actor) (ids []string, unrestricted bool) {
	p, ok := r.predicate(actor)
	if !ok {
		return []string{}, false
	}
	return p.Centers(actor)
}

// Narrow restricts filter to the actor's scope. It returns false when no claim can match.
func (r *AuthorizationResolver) Narrow(actor *models.Actor, filter *models.ClaimFilter) bool {
	p, ok := r.predicate(actor)
	if !ok || filter == nil {
		return false
	}
	return p.Narrow(actor, filter)
}
