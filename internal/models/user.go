package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleLecturer      UserRole = "LECTURER"
	RoleCoordinator   UserRole = "COORDINATOR"
	RoleStaffRegistry UserRole = "STAFF_REGISTRY"
	RoleRegistry      UserRole = "REGISTRY"
)

// Actor is an already-authenticated user together with the centers it is scoped to.
// HomeCenterID is set for lecturers, CoordinatedCenterID for coordinators and
// AssignedCenterIDs for staff registry users (possibly empty).
type Actor struct {
	ID                  string   `json:"id"`
	Role                UserRole `json:"role"`
	FullName            string   `json:"fullName,omitempty"`
	HomeCenterID        *string  `json:"homeCenterId,omitempty"`
	CoordinatedCenterID *string  `json:"coordinatedCenterId,omitempty"`
	AssignedCenterIDs   []string `json:"assignedCenterIds,omitempty"`
}

// Center is an organisational unit claims are filed against.
type Center struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
