// internal/app/system/authz/roles.go
package authz

// Role is the closed set of portal roles. Parsing any other string yields
// RoleUnknown, which holds no capabilities.
type Role int

const (
	RoleUnknown Role = iota
	RoleFaculty
	RoleEvaluator
	RoleCRO
	RoleAdmin
	RoleSuperAdmin
)

// Canonical role strings as stored on user records.
const (
	RoleNameFaculty    = "faculty"
	RoleNameEvaluator  = "evaluator"
	RoleNameCRO        = "cro"
	RoleNameAdmin      = "admin"
	RoleNameSuperAdmin = "super_admin"
)

// Module identifiers, matched against User.AllowedModules.
const (
	ModuleProjects    = "projects"
	ModuleIncentives  = "incentives"
	ModuleEMR         = "emr"
	ModuleRecruitment = "recruitment"
	ModuleDocuments   = "documents"
	ModuleStaffData   = "staff_data"
	ModuleModuleAdmin = "module_admin"
)

// ParseRole maps a stored role string to its Role value.
func ParseRole(s string) Role {
	switch s {
	case RoleNameFaculty:
		return RoleFaculty
	case RoleNameEvaluator:
		return RoleEvaluator
	case RoleNameCRO:
		return RoleCRO
	case RoleNameAdmin:
		return RoleAdmin
	case RoleNameSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleUnknown
	}
}

// String returns the canonical stored form of the role.
func (r Role) String() string {
	switch r {
	case RoleFaculty:
		return RoleNameFaculty
	case RoleEvaluator:
		return RoleNameEvaluator
	case RoleCRO:
		return RoleNameCRO
	case RoleAdmin:
		return RoleNameAdmin
	case RoleSuperAdmin:
		return RoleNameSuperAdmin
	default:
		return "unknown"
	}
}

// ModulesFor is the exhaustive role -> default module capability table.
// A user's effective modules are these defaults plus any explicitly granted
// AllowedModules entries.
func ModulesFor(r Role) []string {
	switch r {
	case RoleFaculty:
		return []string{ModuleProjects, ModuleIncentives, ModuleEMR, ModuleRecruitment}
	case RoleEvaluator:
		return []string{ModuleProjects}
	case RoleCRO:
		return []string{ModuleProjects, ModuleEMR, ModuleStaffData, ModuleDocuments}
	case RoleAdmin:
		return []string{
			ModuleProjects, ModuleIncentives, ModuleEMR, ModuleRecruitment,
			ModuleDocuments, ModuleStaffData,
		}
	case RoleSuperAdmin:
		return []string{
			ModuleProjects, ModuleIncentives, ModuleEMR, ModuleRecruitment,
			ModuleDocuments, ModuleStaffData, ModuleModuleAdmin,
		}
	case RoleUnknown:
		return nil
	}
	return nil
}

// HasModule reports whether the role's defaults or the explicit grant list
// include the given module.
func HasModule(r Role, granted []string, module string) bool {
	for _, m := range ModulesFor(r) {
		if m == module {
			return true
		}
	}
	for _, m := range granted {
		if m == module {
			return true
		}
	}
	return false
}

// ValidModule reports whether the string names a known module.
func ValidModule(s string) bool {
	switch s {
	case ModuleProjects, ModuleIncentives, ModuleEMR, ModuleRecruitment,
		ModuleDocuments, ModuleStaffData, ModuleModuleAdmin:
		return true
	}
	return false
}
