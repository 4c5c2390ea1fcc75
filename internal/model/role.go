package model

// Role is the tagged caller role carried in auth claims. Authorization is
// decided by the permission table below, never by ad-hoc role-string lists.
type Role string

const (
	RoleCandidate     Role = "candidate"
	RoleOfficer       Role = "assessment_officer"
	RoleManager       Role = "manager"
	RoleAdministrator Role = "administrator"
)

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionTestsTake allows starting sessions and submitting answers.
	PermissionTestsTake Permission = "tests:take"

	// PermissionTestsStartForCandidate allows staff to start a session on a
	// candidate's behalf.
	PermissionTestsStartForCandidate Permission = "tests:start_for_candidate"

	// PermissionTestsExtendTime allows extending or resetting a session deadline.
	PermissionTestsExtendTime Permission = "tests:extend_time"

	// PermissionTestsReadResults allows viewing test results.
	PermissionTestsReadResults Permission = "tests:read_results"

	// PermissionStagesEvaluate allows scoring yard/road practical stages.
	PermissionStagesEvaluate Permission = "stages:evaluate"

	// PermissionStagesAssignOfficer allows assigning officers to practical stages.
	PermissionStagesAssignOfficer Permission = "stages:assign_officer"

	// PermissionSessionsMonitor allows streaming live session state.
	PermissionSessionsMonitor Permission = "sessions:monitor"
)

// rolePermissions is the authoritative role → permission table.
var rolePermissions = map[Role][]Permission{
	RoleCandidate: {
		PermissionTestsTake,
	},
	RoleOfficer: {
		PermissionTestsExtendTime,
		PermissionTestsReadResults,
		PermissionStagesEvaluate,
		PermissionSessionsMonitor,
	},
	RoleManager: {
		PermissionTestsStartForCandidate,
		PermissionTestsExtendTime,
		PermissionTestsReadResults,
		PermissionStagesEvaluate,
		PermissionStagesAssignOfficer,
		PermissionSessionsMonitor,
	},
	RoleAdministrator: {
		PermissionTestsStartForCandidate,
		PermissionTestsExtendTime,
		PermissionTestsReadResults,
		PermissionStagesEvaluate,
		PermissionStagesAssignOfficer,
		PermissionSessionsMonitor,
	},
}

// PermissionsFor returns the permission codes granted to a role.
func PermissionsFor(role Role) []string {
	perms := rolePermissions[role]
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = string(p)
	}
	return codes
}

// IsStaff reports whether the role belongs to authority staff.
func (r Role) IsStaff() bool {
	return r == RoleOfficer || r == RoleManager || r == RoleAdministrator
}
