package model

// Permission enumerates admin capability codes embedded in JWT claims.
type Permission string

const (
	PermissionExamsRead        Permission = "exams.read"
	PermissionExamsWrite       Permission = "exams.write"
	PermissionTestsRead        Permission = "tests.read"
	PermissionTestsWrite       Permission = "tests.write"
	PermissionCredentialsIssue Permission = "credentials.issue"
	PermissionSessionsRead     Permission = "sessions.read"
	PermissionSessionsPurge    Permission = "sessions.purge"
	PermissionQueueManage      Permission = "queue.manage"
	PermissionReportsRead      Permission = "reports.read"
	PermissionUsersWrite       Permission = "users.write"
)

// RolePermissions maps roles to their capability set. Super admins hold
// everything; examiners manage content and credentials but cannot purge.
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionExamsRead, PermissionExamsWrite,
		PermissionTestsRead, PermissionTestsWrite,
		PermissionCredentialsIssue,
		PermissionSessionsRead, PermissionSessionsPurge,
		PermissionQueueManage,
		PermissionReportsRead,
		PermissionUsersWrite,
	},
	RoleExaminer: {
		PermissionExamsRead, PermissionExamsWrite,
		PermissionTestsRead, PermissionTestsWrite,
		PermissionCredentialsIssue,
		PermissionSessionsRead,
		PermissionReportsRead,
	},
}

// PermissionsFor returns the permission codes for a role as plain strings.
func PermissionsFor(role Role) []string {
	perms := RolePermissions[role]
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}
