package rbac

// RolePermissions is the default policy. Ownership of a course is checked
// by the services; these only gate which role may attempt an action.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"course:register",
		"quiz:view",
		"quiz:submit",
		"result:view-own",
		"notification:view",
		"proctor:log",
	},
	"professor": {
		"course:create",
		"course:view",
		"course:roster",
		"quiz:view",
		"quiz:create",
		"quiz:update",
		"quiz:delete",
		"question:manage",
		"result:view-course",
		"proctor:view",
		"notification:view",
	},
	"admin": {
		"*",
	},
}
