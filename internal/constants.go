package internal

const (
	DotEnvPath    = "./.env"
	ConfigPath    = "config.json"
	MigrationsDir = "migrations"

	// Record type tags for persisted projects and branch jobs. They are
	// registered once at start up and must never change.
	ProjectKind   = "freestyle-multibranch"
	BranchJobKind = "freestyle-branch"

	ControllerNodeName = "controller"
	DefaultMarkerFile  = "marker.txt"
)
