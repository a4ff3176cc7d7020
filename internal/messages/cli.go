package messages

// CLI messages for user-facing commands.
const (
	// RootUse is the CLI command name.
	RootUse = "pkideploy"
	// RootShort is the short description for the root command.
	RootShort         = "Deploy or remove PKI subsystem web application scaffolding"
	RootFlagLogLevel  = "Log level (DEBUG, INFO, WARN, ERROR)"
	RootFlagLogFormat = "Log format (text or json)"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// SpawnUse is the spawn command name.
	SpawnUse   = "spawn"
	SpawnShort = "Run the spawn scriptlets for one subsystem"

	// DestroyUse is the destroy command name.
	DestroyUse   = "destroy"
	DestroyShort = "Run the destroy scriptlets for one subsystem"

	// PlanUse is the plan command usage.
	PlanUse   = "plan <spawn|destroy>"
	PlanShort = "Describe what spawn or destroy would do without changing anything"

	FlagDeploymentFile = "Path to the TOML deployment file"
	FlagSubsystem      = "Subsystem to deploy (CA, KRA, OCSP, TKS, TPS, ACME, EST)"

	CLIDeploymentFileRequired = "a deployment file is required (--file)"
	CLISubsystemRequired      = "a subsystem is required (--subsystem)"
	CLIUnknownOperationFmt    = "unknown operation %q: expected spawn or destroy"
	CLIInvalidLogLevelFmt     = "invalid log level %q: expected DEBUG, INFO, WARN or ERROR"
	CLIInvalidLogFormatFmt    = "invalid log format %q: expected text or json"

	PlanHeaderFmt    = "Plan for %s of %s (instance %s):\n"
	PlanNoActions    = "  (no actions)\n"
	PlanActionFmt    = "  - %s\n"
	PlanScriptletFmt = "%s:\n"
)
