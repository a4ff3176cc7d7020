package messages

// Deployment messages for scriptlets and the orchestrator.
const (
	// ScriptletUnknownFmt formats unknown scriptlet names.
	ScriptletUnknownFmt       = "%w: %s"
	ScriptletSpawnFailedFmt   = "scriptlet %s spawn failed: %w"
	ScriptletDestroyFailedFmt = "scriptlet %s destroy failed: %w"

	// WebappSkipping is logged when skip-installation is set.
	WebappSkipping       = "Skipping webapp creation"
	WebappDeployingFmt   = "Deploying /%s web application"
	WebappUndeployingFmt = "Undeploying /%s web application"
	WebappRemoveContext  = "Removing context descriptor"
	WebappContextAbsent  = "Context descriptor already removed"

	// DeployerConfigRequired indicates a deployment record is missing.
	DeployerConfigRequired    = "deployment is required"
	DeployerDirectoryRequired = "directory utility is required"
	DeployerInstanceRequired  = "instance is required"
	DeployerStartFmt          = "Running %s for %s"
	DeployerScriptletFmt      = "Running scriptlet %s"
	DeployerScriptletFailed   = "Scriptlet failed"
	DeployerWriteManifestFmt  = "failed to write manifest %s: %w"
	DeployerEncodeManifestFmt = "failed to encode manifest: %w"
	DeployerManifestWritten   = "Wrote deployment manifest"
	DeployerManifestRemoved   = "Removed deployment manifest"
	DeployerReadManifestFmt   = "failed to read manifest %s: %w"
	DeployerDecodeManifestFmt = "invalid manifest %s: %w"
	DeployerManifestDirFmt    = "failed to create manifest directory %s: %w"
	DeployerOwnerFromDefaults = "Instance not loaded, using default owner"
	DeployerLockAcquired      = "Acquired deployment lock"
	DeployerFinishedFmt       = "Finished %s for %s"

	// PlanSkipInstallation describes a skipped spawn.
	PlanSkipInstallation = "skip installation is set; nothing to do"
	PlanLoadInstanceFmt  = "load instance %s from %s"
	PlanCreateDirFmt     = "create directory %s (mode %#o, owner %s)"
	PlanDirExistsFmt     = "directory %s already exists"
	PlanSetModeFmt       = "set ownership and permissions recursively on %s"
	PlanApplyACLFmt      = "apply ACL %s"
	PlanRemoveFileFmt    = "remove %s"
	PlanFileAbsentFmt    = "%s is absent; nothing to remove"
)
