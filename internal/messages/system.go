package messages

// System messages for filesystem, instance and lock operations.
const (
	// SysconfigLineErrorFmt formats sysconfig line errors.
	SysconfigLineErrorFmt            = "line %d: %w"
	SysconfigReadFailedFmt           = "failed to read configuration content: %w"
	SysconfigExpectedKeyValue        = "expected KEY=VALUE"
	SysconfigUnterminatedQuotedValue = "unterminated quoted value"
	SysconfigInvalidQuotedSuffix     = "invalid trailing characters after quoted value"

	// FsutilStatFmt formats stat failures.
	FsutilStatFmt   = "failed to stat %s: %w"
	FsutilRemoveFmt = "failed to remove %s: %w"

	// DirectoryPathRequired indicates an empty path was passed to the directory utility.
	DirectoryPathRequired    = "directory path is required"
	DirectoryNotDirectoryFmt = "%s exists but is not a directory"
	DirectoryCreateFmt       = "failed to create directory %s: %w"
	DirectoryChmodFmt        = "failed to set permissions %#o on %s: %w"
	DirectoryChownFmt        = "failed to set ownership %d:%d on %s: %w"
	DirectoryWalkFmt         = "failed to walk %s: %w"
	DirectoryACLFmt          = "failed to apply ACL %q to %s: %w"
	DirectoryLookupUserFmt   = "failed to look up user %s: %w"
	DirectoryLookupGroupFmt  = "failed to look up group %s: %w"

	// InstanceNameRequired indicates the instance name is missing.
	InstanceNameRequired   = "instance name is required"
	InstanceNotFoundFmt    = "instance %s not found at %s"
	InstanceNotDirFmt      = "instance path %s is not a directory"
	InstanceStatFmt        = "failed to stat instance path %s: %w"
	InstanceReadConfFmt    = "failed to read %s: %w"
	InstanceInvalidConfFmt = "invalid instance configuration %s: %w"

	// LockOpenFmt formats lock open errors.
	LockOpenFmt      = "open lock %s: %w"
	LockFmt          = "lock %s: %w"
	LockTimeoutFmt   = "timed out waiting for lock after %s"
	LockCreateDirFmt = "create lock directory %s: %w"
)
