package logger

// Standard field keys for structured logging.
const (
	KeyPath       = "path"
	KeySubsystem  = "subsystem"
	KeyInstance   = "instance"
	KeyScriptlet  = "scriptlet"
	KeyOperation  = "operation"
	KeyMode       = "mode"
	KeyUID        = "uid"
	KeyGID        = "gid"
	KeyACL        = "acl"
	KeyError      = "error"
	KeyLockPath   = "lock_path"
	KeyRecordSize = "records"
)
