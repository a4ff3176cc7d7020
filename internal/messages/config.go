package messages

// Config messages for loading and validating a deployment.
const (
	// ConfigMissingFileFmt formats missing deployment file errors.
	ConfigMissingFileFmt      = "missing deployment file %s: %w"
	ConfigInvalidFileFmt      = "invalid deployment file %s: %w"
	ConfigUnsupportedValueFmt = "%s: key %s has unsupported value type %T"
	ConfigUnsupportedTableFmt = "%s: table %s must only contain scalar values (key %s)"
	ConfigSubsystemRequired   = "subsystem is required"
	ConfigUnknownReferenceFmt = "key %s references undefined key %s"
	ConfigReferenceCycleFmt   = "key %s has a circular reference through %s"
	ConfigUnterminatedRefFmt  = "key %s has an unterminated %%(...)s reference"
	ConfigStrayPercentFmt     = "key %s: '%%' must be followed by '%%' or '(' in %q"
	ConfigExpandHomeFmt       = "expand home directory in %s: %w"
	ConfigDecodeFmt           = "decode deployment: %w"
	ConfigInvalidFieldFmt     = "%s: %s"
	ConfigInvalidModeFmt      = "invalid permission mode %q: %w"
	ConfigInvalidIDFmt        = "invalid numeric id %q: %w"
	ConfigValidationGuidance  = "Fix the deployment file and retry."
	ConfigFieldRequired       = "is required"
	ConfigFieldOneOfFmt       = "must be one of %s"
	ConfigFieldAbsolutePath   = "must be an absolute path"
	ConfigFieldInvalidFmt     = "failed %s validation"
)
