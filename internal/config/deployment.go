package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/conn-castle/pki-deploy/internal/messages"
)

// ErrConfigValidation is a sentinel that wraps deployment validation failures
// (as opposed to TOML syntax, filesystem, or interpolation errors).
var ErrConfigValidation = errors.New("deployment validation failed")

// Subsystems lists the subsystem names a deployment may target.
var Subsystems = []string{"CA", "KRA", "OCSP", "TKS", "TPS", "ACME", "EST"}

// Default permission policy applied to deployed directories and their contents.
const (
	DefaultDirPerms     os.FileMode = 0o770
	DefaultFilePerms    os.FileMode = 0o660
	DefaultSymlinkPerms os.FileMode = 0o777
)

// Owner used when neither the deployment nor the instance's tomcat.conf names one.
const (
	DefaultUser  = "pkiuser"
	DefaultGroup = "pkiuser"
)

// DefaultScriptlets is used when a deployment does not name its scriptlets.
var DefaultScriptlets = []string{"webapp_deployment"}

// Mapping is the string-keyed deployment dictionary produced by the loader.
type Mapping map[string]string

// Deployment is the typed view of a deployment mapping.
type Deployment struct {
	SkipInstallation          bool   `mapstructure:"pki_skip_installation"`
	Subsystem                 string `mapstructure:"pki_subsystem" validate:"required,oneof=CA KRA OCSP TKS TPS ACME EST"`
	SubsystemWebappsPath      string `mapstructure:"pki_tomcat_subsystem_webapps_path" validate:"required,abspath"`
	InstanceConfigurationPath string `mapstructure:"pki_instance_configuration_path" validate:"required,abspath"`
	InstanceName              string `mapstructure:"pki_instance_name" validate:"required"`
	InstancePath              string `mapstructure:"pki_instance_path" validate:"required,abspath"`

	// User and Group fall back to the instance's tomcat.conf, then to DefaultUser and DefaultGroup.
	User  string `mapstructure:"pki_user"`
	Group string `mapstructure:"pki_group"`
	// UID and GID take precedence over User and Group when set.
	UID string `mapstructure:"pki_uid" validate:"omitempty,number"`
	GID string `mapstructure:"pki_gid" validate:"omitempty,number"`

	DirPerms     os.FileMode `mapstructure:"pki_dir_perms" validate:"lte=4095"`
	FilePerms    os.FileMode `mapstructure:"pki_file_perms" validate:"lte=4095"`
	SymlinkPerms os.FileMode `mapstructure:"pki_symlink_perms" validate:"lte=4095"`
	DirACLs      []string    `mapstructure:"pki_dir_acls"`
	FileACLs     []string    `mapstructure:"pki_file_acls"`

	LockPath          string   `mapstructure:"pki_lock_path" validate:"omitempty,abspath"`
	SpawnScriptlets   []string `mapstructure:"spawn_scriptlets" validate:"dive,required"`
	DestroyScriptlets []string `mapstructure:"destroy_scriptlets" validate:"dive,required"`

	// Mapping keeps the full dictionary the record was decoded from.
	Mapping Mapping `mapstructure:"-"`
}

// Decode converts a mapping into a validated Deployment. Built-in keys the
// mapping lacks are filled from Defaults; values it carries are used as given.
func Decode(m Mapping) (*Deployment, error) {
	m, err := withDefaults(m)
	if err != nil {
		return nil, err
	}
	d := &Deployment{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decodeHooks(),
		WeaklyTypedInput: true,
		Result:           d,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigDecodeFmt, err)
	}
	if err := decoder.Decode(map[string]string(m)); err != nil {
		return nil, fmt.Errorf(messages.ConfigDecodeFmt, err)
	}
	d.Mapping = m
	ApplyDefaults(d)
	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// withDefaults returns m extended with the built-in keys it lacks, whose
// %(key)s references resolve against m.
func withDefaults(m Mapping) (Mapping, error) {
	r := &resolver{raw: Defaults(), done: make(Mapping, len(m)), active: map[string]bool{}}
	for key, value := range m {
		r.raw[key] = value
		r.done[key] = value
	}
	if _, ok := r.raw["pki_subsystem_type"]; !ok {
		r.raw["pki_subsystem_type"] = strings.ToLower(strings.TrimSpace(m["pki_subsystem"]))
	}
	for key := range r.raw {
		if _, err := r.resolve(key); err != nil {
			return nil, err
		}
	}
	return r.done, nil
}

// ApplyDefaults fills fields the mapping left empty.
func ApplyDefaults(d *Deployment) {
	d.Subsystem = strings.ToUpper(strings.TrimSpace(d.Subsystem))
	if d.DirPerms == 0 {
		d.DirPerms = DefaultDirPerms
	}
	if d.FilePerms == 0 {
		d.FilePerms = DefaultFilePerms
	}
	if d.SymlinkPerms == 0 {
		d.SymlinkPerms = DefaultSymlinkPerms
	}
	if len(d.SpawnScriptlets) == 0 {
		d.SpawnScriptlets = append([]string(nil), DefaultScriptlets...)
	}
	if len(d.DestroyScriptlets) == 0 {
		d.DestroyScriptlets = append([]string(nil), DefaultScriptlets...)
	}
	if d.LockPath == "" && d.InstanceName != "" {
		d.LockPath = filepath.Join(os.TempDir(), "pkideploy-"+d.InstanceName+".lock")
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	})
	return v
}

// Validate checks the deployment against its field constraints.
func Validate(d *Deployment) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf(messages.ConfigInvalidFieldFmt, fe.Field(), describeFieldError(fe)))
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s. %s", ErrConfigValidation, strings.Join(problems, "; "), messages.ConfigValidationGuidance)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return messages.ConfigFieldRequired
	case "oneof":
		return fmt.Sprintf(messages.ConfigFieldOneOfFmt, strings.Join(strings.Fields(fe.Param()), ", "))
	case "abspath":
		return messages.ConfigFieldAbsolutePath
	default:
		return fmt.Sprintf(messages.ConfigFieldInvalidFmt, fe.Tag())
	}
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		boolDecodeHook(),
		fileModeDecodeHook(),
		listDecodeHook(),
	)
}

// boolDecodeHook applies Str2Bool so values like "yes" and "T" decode as true.
func boolDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
			return data, nil
		}
		return Str2Bool(data.(string)), nil
	}
}

// fileModeDecodeHook parses octal permission strings such as "0770".
func fileModeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(os.FileMode(0)) || from.Kind() != reflect.String {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return os.FileMode(0), nil
		}
		raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0o"), "0O")
		mode, err := strconv.ParseUint(raw, 8, 32)
		if err != nil {
			return nil, fmt.Errorf(messages.ConfigInvalidModeFmt, data, err)
		}
		return os.FileMode(mode), nil
	}
}

// listDecodeHook splits comma or whitespace separated values into a slice.
func listDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string(nil)) {
			return data, nil
		}
		return strings.FieldsFunc(data.(string), func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		}), nil
	}
}
