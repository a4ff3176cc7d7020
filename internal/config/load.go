package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/pki-deploy/internal/messages"
)

// TomcatSection names the table holding instance-wide overrides.
const TomcatSection = "Tomcat"

// pathSuffix marks keys whose values are filesystem paths.
const pathSuffix = "_path"

// Defaults returns the built-in mapping every deployment file is layered over.
func Defaults() Mapping {
	return Mapping{
		"pki_instance_name":                 "pki-tomcat",
		"pki_instance_path":                 "/var/lib/pki/%(pki_instance_name)s",
		"pki_instance_configuration_path":   "/etc/pki/%(pki_instance_name)s",
		"pki_tomcat_subsystem_webapps_path": "%(pki_instance_path)s/%(pki_subsystem_type)s/webapps",
		"pki_skip_installation":             "False",
		"pki_dir_perms":                     "0770",
		"pki_file_perms":                    "0660",
		"pki_symlink_perms":                 "0777",
		"spawn_scriptlets":                  "webapp_deployment",
		"destroy_scriptlets":                "webapp_deployment",
	}
}

// Load reads the TOML deployment file at path and returns the typed deployment for subsystem.
func Load(path string, subsystem string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigMissingFileFmt, path, err)
	}
	m, err := ParseMapping(data, path, subsystem)
	if err != nil {
		return nil, err
	}
	return Decode(m)
}

// ParseMapping layers the built-in defaults, the file's top-level keys, the
// [Tomcat] table and the subsystem's table, then resolves %(key)s references.
// data is the TOML content; source is used in error messages.
func ParseMapping(data []byte, source string, subsystem string) (Mapping, error) {
	subsystem = strings.ToUpper(strings.TrimSpace(subsystem))
	if subsystem == "" {
		return nil, fmt.Errorf(messages.ConfigSubsystemRequired)
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf(messages.ConfigInvalidFileFmt, source, err)
	}

	merged := Defaults()
	tables := make(map[string]map[string]any)
	for key, value := range doc {
		if table, ok := value.(map[string]any); ok {
			tables[strings.ToUpper(key)] = table
			continue
		}
		str, err := scalarString(value)
		if err != nil {
			return nil, fmt.Errorf(messages.ConfigUnsupportedValueFmt, source, key, value)
		}
		merged[strings.ToLower(key)] = str
	}
	for _, name := range []string{strings.ToUpper(TomcatSection), subsystem} {
		table, ok := tables[name]
		if !ok {
			continue
		}
		for key, value := range table {
			str, err := scalarString(value)
			if err != nil {
				return nil, fmt.Errorf(messages.ConfigUnsupportedTableFmt, source, name, key)
			}
			merged[strings.ToLower(key)] = str
		}
	}
	merged["pki_subsystem"] = subsystem
	merged["pki_subsystem_type"] = strings.ToLower(subsystem)

	resolved, err := Interpolate(merged)
	if err != nil {
		return nil, err
	}
	if err := expandHomePaths(resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// scalarString renders a TOML scalar or an array of scalars as a mapping value.
// Arrays are joined with commas so list-valued keys decode as slices.
func scalarString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if _, nested := item.([]any); nested {
				return "", fmt.Errorf("nested array")
			}
			str, err := scalarString(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, str)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported type %T", value)
	}
}

// expandHomePaths expands a leading ~ in every *_path value.
func expandHomePaths(m Mapping) error {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !strings.HasSuffix(key, pathSuffix) || !strings.HasPrefix(m[key], "~") {
			continue
		}
		expanded, err := homedir.Expand(m[key])
		if err != nil {
			return fmt.Errorf(messages.ConfigExpandHomeFmt, key, err)
		}
		m[key] = expanded
	}
	return nil
}
