package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func validMapping() Mapping {
	return Mapping{
		"pki_skip_installation":             "false",
		"pki_subsystem":                     "CA",
		"pki_tomcat_subsystem_webapps_path": "/inst/ca/webapps",
		"pki_instance_configuration_path":   "/inst/conf",
		"pki_instance_name":                 "pki-tomcat",
		"pki_instance_path":                 "/inst",
	}
}

func TestDecodeAppliesDefaults(t *testing.T) {
	d, err := Decode(validMapping())
	require.NoError(t, err)
	require.False(t, d.SkipInstallation)
	require.Equal(t, DefaultDirPerms, d.DirPerms)
	require.Equal(t, DefaultFilePerms, d.FilePerms)
	require.Equal(t, DefaultSymlinkPerms, d.SymlinkPerms)
	require.Equal(t, []string{"webapp_deployment"}, d.SpawnScriptlets)
	require.Equal(t, []string{"webapp_deployment"}, d.DestroyScriptlets)
	require.Equal(t, filepath.Join(os.TempDir(), "pkideploy-pki-tomcat.lock"), d.LockPath)
	require.Equal(t, "/inst/ca/webapps", d.SubsystemWebappsPath)
	require.Equal(t, "ca", d.SubsystemLower())
	require.Equal(t, "/inst/conf/tomcat.conf", d.TomcatConfPath())
}

func TestDecodeFillsMissingKeysFromDefaults(t *testing.T) {
	d, err := Decode(Mapping{
		"pki_skip_installation":             "True",
		"pki_subsystem":                     "CA",
		"pki_tomcat_subsystem_webapps_path": "/var/lib/pki/pki-tomcat/ca/webapps",
		"pki_instance_configuration_path":   "/etc/pki/pki-tomcat",
	})
	require.NoError(t, err)
	require.True(t, d.SkipInstallation)
	require.Equal(t, "pki-tomcat", d.InstanceName)
	require.Equal(t, "/var/lib/pki/pki-tomcat", d.InstancePath)
	require.Equal(t, "/etc/pki/pki-tomcat/Catalina/localhost/ca.xml", d.ContextDescriptorPath())
	require.Empty(t, d.User)

	d, err = Decode(Mapping{
		"pki_subsystem":     "KRA",
		"pki_instance_name": "pki-other",
		"pki_note":          "50% off",
	})
	require.NoError(t, err)
	require.Equal(t, "/var/lib/pki/pki-other/kra/webapps", d.SubsystemWebappsPath)
	require.Equal(t, "/etc/pki/pki-other", d.InstanceConfigurationPath)
	require.Equal(t, "50% off", d.Mapping["pki_note"])
}

func TestDecodeSkipInstallationSpellings(t *testing.T) {
	for _, value := range []string{"True", "yes", "T", "1"} {
		m := validMapping()
		m["pki_skip_installation"] = value
		d, err := Decode(m)
		require.NoError(t, err, value)
		require.True(t, d.SkipInstallation, value)
	}
	for _, value := range []string{"False", "no", "0", "off", ""} {
		m := validMapping()
		m["pki_skip_installation"] = value
		d, err := Decode(m)
		require.NoError(t, err, value)
		require.False(t, d.SkipInstallation, value)
	}
}

func TestDecodeParsesModesAndLists(t *testing.T) {
	m := validMapping()
	m["pki_dir_perms"] = "0750"
	m["pki_file_perms"] = "0o640"
	m["spawn_scriptlets"] = "webapp_deployment, other"
	m["pki_file_acls"] = "user:pkiuser:rw"
	d, err := Decode(m)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o750), d.DirPerms)
	require.Equal(t, os.FileMode(0o640), d.FilePerms)
	require.Equal(t, []string{"webapp_deployment", "other"}, d.SpawnScriptlets)
	require.Equal(t, []string{"user:pkiuser:rw"}, d.FileACLs)
}

func TestDecodeNormalizesSubsystem(t *testing.T) {
	m := validMapping()
	m["pki_subsystem"] = "kra"
	d, err := Decode(m)
	require.NoError(t, err)
	require.Equal(t, "KRA", d.Subsystem)
}

func TestDecodeKeepsMapping(t *testing.T) {
	m := validMapping()
	m["pki_extra"] = "kept"
	d, err := Decode(m)
	require.NoError(t, err)
	require.Equal(t, "kept", d.Mapping["pki_extra"])
}

func TestDecodeValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Mapping)
		want   string
	}{
		{
			name:   "unknown subsystem",
			mutate: func(m Mapping) { m["pki_subsystem"] = "RA" },
			want:   "pki_subsystem: must be one of CA, KRA, OCSP, TKS, TPS, ACME, EST",
		},
		{
			name:   "relative webapps path",
			mutate: func(m Mapping) { m["pki_tomcat_subsystem_webapps_path"] = "ca/webapps" },
			want:   "pki_tomcat_subsystem_webapps_path: must be an absolute path",
		},
		{
			name:   "missing configuration path",
			mutate: func(m Mapping) { m["pki_instance_configuration_path"] = "" },
			want:   "pki_instance_configuration_path: is required",
		},
		{
			name:   "non numeric uid",
			mutate: func(m Mapping) { m["pki_uid"] = "pkiuser" },
			want:   "pki_uid: failed number validation",
		},
		{
			name:   "mode out of range",
			mutate: func(m Mapping) { m["pki_dir_perms"] = "17777" },
			want:   "pki_dir_perms: failed lte validation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMapping()
			tt.mutate(m)
			_, err := Decode(m)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrConfigValidation))
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeInvalidMode(t *testing.T) {
	m := validMapping()
	m["pki_dir_perms"] = "rwx"
	_, err := Decode(m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid permission mode")
	require.False(t, errors.Is(err, ErrConfigValidation))
}
