package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeploymentPaths(t *testing.T) {
	d := &Deployment{
		Subsystem:                 "OCSP",
		InstanceConfigurationPath: "/etc/pki/pki-tomcat",
	}
	require.Equal(t, "ocsp", d.SubsystemLower())
	require.Equal(t, "/etc/pki/pki-tomcat/Catalina/localhost/ocsp.xml", d.ContextDescriptorPath())
	require.Equal(t, "/etc/pki/pki-tomcat/.pkideploy-manifest.toml", d.ManifestPath())
	require.Equal(t, "/etc/pki/pki-tomcat/tomcat.conf", d.TomcatConfPath())
}

func TestContextDescriptorName(t *testing.T) {
	tests := map[string]string{
		"CA":   "ca.xml",
		"kra":  "kra.xml",
		"ACME": "acme.xml",
	}
	for subsystem, want := range tests {
		require.Equal(t, want, ContextDescriptorName(subsystem))
	}
}
