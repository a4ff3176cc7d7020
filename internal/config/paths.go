package config

import (
	"path/filepath"
	"strings"
)

// ContextDescriptorName returns the servlet-container context descriptor file name for a subsystem.
func ContextDescriptorName(subsystem string) string {
	return strings.ToLower(subsystem) + ".xml"
}

// ContextDescriptorPath returns <instance-config-path>/Catalina/localhost/<subsystem>.xml.
func (d *Deployment) ContextDescriptorPath() string {
	return filepath.Join(d.InstanceConfigurationPath, "Catalina", "localhost", ContextDescriptorName(d.Subsystem))
}

// ManifestPath returns where the orchestrator records what a spawn created.
func (d *Deployment) ManifestPath() string {
	return filepath.Join(d.InstanceConfigurationPath, ".pkideploy-manifest.toml")
}

// TomcatConfPath returns the instance's tomcat.conf path.
func (d *Deployment) TomcatConfPath() string {
	return filepath.Join(d.InstanceConfigurationPath, "tomcat.conf")
}

// SubsystemLower returns the subsystem name as used in URLs and file names.
func (d *Deployment) SubsystemLower() string {
	return strings.ToLower(d.Subsystem)
}
