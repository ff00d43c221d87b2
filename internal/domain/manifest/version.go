package manifest

import "strings"

// DeriveRelease extracts the dotted release from a build version string:
// BSW_VCC_20.0.1 -> 20.0.1. Strings without an underscore are returned as is.
func DeriveRelease(swVersion string) string {
	if swVersion == "" {
		return ""
	}

	if i := strings.LastIndex(swVersion, "_"); i >= 0 {
		return swVersion[i+1:]
	}

	return swVersion
}

// DerivePackageVersion returns the package version for a build version string:
// BSW_VCC_20.0.1 -> 20.0.1.0.
func DerivePackageVersion(swVersion string) string {
	if swVersion == "" {
		return ""
	}

	return DeriveRelease(swVersion) + ".0"
}
