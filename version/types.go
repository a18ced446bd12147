package version

import (
	"fmt"
	"runtime"
)

// SQL2DWVersion is the semver of SQL2DW
type SQL2DWVersion struct {
	major int
	minor int
	patch int
	name  string
}

// NewSQL2DWVersion creates a SQL2DWVersion object
func NewSQL2DWVersion() *SQL2DWVersion {
	return &SQL2DWVersion{
		major: SQL2DWVerMajor,
		minor: SQL2DWVerMinor,
		patch: SQL2DWVerPatch,
		name:  SQL2DWVerName,
	}
}

// Name returns the alternative name of SQL2DWVersion
func (v *SQL2DWVersion) Name() string {
	return v.name
}

// SemVer returns SQL2DWVersion in semver format
func (v *SQL2DWVersion) SemVer() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// String converts SQL2DWVersion to a string
func (v *SQL2DWVersion) String() string {
	return fmt.Sprintf("%s %s\n%s", v.SemVer(), v.name, NewSQL2DWBuildInfo())
}

// SQL2DWBuild is the info of building environment
type SQL2DWBuild struct {
	GitHash   string `json:"gitHash"`
	GitRef    string `json:"gitRef"`
	GoVersion string `json:"goVersion"`
}

// NewSQL2DWBuildInfo creates a SQL2DWBuild object
func NewSQL2DWBuildInfo() *SQL2DWBuild {
	return &SQL2DWBuild{
		GitHash:   GitHash,
		GitRef:    GitRef,
		GoVersion: runtime.Version(),
	}
}

// String converts SQL2DWBuild to a string
func (v *SQL2DWBuild) String() string {
	return fmt.Sprintf("Go Version: %s\nGit Ref: %s\nGitHash: %s", v.GoVersion, v.GitRef, v.GitHash)
}
