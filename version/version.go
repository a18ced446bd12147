package version

var (
	// SQL2DWVerMajor is the major version of SQL2DW
	SQL2DWVerMajor = 0
	// SQL2DWVerMinor is the minor version of SQL2DW
	SQL2DWVerMinor = 1
	// SQL2DWVerPatch is the patch version of SQL2DW
	SQL2DWVerPatch = 0
	// SQL2DWVerName is an alternative name of the version
	SQL2DWVerName = "SQL2DW"
	// GitHash is the current git commit hash
	GitHash = "Unknown"
	// GitRef is the current git reference name (branch or tag)
	GitRef = "Unknown"
)
