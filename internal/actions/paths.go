package actions

import "path/filepath"

// OutputDir is <dist>/actions for the default package and
// <dist>/actions/<pkg> otherwise.
func OutputDir(dist string, t Target) string {
	if t.Default {
		return filepath.Join(dist, "actions")
	}
	return filepath.Join(dist, "actions", t.Package)
}

// TempDir is the staging directory archived into ArchivePath.
func TempDir(dist string, t Target) string {
	return filepath.Join(OutputDir(dist, t), t.Action+"-temp")
}

func ArchivePath(dist string, t Target) string {
	return filepath.Join(OutputDir(dist, t), t.Action+".zip")
}
