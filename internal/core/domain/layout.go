package domain

import "path/filepath"

const (
	// BuildFileName is the preferred name of the build description.
	BuildFileName = "pyrun.yaml"

	// EnvFileName is the name of the dotenv file read from the project root.
	EnvFileName = ".env"

	// LocalEnvFileName is read after EnvFileName and overrides it.
	LocalEnvFileName = ".env.local"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// BuildFileNames lists the build description names looked up in each
// directory, in order of preference.
func BuildFileNames() []string {
	return []string{BuildFileName, "pyrun.yml", "pyrun.jsonc", "pyrun.json"}
}

// EnvFilePath returns the path of the dotenv file for a project root.
func EnvFilePath(root string) string {
	return filepath.Join(root, EnvFileName)
}

// EnvFilePaths returns the dotenv files of a project root, lowest
// precedence first.
func EnvFilePaths(root string) []string {
	return []string{EnvFilePath(root), filepath.Join(root, LocalEnvFileName)}
}
