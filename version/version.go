// Package version is a convenience utility that provides qsm
// consumers with a ready-to-use version command that
// produces versioning information based on flags
// passed at compile time.
//
// Configure the version command
//
// The version command can be just added to your cobra root command.
// At build time, the variables Version and Commit
// can be passed as build flags as shown in the following example:
//
//	go build -X github.com/0rlych1kk4/quantum-safe-multisig/version.Version=1.0 \
//	 -X github.com/0rlych1kk4/quantum-safe-multisig/version.Commit=f0f7b7dab7e36c20b757cebce0e8f4fc5b95de60
package version

import (
	"fmt"
	"runtime"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

var (
	// application's version string
	Version = ""
	// commit
	Commit = ""
)

// Info defines the application version information.
type Info struct {
	Version         string `json:"version" yaml:"version"`
	GitCommit       string `json:"commit" yaml:"commit"`
	GoVersion       string `json:"go_version" yaml:"go_version"`
	SignatureScheme string `json:"signature_scheme" yaml:"signature_scheme"`
}

func NewInfo() Info {
	return Info{
		Version:         Version,
		GitCommit:       Commit,
		GoVersion:       fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
		SignatureScheme: pqc.KeyType,
	}
}

func (vi Info) String() string {
	return fmt.Sprintf(`qsm: %s
git commit: %s
go version: %s
signature scheme: %s
`,
		vi.Version, vi.GitCommit, vi.GoVersion, vi.SignatureScheme)
}
