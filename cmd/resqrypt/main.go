// ResQrypt encrypts and decrypts files and directories at rest using
// Argon2id key derivation and AES-256-GCM authenticated encryption.
package main

import (
	"os"

	"github.com/CXPhoenix/ResQrypt/internal/cli"
)

// version is the application version reported by --version.
const version = "v1.0.0"

func main() {
	os.Exit(cli.Execute(version))
}
