package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
)

// Version is set by main.go via Execute.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "resqrypt",
	Short: "Authenticated file and directory encryption",
	Long: `ResQrypt encrypts files and directories at rest using:
  - Argon2id for password-based key derivation (memory-hard)
  - AES-256-GCM for authenticated encryption (96-bit nonce, 128-bit tag)
  - zstd for smart-skip compression before encryption
  - tar for directory archiving

Each output container is self-describing: a fixed 66-byte header records the
KDF parameters, salt, and nonce needed to reverse the pipeline, and is bound
into the AEAD tag as additional authenticated data.`,
	Version: Version,
}

// globalReporter lets the SIGINT/SIGTERM handler reach the in-flight
// operation's reporter to request cooperative cancellation.
var globalReporter *Reporter

// Execute runs the CLI and returns the process exit code, per spec.md §6.
func Execute(version string) int {
	Version = version
	rootCmd.Version = version

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
			fmt.Fprintln(os.Stderr, "\nCancelling...")
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		return rqerrors.ExitCode(err)
	}
	return 0
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
