package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CXPhoenix/ResQrypt/internal/container"
	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
	"github.com/CXPhoenix/ResQrypt/internal/log"
	"github.com/CXPhoenix/ResQrypt/internal/pipeline"
)

func init() {
	encryptCmd.SilenceErrors = true
	encryptCmd.SilenceUsage = true
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a file or directory into a ResQrypt container",
	Long: `Encrypt a single file or an entire directory tree into a ResQrypt
container (header ‖ ciphertext ‖ tag).

If no password is given via -p and RESQRYPT_PASSWORD is unset, you will be
prompted interactively (with confirmation). The password is hidden while
typing.

Examples:
  # Encrypt interactively (prompts for password)
  resqrypt encrypt -i secret.txt -o secret.resqrypt

  # Encrypt a directory
  resqrypt encrypt -i data/ -o data.resqrypt

  # Encrypt with a password on the command line
  resqrypt encrypt -i secret.txt -o secret.resqrypt -p "mypassword"

  # Encrypt with stronger Argon2id parameters
  resqrypt encrypt -i secret.txt -o secret.resqrypt --argon2-memory 256 --argon2-iterations 5

  # Encrypt with a supplemental keyfile
  resqrypt encrypt -i secret.txt -o secret.resqrypt -f keyfile.bin`,
	RunE: runEncrypt,
}

var (
	encInput       string
	encOutput      string
	encPassword    string
	encKeyfiles    []string
	encOverwrite   bool
	encVerbose     bool
	encArgonMemory uint32
	encArgonIter   uint32
	encArgonPar    uint32
)

func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVarP(&encInput, "input", "i", "", "Input file or directory to encrypt")
	encryptCmd.Flags().StringVarP(&encOutput, "output", "o", "", "Output container path")
	encryptCmd.Flags().StringVarP(&encPassword, "password", "p", "", "Encryption password")
	encryptCmd.Flags().StringArrayVarP(&encKeyfiles, "keyfile", "f", nil, "Supplemental keyfile path (repeatable)")
	encryptCmd.Flags().Uint32Var(&encArgonMemory, "argon2-memory", container.DefaultKDFParams.MemoryMiB, "Argon2id memory cost in MiB")
	encryptCmd.Flags().Uint32Var(&encArgonIter, "argon2-iterations", container.DefaultKDFParams.Iterations, "Argon2id iteration count")
	encryptCmd.Flags().Uint32Var(&encArgonPar, "argon2-parallelism", container.DefaultKDFParams.Parallelism, "Argon2id parallelism (lanes)")
	encryptCmd.Flags().BoolVarP(&encVerbose, "verbose", "v", false, "Show progress and enable debug logging")
	encryptCmd.Flags().BoolVarP(&encOverwrite, "overwrite", "y", false, "Overwrite output if it already exists")

	_ = encryptCmd.MarkFlagRequired("input")
	_ = encryptCmd.MarkFlagRequired("output")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	if encVerbose {
		log.EnableVerboseLogging()
	}

	if encInput == "" {
		return fmt.Errorf("input path is required (-i)")
	}
	if encOutput == "" {
		return fmt.Errorf("output path is required (-o)")
	}

	if _, err := os.Stat(encInput); err != nil {
		return rqerrors.NewFileError("stat", encInput, err)
	}

	for _, kf := range encKeyfiles {
		if _, err := os.Stat(kf); err != nil {
			return fmt.Errorf("keyfile not found: %s", kf)
		}
	}

	password, err := ResolvePassword(encPassword, true)
	if err != nil {
		return err
	}

	reporter := NewReporter(encVerbose)
	globalReporter = reporter

	req := &pipeline.EncryptRequest{
		InputPath:  encInput,
		OutputPath: encOutput,
		Password:   password,
		Keyfiles:   encKeyfiles,
		KDFParams: container.KDFParams{
			MemoryMiB:   encArgonMemory,
			Iterations:  encArgonIter,
			Parallelism: encArgonPar,
		},
		ForceOverwrite: encOverwrite,
		Reporter:       reporter,
	}

	if encVerbose {
		fmt.Fprintf(os.Stderr, "Encrypting %s to %s\n", encInput, encOutput)
	}

	err = pipeline.Encrypt(context.Background(), req)
	reporter.Finish()

	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	reporter.PrintSuccess("Encryption completed: %s", encOutput)
	return nil
}
