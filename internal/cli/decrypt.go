package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	rqerrors "github.com/CXPhoenix/ResQrypt/internal/errors"
	"github.com/CXPhoenix/ResQrypt/internal/log"
	"github.com/CXPhoenix/ResQrypt/internal/pipeline"
)

func init() {
	decryptCmd.SilenceErrors = true
	decryptCmd.SilenceUsage = true
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a ResQrypt container",
	Long: `Decrypt a ResQrypt container back to its original file or directory
tree.

If no password is given via -p and RESQRYPT_PASSWORD is unset, you will be
prompted interactively. The password is hidden while typing.

Examples:
  # Decrypt interactively
  resqrypt decrypt -i secret.resqrypt -o secret.txt

  # Decrypt with a password on the command line
  resqrypt decrypt -i secret.resqrypt -o secret.txt -p "mypassword"

  # Decrypt a directory container
  resqrypt decrypt -i data.resqrypt -o restored/

  # Decrypt with a supplemental keyfile
  resqrypt decrypt -i secret.resqrypt -o secret.txt -f keyfile.bin`,
	RunE: runDecrypt,
}

var (
	decInput     string
	decOutput    string
	decPassword  string
	decKeyfiles  []string
	decOverwrite bool
	decVerbose   bool
)

func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVarP(&decInput, "input", "i", "", "Input container path")
	decryptCmd.Flags().StringVarP(&decOutput, "output", "o", "", "Output file or directory path")
	decryptCmd.Flags().StringVarP(&decPassword, "password", "p", "", "Decryption password")
	decryptCmd.Flags().StringArrayVarP(&decKeyfiles, "keyfile", "f", nil, "Supplemental keyfile path (repeatable)")
	decryptCmd.Flags().BoolVarP(&decVerbose, "verbose", "v", false, "Show progress and enable debug logging")
	decryptCmd.Flags().BoolVarP(&decOverwrite, "overwrite", "y", false, "Overwrite output if it already exists")

	_ = decryptCmd.MarkFlagRequired("input")
	_ = decryptCmd.MarkFlagRequired("output")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	if decVerbose {
		log.EnableVerboseLogging()
	}

	if decInput == "" {
		return fmt.Errorf("input path is required (-i)")
	}
	if decOutput == "" {
		return fmt.Errorf("output path is required (-o)")
	}

	inputInfo, err := os.Stat(decInput)
	if err != nil {
		return rqerrors.NewFileError("stat", decInput, err)
	}
	if inputInfo.IsDir() {
		return fmt.Errorf("input must be a file, not a directory: %s", decInput)
	}

	for _, kf := range decKeyfiles {
		if _, err := os.Stat(kf); err != nil {
			return fmt.Errorf("keyfile not found: %s", kf)
		}
	}

	password, err := ResolvePassword(decPassword, false)
	if err != nil {
		return err
	}

	reporter := NewReporter(decVerbose)
	globalReporter = reporter

	req := &pipeline.DecryptRequest{
		InputPath:      decInput,
		OutputPath:     decOutput,
		Password:       password,
		Keyfiles:       decKeyfiles,
		ForceOverwrite: decOverwrite,
		Reporter:       reporter,
	}

	if decVerbose {
		fmt.Fprintf(os.Stderr, "Decrypting %s to %s\n", decInput, decOutput)
	}

	err = pipeline.Decrypt(context.Background(), req)
	reporter.Finish()

	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	reporter.PrintSuccess("Decryption completed: %s", decOutput)
	return nil
}
