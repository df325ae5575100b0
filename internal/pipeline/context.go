// Package pipeline wires the header, archive, compress, and crypto packages
// into the two top-level operations the CLI exposes: Encrypt and Decrypt.
package pipeline

import (
	"github.com/CXPhoenix/ResQrypt/internal/container"
)

// ProgressReporter decouples the orchestrator from however the caller
// chooses to render progress (terminal bar, log line, nothing at all).
type ProgressReporter interface {
	SetStatus(text string)
	// SetProgress reports how many of the total bytes for the current
	// operation have been processed so far, letting the reporter derive
	// throughput and ETA.
	SetProgress(done, total int64)
	SetCanCancel(can bool)
	Update()
	IsCancelled() bool
}

// nullReporter discards every call. Used when a caller does not supply one.
type nullReporter struct{}

func (nullReporter) SetStatus(string)         {}
func (nullReporter) SetProgress(int64, int64) {}
func (nullReporter) SetCanCancel(bool)        {}
func (nullReporter) Update()                  {}
func (nullReporter) IsCancelled() bool        { return false }

func reporterOrNull(r ProgressReporter) ProgressReporter {
	if r == nil {
		return nullReporter{}
	}
	return r
}

// EncryptRequest describes one encrypt invocation.
type EncryptRequest struct {
	InputPath  string
	OutputPath string

	// Password is the raw password bytes. The caller (CLI collaborator) is
	// responsible for obtaining it interactively, from a flag, or from an
	// environment variable.
	Password string

	// Keyfiles, if non-empty, are hashed and mixed into the password before
	// key derivation (see internal/keyfile).
	Keyfiles []string

	// KDFParams overrides container.DefaultKDFParams when any field is
	// non-zero-valued by the caller; zero value means "use defaults".
	KDFParams container.KDFParams

	// ForceOverwrite, when true, allows writing over an existing output
	// path without returning ErrOutputExists.
	ForceOverwrite bool

	Reporter ProgressReporter
}

// DecryptRequest describes one decrypt invocation.
type DecryptRequest struct {
	InputPath  string
	OutputPath string

	Password string
	Keyfiles []string

	ForceOverwrite bool

	Reporter ProgressReporter
}
