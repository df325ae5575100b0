package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReporter(t *testing.T) {
	t.Run("NewReporter", func(t *testing.T) {
		r := NewReporter(false)
		if r == nil {
			t.Fatal("NewReporter returned nil")
		}
		if r.verbose {
			t.Error("verbose should be false")
		}

		r = NewReporter(true)
		if !r.verbose {
			t.Error("verbose should be true")
		}
	})

	t.Run("SetStatus", func(t *testing.T) {
		r := NewReporter(false)
		r.SetStatus("test status")
		if r.status != "test status" {
			t.Errorf("expected 'test status', got %q", r.status)
		}
	})

	t.Run("SetProgress", func(t *testing.T) {
		r := NewReporter(false)
		r.SetProgress(512, 1024)
		if r.done != 512 {
			t.Errorf("expected done 512, got %d", r.done)
		}
		if r.total != 1024 {
			t.Errorf("expected total 1024, got %d", r.total)
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		r := NewReporter(false)
		if r.IsCancelled() {
			t.Error("should not be cancelled initially")
		}
		r.Cancel()
		if !r.IsCancelled() {
			t.Error("should be cancelled after Cancel()")
		}
	})

	t.Run("SetCanCancel", func(t *testing.T) {
		r := NewReporter(false)
		// Should be a no-op, just ensure it doesn't panic
		r.SetCanCancel(true)
		r.SetCanCancel(false)
	})
}

func TestReporterOutput(t *testing.T) {
	t.Run("non-verbose suppresses progress", func(t *testing.T) {
		r := NewReporter(false)

		old := os.Stderr
		rd, w, _ := os.Pipe()
		os.Stderr = w

		r.SetStatus("test")
		r.SetProgress(512, 1024)
		r.Update()
		r.Finish()

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(rd)
		if buf.Len() != 0 {
			t.Errorf("non-verbose mode should not produce output, got: %q", buf.String())
		}
	})

	t.Run("PrintSuccess respects verbose", func(t *testing.T) {
		r := NewReporter(false)

		old := os.Stderr
		rd, w, _ := os.Pipe()
		os.Stderr = w

		r.PrintSuccess("success message")

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(rd)
		if buf.Len() != 0 {
			t.Errorf("non-verbose mode should suppress success, got: %q", buf.String())
		}
	})

	t.Run("PrintError always outputs", func(t *testing.T) {
		r := NewReporter(false) // even non-verbose

		old := os.Stderr
		rd, w, _ := os.Pipe()
		os.Stderr = w

		r.PrintError("error message")

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(rd)
		if !strings.Contains(buf.String(), "error message") {
			t.Errorf("PrintError should always output, got: %q", buf.String())
		}
	})
}

func TestEncryptValidation(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		encInput = ""
		encOutput = "out.resqrypt"
		encPassword = ""
		encKeyfiles = nil

		cmd := encryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for missing input")
		}
		if !strings.Contains(err.Error(), "input") {
			t.Errorf("error should mention input: %v", err)
		}
	})

	t.Run("missing output", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "test.txt")
		os.WriteFile(tmpFile, []byte("test"), 0o644)

		encInput = tmpFile
		encOutput = ""

		cmd := encryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for missing output")
		}
		if !strings.Contains(err.Error(), "output") {
			t.Errorf("error should mention output: %v", err)
		}
	})

	t.Run("nonexistent input path", func(t *testing.T) {
		encInput = "/nonexistent/file/path.txt"
		encOutput = filepath.Join(t.TempDir(), "out.resqrypt")
		encPassword = "test"

		cmd := encryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for nonexistent input")
		}
	})

	t.Run("nonexistent keyfile", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "test.txt")
		os.WriteFile(tmpFile, []byte("test"), 0o644)

		encInput = tmpFile
		encOutput = filepath.Join(t.TempDir(), "out.resqrypt")
		encPassword = "test"
		encKeyfiles = []string{"/nonexistent/keyfile.key"}

		cmd := encryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for nonexistent keyfile")
		}
		if !strings.Contains(err.Error(), "keyfile not found") {
			t.Errorf("error should mention keyfile not found: %v", err)
		}

		encKeyfiles = nil
	})
}

func TestDecryptValidation(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		decInput = ""
		decOutput = "out.txt"
		decPassword = "test"

		cmd := decryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for missing input")
		}
		if !strings.Contains(err.Error(), "input") {
			t.Errorf("error should mention input: %v", err)
		}
	})

	t.Run("missing output", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "test.resqrypt")
		os.WriteFile(tmpFile, []byte("test"), 0o644)

		decInput = tmpFile
		decOutput = ""
		decPassword = "test"

		cmd := decryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for missing output")
		}
		if !strings.Contains(err.Error(), "output") {
			t.Errorf("error should mention output: %v", err)
		}
	})

	t.Run("nonexistent input file", func(t *testing.T) {
		decInput = "/nonexistent/file.resqrypt"
		decOutput = filepath.Join(t.TempDir(), "out.txt")
		decPassword = "test"

		cmd := decryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for nonexistent file")
		}
	})

	t.Run("input is directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		decInput = tmpDir
		decOutput = filepath.Join(t.TempDir(), "out.txt")
		decPassword = "test"

		cmd := decryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for directory input")
		}
		if !strings.Contains(err.Error(), "directory") {
			t.Errorf("error should mention directory: %v", err)
		}
	})

	t.Run("nonexistent keyfile", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "test.resqrypt")
		os.WriteFile(tmpFile, []byte("test"), 0o644)

		decInput = tmpFile
		decOutput = filepath.Join(t.TempDir(), "out.txt")
		decPassword = "test"
		decKeyfiles = []string{"/nonexistent/keyfile.key"}

		cmd := decryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for nonexistent keyfile")
		}
		if !strings.Contains(err.Error(), "keyfile not found") {
			t.Errorf("error should mention keyfile not found: %v", err)
		}

		decKeyfiles = nil
	})
}

func TestVersionFlag(t *testing.T) {
	Version = "v1.0.0"
	rootCmd.Version = Version
	if rootCmd.Version != "v1.0.0" {
		t.Errorf("expected version v1.0.0, got %s", rootCmd.Version)
	}
}

func TestResolvePasswordFromEnv(t *testing.T) {
	os.Setenv(PasswordEnvVar, "from-env")
	defer os.Unsetenv(PasswordEnvVar)

	pw, err := ResolvePassword("", false)
	if err != nil {
		t.Fatalf("ResolvePassword: %v", err)
	}
	if pw != "from-env" {
		t.Errorf("expected password from env var, got %q", pw)
	}
}

func TestResolvePasswordFlagTakesPriority(t *testing.T) {
	os.Setenv(PasswordEnvVar, "from-env")
	defer os.Unsetenv(PasswordEnvVar)

	pw, err := ResolvePassword("from-flag", false)
	if err != nil {
		t.Fatalf("ResolvePassword: %v", err)
	}
	if pw != "from-flag" {
		t.Errorf("expected flag value to take priority, got %q", pw)
	}
}
