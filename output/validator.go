package output

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// SchemaValidator invokes an external OSCAL schema validator against the
// produced files. It is purely advisory: absence of the tool or a failed
// validation is reported but never affects the documents or the exit code.
type SchemaValidator struct {
	command string
	logger  *slog.Logger
}

// NewSchemaValidator creates a validator that runs the named command,
// typically "oscal-cli".
func NewSchemaValidator(command string, logger *slog.Logger) *SchemaValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaValidator{command: command, logger: logger}
}

// Available reports whether the validator command is on PATH.
func (v *SchemaValidator) Available() bool {
	_, err := exec.LookPath(v.command)
	return err == nil
}

// Validate runs the external validator on one file.
func (v *SchemaValidator) Validate(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, v.command, "validate", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s validate %s: %w\n%s", v.command, path, err, out)
	}
	return nil
}

// Report validates each file and prints a per-file pass/fail line.
func (v *SchemaValidator) Report(ctx context.Context, paths ...string) {
	if !v.Available() {
		v.logger.Debug("Schema validator not found, skipping advisory validation", slog.String("command", v.command))
		return
	}
	for _, path := range paths {
		if err := v.Validate(ctx, path); err != nil {
			fmt.Printf("✗ Schema validation failed: %s\n", path)
			v.logger.Warn("Schema validation failed", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		fmt.Printf("✓ Schema valid: %s\n", path)
	}
}
