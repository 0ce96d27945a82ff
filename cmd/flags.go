package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// StandardFlags provides consistent flag definitions across commands
type StandardFlags struct {
	// Run flags
	DryRun   bool   `flag:"dry-run,n" desc:"Report changes without touching the tree" default:"false"`
	NoBackup bool   `flag:"no-backup" desc:"Skip timestamped backups before rewrites" default:"false"`
	RolesDir string `flag:"roles-dir" desc:"Namespace directory relative to the root" default:""`

	// Output flags
	Format  string `flag:"format,f" desc:"Output format (table|json|yaml)" default:"table"`
	Verbose bool   `flag:"verbose,v" desc:"Enable verbose output" default:"false"`
	Quiet   bool   `flag:"quiet,q" desc:"Suppress output" default:"false"`
}

// AddStandardFlags adds standard flags to a command
func AddStandardFlags(cmd *cobra.Command, flagTypes ...string) *StandardFlags {
	flags := &StandardFlags{}

	for _, flagType := range flagTypes {
		switch flagType {
		case "run":
			addRunFlags(cmd, flags)
		case "output":
			addOutputFlags(cmd, flags)
		}
	}

	return flags
}

func addRunFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false, "Report changes without touching the tree")
	cmd.Flags().BoolVar(&flags.NoBackup, "no-backup", false, "Skip timestamped backups before rewrites")
	cmd.Flags().StringVar(&flags.RolesDir, "roles-dir", "", "Namespace directory relative to the root")
}

func addOutputFlags(cmd *cobra.Command, flags *StandardFlags) {
	cmd.Flags().StringVarP(&flags.Format, "format", "f", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress output")
}

// ValidateFlags validates flag combinations and values
func (f *StandardFlags) ValidateFlags() error {
	validFormats := []string{"table", "json", "yaml"}
	if f.Format != "" {
		valid := false
		for _, format := range validFormats {
			if f.Format == format {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid output format %s, must be one of: %s",
				f.Format, strings.Join(validFormats, ", "))
		}
	}

	// Quiet and verbose are mutually exclusive
	if f.Quiet && f.Verbose {
		return fmt.Errorf("cannot specify both --quiet and --verbose")
	}

	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	originalSet := flag.Value.Set
	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateFormatWithSuggestion checks a format value against the valid set
// and names the closest match on failure.
func ValidateFormatWithSuggestion(format string, valid []string) error {
	for _, v := range valid {
		if format == v {
			return nil
		}
	}

	suggestion := ""
	for _, v := range valid {
		if strings.HasPrefix(v, strings.ToLower(format)) || strings.HasPrefix(strings.ToLower(format), v[:1]) {
			suggestion = v
			break
		}
	}

	if suggestion != "" {
		return fmt.Errorf("invalid format %q, did you mean %q? (valid: %s)",
			format, suggestion, strings.Join(valid, ", "))
	}
	return fmt.Errorf("invalid format %q (valid: %s)", format, strings.Join(valid, ", "))
}
