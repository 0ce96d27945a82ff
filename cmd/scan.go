package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/galaxykit/rolefix/internal/naming"
	"github.com/galaxykit/rolefix/internal/registry"
	"github.com/galaxykit/rolefix/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:     "scan [root]",
	Aliases: []string{"s", "list"},
	Short:   "List discovered roles with validity and proposed names",
	Long: `Scan discovers every role under the namespace directory and shows
whether its name is valid for Galaxy, and what it would be renamed to.

Examples:
  rolefix scan                    # List all roles in table format
  rolefix scan -f json            # Output as JSON (short flag)
  rolefix scan --format csv       # Output as CSV
  rolefix scan --invalid-only     # Only roles that need renaming`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var (
	scanFlags       *StandardFlags
	scanInvalidOnly bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanFlags = AddStandardFlags(scanCmd, "output")

	scanCmd.Flags().BoolVarP(&scanInvalidOnly, "invalid-only", "i", false, "Only list roles whose names need fixing")
	scanCmd.Flags().StringVar(&scanFlags.RolesDir, "roles-dir", "", "Namespace directory relative to the root")

	AddFlagValidation(scanCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"table", "json", "yaml", "csv"})
	})
}

// roleRow is one scan result prepared for output.
type roleRow struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	Depth    int    `json:"depth" yaml:"depth"`
	Valid    bool   `json:"valid" yaml:"valid"`
	Proposed string `json:"proposed,omitempty" yaml:"proposed,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(args, scanFlags)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Root); err != nil {
		return fmt.Errorf("root directory not found: %s", cfg.Root)
	}

	sc := scanner.NewRoleScanner(registry.NewRoleRegistry())
	roles := sc.ScanTree(cfg.NamespacePath())

	rows := make([]roleRow, 0, len(roles))
	for _, role := range roles {
		valid := naming.IsValid(role.Name)
		if scanInvalidOnly && valid {
			continue
		}

		rel, err := filepath.Rel(cfg.Root, role.Path)
		if err != nil {
			rel = role.Path
		}

		row := roleRow{
			Name:  role.Name,
			Path:  rel,
			Depth: role.Depth,
			Valid: valid,
		}
		if !valid {
			row.Proposed = naming.Normalize(role.Name)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		if !scanFlags.Quiet {
			fmt.Println("No roles found.")
		}
		return nil
	}

	switch strings.ToLower(scanFlags.Format) {
	case "json":
		return outputScanJSON(rows)
	case "yaml":
		return outputScanYAML(rows)
	case "csv":
		return outputScanCSV(rows)
	default:
		return outputScanTable(rows)
	}
}

func outputScanTable(rows []roleRow) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tPATH\tVALID\tPROPOSED")
	fmt.Fprintln(w, "----\t----\t-----\t--------")
	for _, row := range rows {
		proposed := row.Proposed
		if proposed == "" {
			proposed = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", row.Name, row.Path, row.Valid, proposed)
	}

	return w.Flush()
}

func outputScanJSON(rows []roleRow) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal roles: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputScanYAML(rows []roleRow) error {
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal roles: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func outputScanCSV(rows []roleRow) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"name", "path", "depth", "valid", "proposed"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Name,
			row.Path,
			strconv.Itoa(row.Depth),
			strconv.FormatBool(row.Valid),
			row.Proposed,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}
