package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/galaxykit/rolefix/internal/config"
	"github.com/galaxykit/rolefix/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:     "fix [root]",
	Aliases: []string{"f"},
	Short:   "Rename invalid role directories and rewrite references",
	Long: `Fix runs the full normalization pipeline against a collection root:
scan the namespace for roles, rename invalid directories deepest first,
rewrite role references in playbooks and dependency lists, then remove
leftover hyphenated duplicates.

The root defaults to the current directory. Foreign documents such as
Kubernetes manifests are detected and left byte-identical.

Examples:
  rolefix fix                      # Normalize ./roles and references under .
  rolefix fix /srv/galaxy          # Normalize another collection root
  rolefix fix --dry-run            # Report without changing anything
  rolefix fix --no-backup          # Rewrite documents without backups
  rolefix fix -f json              # Emit the run report as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFix,
}

// timeRounding trims sub-millisecond noise from displayed durations.
const timeRounding = time.Millisecond

var (
	fixFlags  *StandardFlags
	fixReport string
)

func init() {
	rootCmd.AddCommand(fixCmd)

	fixFlags = AddStandardFlags(fixCmd, "run", "output")
	fixCmd.Flags().StringVar(&fixReport, "report", "", "Run report format, overrides --format (table|json|yaml)")

	AddFlagValidation(fixCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"table", "json", "yaml"})
	})
	AddFlagValidation(fixCmd, "report", func(format string) error {
		if format == "" {
			return nil
		}
		return ValidateFormatWithSuggestion(format, []string{"table", "json", "yaml"})
	})
}

func runFix(cmd *cobra.Command, args []string) error {
	if err := fixFlags.ValidateFlags(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	cfg, err := loadRunConfig(args, fixFlags)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	engine := fix.NewEngine(fix.Options{
		Root:         cfg.Root,
		NamespaceDir: cfg.NamespacePath(),
		DryRun:       cfg.DryRun,
		Backup:       cfg.Backup.Enabled,
		SkipDirs:     cfg.Rewrite.SkipDirs,
		CacheSize:    cfg.Rewrite.CacheSize,
	}, log)

	report, err := engine.Run(cmd.Context())
	if err != nil {
		return err
	}

	if fixFlags.Quiet {
		return nil
	}

	format := fixFlags.Format
	if fixReport != "" {
		format = fixReport
	}
	switch strings.ToLower(format) {
	case "json":
		return outputFixJSON(report)
	case "yaml":
		return outputFixYAML(report)
	default:
		return outputFixTable(report)
	}
}

// loadRunConfig loads configuration and applies command-line overrides shared
// by fix and watch.
func loadRunConfig(args []string, flags *StandardFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.Root = "."
	if len(args) > 0 {
		cfg.Root = args[0]
	}
	if flags.DryRun {
		cfg.DryRun = true
	}
	if flags.NoBackup {
		cfg.Backup.Enabled = false
	}
	if flags.RolesDir != "" {
		cfg.Namespace.Dir = flags.RolesDir
	}

	return cfg, nil
}

// sortedRenames flattens the rename map into deterministic old/new pairs.
func sortedRenames(report *fix.Report) [][2]string {
	olds := make([]string, 0, len(report.Renames))
	for old := range report.Renames {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	pairs := make([][2]string, 0, len(olds))
	for _, old := range olds {
		pairs = append(pairs, [2]string{old, report.Renames[old]})
	}
	return pairs
}

func outputFixTable(report *fix.Report) error {
	if report.Clean() {
		fmt.Println("No invalid role names found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "OLD NAME\tNEW NAME")
	fmt.Fprintln(w, "--------\t--------")
	for _, pair := range sortedRenames(report) {
		fmt.Fprintf(w, "%s\t%s\n", pair[0], pair[1])
	}
	fmt.Fprintln(w)

	if len(report.Results) > 0 {
		fmt.Fprintln(w, "DIRECTORY\tOUTCOME")
		fmt.Fprintln(w, "---------\t-------")
		for _, res := range report.Results {
			fmt.Fprintf(w, "%s\t%s\n", res.OldPath, res.Outcome)
		}
		fmt.Fprintln(w)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	s := report.Summary()
	verb := "Renamed"
	if report.DryRun {
		verb = "Would rename"
	}
	fmt.Printf("%s %d directories, rewrote %d documents, swept %d leftovers",
		verb, s.Renamed, s.Rewritten, s.Swept)
	if s.Conflicts > 0 {
		fmt.Printf(", %d conflicts", s.Conflicts)
	}
	if s.Warnings > 0 {
		fmt.Printf(", %d warnings", s.Warnings)
	}
	fmt.Printf(" in %s\n", report.Duration.Round(timeRounding))

	return nil
}

type fixReportView struct {
	Root      string            `json:"root"`
	DryRun    bool              `json:"dry_run"`
	Roles     int               `json:"roles_found"`
	Renames   map[string]string `json:"renames"`
	Outcomes  map[string]string `json:"outcomes"`
	Rewritten []string          `json:"rewritten"`
	Swept     []string          `json:"swept"`
	Warnings  []string          `json:"warnings"`
}

func newFixReportView(report *fix.Report) fixReportView {
	view := fixReportView{
		Root:      report.Root,
		DryRun:    report.DryRun,
		Roles:     report.RolesFound,
		Renames:   report.Renames,
		Outcomes:  make(map[string]string, len(report.Results)),
		Rewritten: report.Rewritten,
		Swept:     report.Swept,
	}
	for _, res := range report.Results {
		view.Outcomes[res.OldPath] = res.Outcome.String()
	}
	for _, warn := range report.Warnings {
		view.Warnings = append(view.Warnings, warn.Error())
	}
	return view
}

func outputFixJSON(report *fix.Report) error {
	data, err := json.MarshalIndent(newFixReportView(report), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// outputFixYAML keeps the report sections in a stable order, which plain map
// marshaling does not guarantee.
func outputFixYAML(report *fix.Report) error {
	renames := yamlv2.MapSlice{}
	for _, pair := range sortedRenames(report) {
		renames = append(renames, yamlv2.MapItem{Key: pair[0], Value: pair[1]})
	}

	outcomes := yamlv2.MapSlice{}
	for _, res := range report.Results {
		outcomes = append(outcomes, yamlv2.MapItem{Key: res.OldPath, Value: res.Outcome.String()})
	}

	warnings := make([]string, 0, len(report.Warnings))
	for _, warn := range report.Warnings {
		warnings = append(warnings, warn.Error())
	}

	doc := yamlv2.MapSlice{
		{Key: "root", Value: report.Root},
		{Key: "dry_run", Value: report.DryRun},
		{Key: "roles_found", Value: report.RolesFound},
		{Key: "renames", Value: renames},
		{Key: "outcomes", Value: outcomes},
		{Key: "rewritten", Value: report.Rewritten},
		{Key: "swept", Value: report.Swept},
		{Key: "warnings", Value: warnings},
	}

	data, err := yamlv2.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
