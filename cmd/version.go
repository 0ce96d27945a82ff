package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galaxykit/rolefix/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for rolefix including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version used for compilation
- Target platform (OS/architecture)

Examples:
  rolefix version              # Show short version
  rolefix version --detailed   # Show detailed version info
  rolefix version --format json # Output as JSON`,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	detailed, _ := cmd.Flags().GetBool("detailed")

	switch versionFormat {
	case "json":
		data, err := json.MarshalIndent(version.GetBuildInfo(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Println(string(data))
		return nil
	case "text":
		if versionShort {
			fmt.Println(version.GetShortVersion())
		} else if detailed {
			fmt.Println(version.GetDetailedVersion())
		} else {
			info := version.GetBuildInfo()
			fmt.Printf("rolefix %s", info.Version)
			if info.GitCommit != "unknown" && len(info.GitCommit) >= 7 {
				fmt.Printf(" (%s)", info.GitCommit[:7])
			}
			fmt.Println()
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", versionFormat)
	}
}
