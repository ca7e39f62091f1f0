package main

import (
	"errors"
	"fmt"

	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/spf13/cobra"
)

var regenerate bool

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable the profiler with the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := adminService().Enable(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Profiler has been enabled with default configuration:")
		fmt.Fprintf(out, "- Profiler Header Key: %s\n", s.HeaderKey)
		fmt.Fprintf(out, "- HTML Output: %s\n", enabled(s.HTMLOutputEnabled))
		fmt.Fprintf(out, "- JSON Injection: %s\n", enabled(s.JSONInjectionEnabled))
		fmt.Fprintf(out, "- Developer Mode Only: %s\n", enabled(s.DeveloperModeOnly))
		fmt.Fprintf(out, "- Slow Query Threshold: %dms\n", s.SlowQueryThresholdMs)
		fmt.Fprintf(out, "- Toolbar Widget: %s\n", enabled(s.ToolbarEnabled))
		fmt.Fprintf(out, "- API Key Validation: %s\n", enabled(s.APIKeyEnabled))
		if s.APIKeyEnabled && !s.HasAPIKey() {
			fmt.Fprintln(out, "No API key is configured yet. Run 'devtools generate-api-key' to create one.")
		}

		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable the profiler",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := adminService().Disable(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Profiler has been disabled.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show profiler status and configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := adminService().Status(cmd.Context())
		if err != nil {
			return err
		}

		s := status.Settings
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Profiler Status")
		fmt.Fprintln(out, "===============")
		fmt.Fprintf(out, "Enabled: %s\n", yesNo(s.Enabled))
		fmt.Fprintf(out, "Header Key: %s\n", s.HeaderKey)
		fmt.Fprintf(out, "HTML Output: %s\n", yesNo(s.HTMLOutputEnabled))
		fmt.Fprintf(out, "JSON Injection: %s\n", yesNo(s.JSONInjectionEnabled))
		fmt.Fprintf(out, "Log to File: %s\n", yesNo(s.LogToFileEnabled))
		fmt.Fprintf(out, "Developer Mode Only: %s\n", yesNo(s.DeveloperModeOnly))
		fmt.Fprintf(out, "Slow Query Threshold: %dms\n", s.SlowQueryThresholdMs)
		fmt.Fprintf(out, "Toolbar Widget: %s\n", yesNo(s.ToolbarEnabled))
		fmt.Fprintf(out, "API Key Validation: %s\n", yesNo(s.APIKeyEnabled))
		fmt.Fprintf(out, "API Key Configured: %s\n", yesNo(status.HasAPIKey))
		fmt.Fprintf(out, "Memory Limit: %dMB\n", s.MemoryLimitMb)
		fmt.Fprintf(out, "Current Memory Usage: %.2fMB\n", status.CurrentMemoryMb)

		return nil
	},
}

var generateAPIKeyCmd = &cobra.Command{
	Use:   "generate-api-key",
	Short: "Generate the API key browsers use to unlock profiling",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := adminService().GenerateAPIKey(cmd.Context(), regenerate)
		out := cmd.OutOrStdout()

		if errors.Is(err, service.ErrAPIKeyExists) {
			fmt.Fprintln(out, "API key already exists. Use --regenerate to create a new one.")
			fmt.Fprintf(out, "Current API key: %s\n", result.Key)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to generate API key: %w", err)
		}

		if result.Regenerated {
			fmt.Fprintln(out, "API key regenerated successfully!")
		} else {
			fmt.Fprintln(out, "API key generated successfully!")
		}
		fmt.Fprintf(out, "New API key: %s\n", result.Key)
		fmt.Fprintln(out, "Save this key securely. Browsers send it in the X-Debug-Api-Key header, the api_key query parameter or the x_api_key cookie.")

		return nil
	},
}

func init() {
	generateAPIKeyCmd.Flags().BoolVarP(&regenerate, "regenerate", "r", false, "replace an existing key")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func enabled(v bool) string {
	if v {
		return "Enabled"
	}
	return "Disabled"
}
