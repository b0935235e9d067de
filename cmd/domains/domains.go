// Package domains implements catalog inspection commands.
package domains

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planpilot/internal/utils"
	"planpilot/pkg/logger"
	"planpilot/pkg/registry"
)

// DomainsCmd groups the domain catalog commands.
var DomainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Inspect the planning domain catalog",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available planning domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadCatalog()
		if err != nil {
			return err
		}
		for _, d := range reg.Domains() {
			quick := len(d.Questions(registry.PlanModeQuick))
			detailed := len(d.Questions(registry.PlanModeDetailed))
			fmt.Printf("%-12s %s\n", d.Name, d.Description)
			if len(d.Aliases) > 0 {
				fmt.Printf("%-12s aliases: %s\n", "", strings.Join(d.Aliases, ", "))
			}
			fmt.Printf("%-12s questions: %d quick, %d detailed\n\n", "", quick, detailed)
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [catalog.yaml]",
	Short: "Validate a domain catalog file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("catalog")
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no catalog file given (use an argument or --catalog)")
		}

		reg, err := registry.LoadFile(quietLogger(), path)
		if err != nil {
			return fmt.Errorf("catalog invalid: %w", err)
		}
		fmt.Printf("✅ %s is valid: %d domains (%s)\n", filepath.Base(path), len(reg.Domains()), strings.Join(reg.Names(), ", "))
		return nil
	},
}

func init() {
	DomainsCmd.AddCommand(listCmd)
	DomainsCmd.AddCommand(validateCmd)
}

func loadCatalog() (*registry.Registry, error) {
	log := quietLogger()
	if path := viper.GetString("catalog"); path != "" {
		reg, err := registry.LoadFile(log, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load domain catalog: %w", err)
		}
		return reg, nil
	}
	return registry.Builtin(log), nil
}

func quietLogger() utils.ExtendedLogger {
	logFile := viper.GetString("log-file")
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), "planpilot-domains.log")
	}
	return logger.CreateTestLogger(logFile, "warn")
}
