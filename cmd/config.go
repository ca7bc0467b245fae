package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/pkloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set pkloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("dm_path: %s\n", cfg.DMPath)
		if cfg.DMSheet != "" {
			fmt.Printf("dm_sheet: %s\n", cfg.DMSheet)
		}
		if cfg.ClinicalPath != "" {
			fmt.Printf("clinical_path: %s\n", cfg.ClinicalPath)
		} else {
			fmt.Println("clinical_path: (built-in theoph)")
		}
		fmt.Printf("alpha: %.3f\n", cfg.Alpha)
		fmt.Printf("group_by: %s\n", cfg.GroupBy)
		fmt.Printf("max_plausible_age: %g\n", cfg.MaxPlausibleAge)
		fmt.Printf("allow_unmatched: %t\n", cfg.AllowUnmatched)
		if cfg.PlotsDir != "" {
			fmt.Printf("plots_dir: %s\n", cfg.PlotsDir)
		}
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("log_format: %s\n", cfg.LogFormat)
		fmt.Println("age_overrides:")
		for _, subj := range cfg.AgeOverrides.Subjects() {
			ov := cfg.AgeOverrides[subj]
			fmt.Printf("  %s: raw %q in %s (%s)\n", subj, ov.Raw, ov.Unit, ov.Reason)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// setConfigValue applies one scalar key. age_overrides is edited in the YAML file.
func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "dm_path":
		c.DMPath = val
	case "dm_sheet":
		c.DMSheet = val
	case "clinical_path":
		c.ClinicalPath = val
	case "alpha":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 || f >= 1 {
			return fmt.Errorf("invalid alpha: %v (want 0 < alpha < 1)", val)
		}
		c.Alpha = f
	case "group_by":
		switch strings.ToLower(val) {
		case "sex", "dose":
			c.GroupBy = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid group_by: %s (use sex or dose)", val)
		}
	case "max_plausible_age":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for max_plausible_age: %v", val)
		}
		c.MaxPlausibleAge = f
	case "allow_unmatched":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for allow_unmatched: %w", err)
		}
		c.AllowUnmatched = b
	case "plots_dir":
		c.PlotsDir = val
	case "log_level":
		c.LogLevel = val
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "age_overrides":
		return fmt.Errorf("age_overrides is a table; edit it in the config file")
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
