package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"meetdl/internal/dirs"
)

// Init wires Viper with config paths, env, defaults, and flag bindings.
// A local .env file is loaded first so MEETDL_TOKEN can live next to a
// project instead of the shell profile. Non-fatal: errors are returned for
// optional handling by the caller.
func Init(root *cobra.Command) error {
	_ = godotenv.Load()

	_ = dirs.EnsureAll()

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		_ = dirs.Ensure(cfgDir)
		viper.AddConfigPath(cfgDir)
	}
	viper.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	// Environment variables: MEETDL_*
	viper.SetEnvPrefix("MEETDL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Bind root persistent flags to Viper keys
	_ = viper.BindPFlag("out_dir", root.PersistentFlags().Lookup("out-dir"))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("token", root.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("primary_binary", root.PersistentFlags().Lookup("primary-binary"))
	_ = viper.BindPFlag("fallback_binary", root.PersistentFlags().Lookup("fallback-binary"))
	_ = viper.BindPFlag("jobs", root.PersistentFlags().Lookup("jobs"))
	_ = viper.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	// Read config file if present (ignore not found)
	_ = viper.ReadInConfig()

	return nil
}
