package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sensorviz/sensorviz/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sensorviz",
	Short: "sensorviz - compose simulated sensor observations into videos",
	Long: `sensorviz turns recorded sensor observations (color, depth, semantic)
from a simulated agent into composed videos: a primary sensor view with
optional bordered overlay insets, written through ffmpeg or a pure-Go
MJPEG fallback, and displayed inline in notebooks or via the OS viewer.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(viper.GetString("log_level"), viper.GetBool("pretty"))
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", true, "human-readable log output")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("pretty", rootCmd.PersistentFlags().Lookup("pretty"))
	viper.SetEnvPrefix("sensorviz")
	viper.AutomaticEnv()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
