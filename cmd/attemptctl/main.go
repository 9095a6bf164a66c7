package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var settings = viper.New()

var rootCmd = &cobra.Command{
	Use:   "attemptctl",
	Short: "Inspect and exercise the attempt service",
	Long: `attemptctl renders grading harnesses offline and talks to a running
attempt service over the Redis message bus.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("redis-addr", "localhost:6379", "Redis address of the message bus")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.Duration("timeout", 30*time.Second, "How long to wait for a reply")

	_ = settings.BindPFlags(flags)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	rootCmd.AddCommand(harnessCmd, gradeCmd, getCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
