// Package main provides the StudioShell CLI application entry point.
// StudioShell is a terminal client for the Maker Studio AI tools: it runs the
// conversation loop, the work browser, and feedback capture against the
// studio backend.
package main

import (
	"fmt"
	"os"

	"github.com/abiosoft/ishell/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"studioshell/internal/logger"
	"studioshell/internal/shell"
)

var (
	logLevel string
	logFile  string
	testMode bool
	baseURL  string
	version  = "0.1.0" // This could be set at build time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Studio Shell - terminal client for the Maker Studio tools",
	Long: `Studio is a terminal client for the Maker Studio AI tools.
It runs tool conversations, browses and attaches your saved work, and sends
feedback, all against your studio backend.`,
	Run: runShell, // Default behavior is to run the interactive shell
}

// shellCmd represents the shell command (explicit version of default behavior)
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start interactive shell mode",
	Long:  `Start the interactive Studio shell.`,
	Run:   runShell,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of Studio Shell.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Studio Shell v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Studio backend base URL (overrides STUDIO_BASE_URL)")

	// Bind flags to viper
	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-file flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("test-mode", rootCmd.PersistentFlags().Lookup("test-mode")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding test-mode flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding base-url flag: %v\n", err)
		os.Exit(1)
	}

	// Add subcommands
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Configure logger with CLI flags
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runShell(_ *cobra.Command, _ []string) {
	logger.Info("Starting StudioShell", "version", version)

	// Initialize services before starting shell
	if err := shell.InitializeServices(testMode, baseURL); err != nil {
		logger.Fatal("Failed to initialize services", "error", err)
	}

	logger.Info("Services initialized successfully")

	sh := ishell.New()
	sh.SetPrompt("studio> ")

	// Remove built-in commands so they become user messages or Studio commands
	sh.DeleteCmd("exit")
	sh.DeleteCmd("help")

	sh.Println(fmt.Sprintf("Studio Shell v%s - Maker Studio terminal client", version))
	sh.Println("Type '\\help' for Studio commands or '\\exit' to quit.")

	sh.NotFound(shell.ProcessInput)

	sh.Run()
}
