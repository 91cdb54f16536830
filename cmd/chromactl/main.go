package main

import (
	"fmt"
	"log"
	"os"

	"chromactl/internal/chroma"
	"chromactl/internal/config"
	"chromactl/internal/version"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chromactl",
	Short: "Inspect and manage Chroma vector database collections",
	Long: `chromactl is a command-line tool for a remote Chroma vector database.

It lists, creates, inspects, searches, and deletes collections. Connection
settings are read from CHROMA_* environment variables (and .env files), so
every invocation is a fresh connect-execute-print cycle with no local state.`,
	Version:       version.Full(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("chromactl %s\n", version.Full())
		if version.BuildDate != "unknown" {
			fmt.Printf("Build date: %s\n", version.BuildDate)
		}
		fmt.Printf("Go version: %s\n", version.GoVersion)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(
		listCmd(),
		createCmd(),
		peekCmd(),
		searchCmd(),
		statsCmd(),
		deleteCmd(),
		versionCmd,
	)
}

func initConfig() {
	// Load .env files early so every command sees the same environment.
	if err := config.LoadEnv(); err != nil {
		log.Printf("WARNING: failed to load .env files: %v", err)
	}

	if verbose {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("Verbose output enabled")
		for _, f := range config.FindEnvFiles() {
			log.Printf("env file: %s", f)
		}
		for _, key := range []string{"CHROMA_HOST", "CHROMA_PORT", "CHROMA_SSL", "CHROMA_TENANT", "CHROMA_DATABASE"} {
			log.Printf("%s=%s", key, os.Getenv(key))
		}
	}
}

// newClient loads the configuration and opens the client connection used for
// exactly one operation.
func newClient() (*chroma.Client, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if verbose {
		log.Printf("connecting to %s:%d (ssl=%t tenant=%s database=%s)",
			cfg.Host, cfg.Port, cfg.SSL, cfg.Tenant, cfg.Database)
	}

	return chroma.NewClient(chroma.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		SSL:      cfg.SSL,
		Token:    cfg.Token,
		Tenant:   cfg.Tenant,
		Database: cfg.Database,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
