package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nbarbarousis/fieldsync"
	"github.com/nbarbarousis/fieldsync/synctypes"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "fieldsync",
		Short: "Synchronize robot field recordings between cloud and local storage",
		Long: `Fieldsync reconciles raw rosbag recordings and ML samples between
cloud object storage and a local working tree.

Recordings are addressed by a six-part coordinate:
  client/region/field/time-window/box/timestamp

Examples:
  fieldsync inventory                          # Reconciled cloud/local view
  fieldsync inventory --client acme            # Narrowed to one client
  fieldsync transfer raw_download acme/emea/field-7/2025-w33/lb-042/2025-08-12-08-54-00
  fieldsync cache refresh                      # Force a full cloud rescan
  fieldsync timeline --client acme             # Per-timestamp coverage
  fieldsync exports list                       # Recorded export batches`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/fieldsync/config.yaml)")
	rootCmd.PersistentFlags().String("raw-bucket", "", "bucket holding raw recordings")
	rootCmd.PersistentFlags().String("ml-bucket", "", "bucket holding ML samples")
	rootCmd.PersistentFlags().String("region", "", "AWS region")
	rootCmd.PersistentFlags().String("endpoint", "", "custom S3 endpoint (MinIO etc.)")
	rootCmd.PersistentFlags().Bool("path-style", false, "force path-style S3 URLs")
	rootCmd.PersistentFlags().String("raw-root", "data/raw", "local root for raw recordings")
	rootCmd.PersistentFlags().String("ml-root", "data/ml", "local root for ML samples")
	rootCmd.PersistentFlags().String("processed-root", "data/processed", "local root for processed outputs")
	rootCmd.PersistentFlags().String("cache-file", "data/cloud_cache.json", "cloud inventory cache location")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("raw_bucket", rootCmd.PersistentFlags().Lookup("raw-bucket"))
	_ = viper.BindPFlag("ml_bucket", rootCmd.PersistentFlags().Lookup("ml-bucket"))
	_ = viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("path_style", rootCmd.PersistentFlags().Lookup("path-style"))
	_ = viper.BindPFlag("raw_root", rootCmd.PersistentFlags().Lookup("raw-root"))
	_ = viper.BindPFlag("ml_root", rootCmd.PersistentFlags().Lookup("ml-root"))
	_ = viper.BindPFlag("processed_root", rootCmd.PersistentFlags().Lookup("processed-root"))
	_ = viper.BindPFlag("cache_file", rootCmd.PersistentFlags().Lookup("cache-file"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "fieldsync"))
		}
		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "fieldsync"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("FIELDSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newService builds the synchronization service from the resolved
// configuration.
func newService() (*fieldsync.Service, error) {
	level := log.WarnLevel
	if viper.GetBool("verbose") {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	opts := []synctypes.Option{
		fieldsync.WithBuckets(viper.GetString("raw_bucket"), viper.GetString("ml_bucket")),
		fieldsync.WithLocalRoots(viper.GetString("raw_root"), viper.GetString("ml_root"), viper.GetString("processed_root")),
		fieldsync.WithCacheFile(viper.GetString("cache_file")),
		fieldsync.WithLogger(logger),
	}
	if region := viper.GetString("region"); region != "" {
		opts = append(opts, fieldsync.WithRegion(region))
	}
	if endpoint := viper.GetString("endpoint"); endpoint != "" {
		opts = append(opts, fieldsync.WithEndpoint(endpoint))
	}
	if viper.GetBool("path_style") {
		opts = append(opts, fieldsync.WithForcePathStyle(true))
	}
	if key := viper.GetString("access_key"); key != "" {
		opts = append(opts, fieldsync.WithStaticCredentials(key, viper.GetString("secret_key")))
	}

	client, err := fieldsync.New(opts...)
	if err != nil {
		return nil, err
	}
	return client.Service(), nil
}

// addFilterFlags registers the hierarchy-narrowing flags shared by the
// inventory and timeline commands.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("client", "", "narrow to one client")
	cmd.Flags().String("field-region", "", "narrow to one region")
	cmd.Flags().String("field", "", "narrow to one field")
	cmd.Flags().String("time-window", "", "narrow to one time window")
	cmd.Flags().String("box", "", "narrow to one box")
}

// filterFromFlags assembles a hierarchy filter from the shared flags.
func filterFromFlags(cmd *cobra.Command) synctypes.HierarchyFilter {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return synctypes.HierarchyFilter{
		ClientID:     get("client"),
		RegionID:     get("field-region"),
		FieldID:      get("field"),
		TimeWindowID: get("time-window"),
		BoxID:        get("box"),
	}
}

// parseCoordinateArg parses a /-joined six-part coordinate argument.
func parseCoordinateArg(arg string) (synctypes.Coordinate, error) {
	coord, err := synctypes.ParseCoordinate(arg)
	if err != nil {
		return synctypes.Coordinate{}, fmt.Errorf("invalid coordinate %q: expected client/region/field/time-window/box/timestamp", arg)
	}
	return coord, nil
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
