package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/go-clhost/bindings"
	"github.com/tsawler/go-clhost/cl_bridge"
	"github.com/tsawler/go-clhost/metrics"
	"github.com/tsawler/go-clhost/native"
	"github.com/tsawler/go-clhost/soft_bridge"
	"github.com/tsawler/go-clhost/transcript"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clhost",
	Short: "Script host for OpenCL-style compute drivers",
	Long: `clhost runs call scripts against a compute driver through the checked
bindings layer: every argument is validated before the driver sees it and
every failed status becomes a typed error.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.clhost/config.yaml)")
	flags.String("driver", "soft", "driver: soft or opencl")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("record", "", "write a transcript of every call to this file")
	flags.String("record-format", "", "transcript format: json or proto (default from the file extension)")

	viper.BindPFlag("driver", flags.Lookup("driver"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("record", flags.Lookup("record"))
	viper.BindPFlag("record_format", flags.Lookup("record-format"))

	viper.SetDefault("soft.platform_name", "")
	viper.SetDefault("soft.device_name", "")
	viper.SetDefault("metrics_addr", ":9464")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".clhost"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("clhost")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing || cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// setupLogging installs one slog logger for every package that logs.
func setupLogging(w io.Writer) error {
	level, err := parseLevel(viper.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch viper.GetString("log_format") {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q", viper.GetString("log_format"))
	}

	logger := slog.New(handler)
	bindings.SetLogger(logger)
	soft_bridge.SetLogger(logger)
	slog.SetDefault(logger)
	return nil
}

// openDriver creates the configured driver.
func openDriver() (native.Driver, error) {
	switch name := viper.GetString("driver"); name {
	case "soft", "":
		return soft_bridge.New(soft_bridge.Config{
			PlatformName: viper.GetString("soft.platform_name"),
			DeviceName:   viper.GetString("soft.device_name"),
		}), nil
	case "opencl":
		return cl_bridge.New()
	default:
		return nil, fmt.Errorf("unknown driver %q", name)
	}
}

// session is a bound module plus the observers the configuration asks for.
type session struct {
	module   *bindings.Module
	metrics  *metrics.Collector
	recorder *transcript.Recorder
}

func openSession() (*session, error) {
	drv, err := openDriver()
	if err != nil {
		return nil, err
	}
	s := &session{metrics: metrics.New()}
	opts := []bindings.Option{bindings.WithObserver(s.metrics)}
	if viper.GetString("record") != "" {
		s.recorder = transcript.NewRecorder(drv.Name())
		opts = append(opts, bindings.WithObserver(s.recorder))
	}
	s.module = bindings.New(drv, opts...)
	return s, nil
}

// close saves the transcript when recording.
func (s *session) close() error {
	if s.recorder == nil {
		return nil
	}
	path := viper.GetString("record")
	format := transcript.FormatForPath(path)
	if name := viper.GetString("record_format"); name != "" {
		f, err := transcript.ParseFormat(name)
		if err != nil {
			return err
		}
		format = f
	}
	if err := transcript.Save(s.recorder.Transcript(), path, format); err != nil {
		return err
	}
	slog.Info("transcript saved", "path", path, "session", s.recorder.Session(), "format", format.String())
	return nil
}
