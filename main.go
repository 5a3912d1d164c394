// notebook/main.go
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vinizap/lumi/notebook/codec"
	"github.com/vinizap/lumi/notebook/config"
	"github.com/vinizap/lumi/notebook/prompt"
)

var (
	configPath  string
	logLevel    string
	password    string
	acceptNewer bool

	cfg *config.Config
	log zerolog.Logger
)

func main() {
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	rootCmd := &cobra.Command{
		Use:           "lumi",
		Short:         "Read, convert and serve lumi notebook files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $LUMI_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "notebook password (skips the prompt)")
	rootCmd.PersistentFlags().BoolVarP(&acceptNewer, "yes", "y", false, "open files written by a newer minor version without asking")

	rootCmd.AddCommand(infoCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("lumi failed")
		os.Exit(1)
	}
}

func setup() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	log = log.Level(cfg.Level())
	return nil
}

// policy answers codec questions on the terminal unless flags already
// decided them.
func policy() codec.Policy {
	t := prompt.NewTerminal()
	p := codec.PolicyFuncs{
		Confirm: t.ConfirmOpenNewerMinorVersion,
		Prompt:  t.PromptPassword,
		Warn:    t.WarnWrongPassword,
	}
	if acceptNewer {
		p.Confirm = func() bool { return true }
	}
	if password != "" {
		static := &codec.StaticPolicy{Passwords: [][]byte{[]byte(password)}}
		p.Prompt = static.PromptPassword
	}
	return p
}

func newCodec() *codec.Codec {
	return codec.New(codec.WithPolicy(policy()), codec.WithLogger(log))
}
