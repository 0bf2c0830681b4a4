// Package main provides the entry point for the ttsdeck CLI application.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/ttsdeck/internal/cache"
	"github.com/dgnsrekt/ttsdeck/tts"
	"github.com/dgnsrekt/ttsdeck/tts/audio"
	"github.com/dgnsrekt/ttsdeck/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	serverURL   string
	languageTag string
	voiceName   string
	rateFlag    int
	pitchFlag   int
	volumeFlag  int
	debug       bool
	mouse       bool

	rootCmd = &cobra.Command{
		Use:   "ttsdeck [FILE]",
		Short: "Turn text into speech from your terminal",
		Long: paragraph(
			fmt.Sprintf("\nPick a voice, %s it, and turn text into downloadable speech.", keyword("audition")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		RunE:             execute,
	}
)

func execute(_ *cobra.Command, args []string) error {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}

	text, piped, err := readInitialText(args)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("ttsdeck is interactive and needs a terminal")
	}

	return runTUI(cfg, text, piped)
}

// readInitialText collects editor text from a file argument or piped stdin.
func readInitialText(args []string) (text string, piped bool, err error) {
	if len(args) == 1 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", false, fmt.Errorf("unable to read file: %w", err)
		}
		return string(b), false, nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("unable to read stdin: %w", err)
		}
		return string(b), true, nil
	}

	return "", false, nil
}

func runTUI(cfg tts.Config, initialText string, piped bool) error {
	client, err := tts.NewClient(cfg.ClientConfig())
	if err != nil {
		return err
	}

	var previewCache tts.PreviewCache
	if cfg.CacheEnabled {
		previewCache = cache.NewMemory(int64(cfg.CacheCapacityMB) * 1024 * 1024)
	}

	preview := tts.NewPreviewController(client, audio.NewPlayer(), previewCache)
	generate := tts.NewGenerationController(client)
	defer preview.Shutdown()

	// Read environment to get debugging stuff.
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	uiCfg.Languages = cfg.Languages
	uiCfg.Language = cfg.Language
	uiCfg.Voice = cfg.Voice
	uiCfg.Prosody = cfg.Prosody()
	uiCfg.InitialText = initialText
	uiCfg.StdinUsed = piped
	if mouse {
		uiCfg.EnableMouse = true
	}

	deps := ui.Deps{
		Client:   client,
		Catalog:  tts.NewCatalog(client),
		Preview:  preview,
		Generate: generate,
	}

	if _, err := ui.NewProgram(uiCfg, deps).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	_ = godotenv.Load()
	tryLoadConfigFromDefaultPlaces()

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "", "synthesis server base URL")
	rootCmd.Flags().StringVarP(&languageTag, "language", "l", "", "initial language tag (e.g. en, de, en-US)")
	rootCmd.Flags().StringVarP(&voiceName, "voice", "v", "", "initial voice id")
	rootCmd.Flags().IntVar(&rateFlag, "rate", 0, "speaking rate offset in percent (-50 to 100)")
	rootCmd.Flags().IntVar(&pitchFlag, "pitch", 0, "pitch offset in Hz (-50 to 50)")
	rootCmd.Flags().IntVar(&volumeFlag, "volume", 0, "volume offset in percent (-50 to 100)")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "debug logging")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("server_url", rootCmd.Flags().Lookup("server"))
	_ = viper.BindPFlag("language", rootCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("pitch", rootCmd.Flags().Lookup("pitch"))
	_ = viper.BindPFlag("volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "ttsdeck")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "ttsdeck")}, dirs...)
	}

	if c := os.Getenv("TTSDECK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("ttsdeck")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("ttsdeck")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "ttsdeck.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

// setupLog configures logging from the environment before flags are parsed:
// TTSDECK_DEBUG enables debug level and TTSDECK_LOG_FILE redirects output.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	if os.Getenv("TTSDECK_DEBUG") != "" || debug {
		log.SetLevel(log.DebugLevel)
		log.SetOutput(os.Stderr)
	}

	if path := os.Getenv("TTSDECK_LOG_FILE"); path != "" {
		f, err := os.OpenFile(tts.ExpandPath(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error setting up logging: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}

var (
	keywordStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"})
	paragraphStyle = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2)
)

func keyword(s string) string {
	return keywordStyle.Render(s)
}

func paragraph(s string) string {
	return paragraphStyle.Render(s)
}
