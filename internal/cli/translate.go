package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/subedit/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file] [row...]",
	Short: "Translate event text to another language using AI",
	Long: `Translate the text of an ASS file's events to another language using AI.

Only the plain text between override blocks is sent to the provider; tags,
comments and drawings stay where they are. With no rows every event is
translated. Provider, model, concurrency and batch size default to the
config file.

Examples:
  subedit translate episode.ass --target-language japanese
  subedit translate episode.ass 3 4 5 -t es --provider openai
  subedit translate episode.ass -t german --provider anthropic -o episode.de.ass`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Source language of the subtitles")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider-specific, uses sensible defaults)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	translateCmd.Flags().
		String("provider", "", "Translation provider (gemini, openai, anthropic)")
	translateCmd.Flags().
		String("prompt", "", "Additional instructions for the model")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of text blocks per API request")
}

// translateSettings merges flags over the loaded config.
type translateSettings struct {
	provider       translate.Provider
	apiKey         string
	model          string
	modelOverride  bool
	inputLanguage  string
	targetLanguage string
	prompt         string
	concurrency    int
	batchSize      int
}

func readTranslateSettings(cmd *cobra.Command) translateSettings {
	s := translateSettings{
		provider:       translate.Provider(cfg.Translate.Provider),
		model:          cfg.Translate.Model,
		inputLanguage:  cfg.Translate.SourceLanguage,
		targetLanguage: cfg.Translate.TargetLanguage,
		prompt:         cfg.Translate.Prompt,
		concurrency:    cfg.Translate.Concurrency,
		batchSize:      cfg.Translate.BatchSize,
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("provider"); v != "" {
		s.provider = translate.Provider(strings.ToLower(v))
	}
	if v, _ := flags.GetString("model"); v != "" {
		s.model = v
	}
	if v, _ := flags.GetString("language"); v != "" {
		s.inputLanguage = v
	}
	if v, _ := flags.GetString("target-language"); v != "" {
		s.targetLanguage = v
	}
	if v, _ := flags.GetString("prompt"); v != "" {
		s.prompt = v
	}
	if flags.Changed("concurrency") {
		s.concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("batch-size") {
		s.batchSize, _ = flags.GetInt("batch-size")
	}
	s.modelOverride, _ = flags.GetBool("model-override")
	s.apiKey, _ = flags.GetString("api-key")
	if s.apiKey == "" {
		s.apiKey = os.Getenv(translate.APIKeyEnv(s.provider))
	}
	return s
}

func (s translateSettings) validate() error {
	if s.targetLanguage == "" {
		return fmt.Errorf("target language is required")
	}

	if s.inputLanguage != "" &&
		strings.EqualFold(
			strings.TrimSpace(s.inputLanguage),
			strings.TrimSpace(s.targetLanguage),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			s.inputLanguage,
			s.targetLanguage,
		)
	}

	switch s.provider {
	case translate.ProviderGemini, translate.ProviderOpenAI, translate.ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported translation provider: %s", s.provider)
	}

	if s.apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			translate.APIKeyEnv(s.provider),
		)
	}

	if s.model != "" && !s.modelOverride && !isValidModel(s.provider, s.model) {
		return fmt.Errorf(
			"unsupported %s model %q: valid models are %s (use --model-override to bypass)",
			s.provider,
			s.model,
			strings.Join(validModels[s.provider], ", "),
		)
	}

	if s.concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", s.concurrency)
	}
	if s.batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", s.batchSize)
	}
	return nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	settings := readTranslateSettings(cmd)
	if err := settings.validate(); err != nil {
		return err
	}

	d, err := openDocument(subtitlePath)
	if err != nil {
		return err
	}
	ids, err := eventIDs(d, args[1:])
	if err != nil {
		return err
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"events", len(ids),
		"provider", settings.provider,
		"target_language", settings.targetLanguage,
		"input_language", settings.inputLanguage,
		"model", settings.model,
	)

	translator, err := translate.Factory(ctx, settings.provider, settings.apiKey, translate.Options{
		InputLanguage:  settings.inputLanguage,
		TargetLanguage: settings.targetLanguage,
		Model:          settings.model,
		Prompt:         settings.prompt,
		BatchSize:      settings.batchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	texts := translate.NewTexts(translator, settings.concurrency, logger)
	n, err := d.TranslateEvents(ctx, texts, ids...)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	out, err := saveDocument(cmd, d, subtitlePath)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles translated successfully: %s\n", out)
	fmt.Fprintf(cmd.OutOrStdout(), "  Events: %d\n", n)
	fmt.Fprintf(cmd.OutOrStdout(), "  Target language: %s\n", settings.targetLanguage)
	return nil
}
