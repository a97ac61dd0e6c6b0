// Command seed manages the stored question catalog and moves session
// collections between store backends.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"swipeinterview/internal/app"
	"swipeinterview/internal/config"
	"swipeinterview/internal/model"
	"swipeinterview/internal/scoring"
)

var (
	catalogPath string
	fromStore   string
	toStore     string
	timeout     time.Duration

	proxyURL string
	topic    string
	plan     string
	save     bool
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Seed and inspect interview data",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Replace the MongoDB question catalog",
	Long: `Load a YAML catalog (or the built-in questions when --file is empty),
validate it, and replace the "questions" collection with it.`,
	RunE: runQuestions,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the MongoDB question catalog as YAML",
	RunE:  runShow,
}

var copyCmd = &cobra.Command{
	Use:   "copy-sessions",
	Short: "Copy the session collection from one store backend to another",
	RunE:  runCopy,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a question catalog through the scoring proxy",
	Long: `Ask a running scoring proxy for one question per difficulty in --plan.
The catalog is printed as YAML, or replaces the MongoDB catalog with --save.`,
	RunE: runGenerate,
}

func openMongo(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	a := &app.App{Config: cfg}
	if err := a.OpenMongo(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func runQuestions(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	questions, err := config.LoadCatalog(catalogPath)
	if err != nil {
		return err
	}

	a, err := openMongo(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	previous, err := a.Questions.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if err := a.Questions.ReplaceAll(ctx, questions); err != nil {
		return fmt.Errorf("failed to seed questions: %w", err)
	}
	fmt.Printf("Replaced %d questions with %d in %s.questions\n", previous, len(questions), a.Config.MongoDB)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := openMongo(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	questions, err := a.Questions.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return fmt.Errorf("no questions stored; seed them with: seed questions")
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(config.CatalogFile{Questions: questions})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var difficulties []model.Difficulty
	for _, d := range strings.Split(plan, ",") {
		if d = strings.TrimSpace(d); d != "" {
			difficulties = append(difficulties, model.Difficulty(strings.ToLower(d)))
		}
	}

	url := proxyURL
	if url == "" {
		url = config.Load().ScoringURL
	}
	if url == "" {
		return fmt.Errorf("no proxy URL; pass --url or set SCORING_URL")
	}

	questions, err := scoring.NewClient(url, timeout).GenerateCatalog(ctx, topic, difficulties)
	if err != nil {
		return err
	}

	if !save {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(config.CatalogFile{Questions: questions})
	}

	a, err := openMongo(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	if err := a.Questions.ReplaceAll(ctx, questions); err != nil {
		return fmt.Errorf("failed to save generated questions: %w", err)
	}
	fmt.Printf("Saved %d generated questions on %q\n", len(questions), topic)
	return nil
}

func runCopy(cmd *cobra.Command, args []string) error {
	if fromStore == toStore {
		return fmt.Errorf("--from and --to must differ")
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	open := func(backend string) (*app.App, error) {
		cfg := config.Load()
		cfg.Store = config.StoreBackend(backend)
		return app.Open(ctx, cfg)
	}

	src, err := open(fromStore)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	defer src.Close(context.Background())

	dst, err := open(toStore)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	defer dst.Close(context.Background())

	sessions, err := src.Sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	if err := dst.Sessions.Save(ctx, sessions); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	fmt.Printf("Copied %d sessions from %s to %s\n", len(sessions), fromStore, toStore)
	return nil
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")

	questionsCmd.Flags().StringVarP(&catalogPath, "file", "f", "", "YAML catalog (built-in questions if empty)")
	generateCmd.Flags().StringVar(&proxyURL, "url", "", "Scoring proxy base URL (defaults to SCORING_URL)")
	generateCmd.Flags().StringVar(&topic, "topic", "general", "Question topic")
	generateCmd.Flags().StringVar(&plan, "plan", "easy,easy,medium,medium,hard,hard", "Comma separated difficulties")
	generateCmd.Flags().BoolVar(&save, "save", false, "Replace the MongoDB catalog instead of printing")
	copyCmd.Flags().StringVar(&fromStore, "from", "redis", "Source backend (redis, mongo, postgres)")
	copyCmd.Flags().StringVar(&toStore, "to", "mongo", "Destination backend (redis, mongo, postgres)")

	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(copyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
