package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OFFIS-RIT/kiwi-persona/internal/config"
	"github.com/OFFIS-RIT/kiwi-persona/internal/pipeline"
	"github.com/OFFIS-RIT/kiwi-persona/internal/provider"
	"github.com/OFFIS-RIT/kiwi-persona/internal/storage"
	"github.com/OFFIS-RIT/kiwi-persona/internal/util"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
	loaderio "github.com/OFFIS-RIT/kiwi-persona/pkg/loader/io"
	s3loader "github.com/OFFIS-RIT/kiwi-persona/pkg/loader/s3"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger/console"
)

type flags struct {
	inputDir          string
	outputDir         string
	s3Prefix          string
	persona           string
	job               string
	topK              int
	chunkSize         int
	connectivityBonus float64
	parallelism       int
	embedder          string
	extractor         string
}

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		Format: util.GetEnv("LOG_FORMAT"),
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Rank document sections for a persona and a task",
		Long: `Splits the documents of the input directory into segments, links them
through shared named entities and ranks them by similarity to the
persona and task plus a bonus per linked entity. The result is written
to persona_analysis_graphrag.json in the output directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.inputDir, "input", "i", "", "input directory (INPUT_DIR)")
	fl.StringVarP(&f.outputDir, "output", "o", "", "output directory (OUTPUT_DIR)")
	fl.StringVar(&f.s3Prefix, "s3-prefix", "", "read documents from this prefix of AWS_BUCKET instead of the input directory")
	fl.StringVar(&f.persona, "persona", "", "persona, overrides persona.json")
	fl.StringVar(&f.job, "job", "", "job to be done, overrides persona.json")
	fl.IntVarP(&f.topK, "top-k", "k", 0, "number of sections to return (TOP_K)")
	fl.IntVar(&f.chunkSize, "chunk-size", 0, "words per segment (CHUNK_SIZE)")
	fl.Float64Var(&f.connectivityBonus, "connectivity-bonus", 0, "score added per linked entity (CONNECTIVITY_BONUS)")
	fl.IntVar(&f.parallelism, "parallel", 0, "concurrent model requests (AI_PARALLEL_REQ)")
	fl.StringVar(&f.embedder, "embedder", "", "embedding adapter: fastembed, openai or ollama (AI_ADAPTER)")
	fl.StringVar(&f.extractor, "extractor", "", "entity extractor: prose, heuristic, openai or ollama (NER_ADAPTER)")

	return cmd
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, f *flags, cfg config.Config) (config.Config, error) {
	fl := cmd.Flags()
	if fl.Changed("input") {
		cfg.InputDir = f.inputDir
	}
	if fl.Changed("output") {
		cfg.OutputDir = f.outputDir
	}
	if fl.Changed("top-k") {
		cfg.TopK = f.topK
	}
	if fl.Changed("chunk-size") {
		cfg.ChunkSize = f.chunkSize
	}
	if fl.Changed("connectivity-bonus") {
		cfg.ConnectivityBonus = f.connectivityBonus
	}
	if fl.Changed("parallel") {
		cfg.Parallelism = f.parallelism
	}
	if fl.Changed("embedder") {
		cfg.Embedder.Adapter = f.embedder
	}
	if fl.Changed("extractor") {
		cfg.Extractor.Adapter = f.extractor
	}
	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, f *flags) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg, err = applyFlags(cmd, f, cfg)
	if err != nil {
		return err
	}

	persona, err := config.LoadPersona(cfg.InputDir)
	if err != nil {
		return err
	}
	if f.persona != "" {
		persona.Persona = f.persona
	}
	if f.job != "" {
		persona.JobToBeDone = f.job
	}

	source, err := newSource(ctx, cfg, f.s3Prefix)
	if err != nil {
		return err
	}

	p, closer, err := provider.NewPipeline(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("Ranking sections", "persona", persona.Persona, "job", persona.JobToBeDone)

	out, err := p.Run(ctx, source, pipeline.Request{
		Persona:     persona.Persona,
		JobToBeDone: persona.JobToBeDone,
		TopK:        cfg.TopK,
	})
	if err != nil {
		return err
	}

	path, err := pipeline.WriteOutput(cfg.OutputDir, out)
	if err != nil {
		return err
	}
	logger.Info("Output written", "path", path, "sections", len(out.RankedSections))
	return nil
}

func newSource(ctx context.Context, cfg config.Config, s3Prefix string) (loader.DocumentSource, error) {
	if s3Prefix == "" {
		return loaderio.NewDirSource(cfg.InputDir, loaderio.NewIOFileLoader()), nil
	}
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("%w: --s3-prefix requires AWS_BUCKET", config.ErrInvalidConfig)
	}

	client, err := storage.NewS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	return s3loader.NewS3FileLoaderWithClient(cfg.S3.Bucket, s3Prefix, client), nil
}
