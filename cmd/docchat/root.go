// Copyright Docchat Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leseb/docchat/pkg/adapters/cli"
	"github.com/leseb/docchat/pkg/core/answer"
	"github.com/leseb/docchat/pkg/core/api"
	"github.com/leseb/docchat/pkg/core/config"
	"github.com/leseb/docchat/pkg/core/engine"
	"github.com/leseb/docchat/pkg/filestore"
	"github.com/leseb/docchat/pkg/observability/logging"

	// Document sources
	_ "github.com/leseb/docchat/pkg/filestore/filesystem"
	_ "github.com/leseb/docchat/pkg/filestore/s3"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "docchat [file]",
		Short: "Ask questions about a document",
		Long: `docchat loads a document (txt, md, pdf, docx, csv, html, json, jsonl) and answers
questions about it with the OpenAI chat API, falling back to a local model when
the API quota is exhausted.

Documents may be local paths, file:// URIs or s3://bucket/key locations.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "docchat.yaml", "Path to configuration file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *rootOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	logger.Debug("Starting docchat", "version", Version, "model", cfg.Engine.Model, "fallback", cfg.Fallback.Type)

	router := filestore.NewRouter(sourceParams(cfg))
	defer func() {
		if err := router.Close(ctx); err != nil {
			logger.Warn("Failed to close document sources", "error", err)
		}
	}()

	client := api.NewOpenAIClient(api.ClientOptions{
		BaseURL: cfg.Engine.ModelEndpoint,
		APIKey:  cfg.Engine.APIKey,
		Timeout: cfg.Engine.Timeout,
	})
	primary := answer.NewPrimary(client, cfg.Engine.Model, cfg.Engine.MaxTokens)

	fallback, err := answer.Fallbacks.New(ctx, cfg.Fallback.Type, fallbackParams(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize fallback: %w", err)
	}
	logger.Debug("Initialized fallback", "type", cfg.Fallback.Type)

	out := cmd.OutOrStdout()
	eng, err := engine.New(primary, fallback,
		engine.WithLogger(logger.Logger),
		engine.WithStatus(func(status string) { fmt.Fprintln(out, status) }),
	)
	if err != nil {
		return err
	}

	renderer, err := newRenderer(cfg.UI.Render, out)
	if err != nil {
		return err
	}

	var location string
	if len(args) > 0 {
		location = args[0]
	}

	session := cli.New(cli.Options{
		In:       cmd.InOrStdin(),
		Out:      out,
		Source:   router,
		Asker:    eng,
		Renderer: renderer,
		Logger:   logger.Logger,
		Location: location,
	})
	return session.Run(ctx)
}

// loadConfig reads the config file. A missing file falls back to defaults
// unless the path was given explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.Default(), nil
	}
	return nil, err
}

// newRenderer returns a markdown renderer when mode asks for one, or nil.
func newRenderer(mode string, out io.Writer) (cli.Renderer, error) {
	f, _ := out.(*os.File)
	switch {
	case mode == cli.RenderMarkdown:
	case f != nil && cli.ShouldRender(mode, f):
	default:
		return nil, nil
	}
	return cli.NewMarkdownRenderer(cli.TerminalWidth(f))
}

func sourceParams(cfg *config.Config) map[string]string {
	return map[string]string{
		"max_file_size": strconv.FormatInt(cfg.Source.MaxFileSize, 10),
		"s3_region":     cfg.Source.S3Region,
		"s3_endpoint":   cfg.Source.S3Endpoint,
	}
}

func fallbackParams(cfg *config.Config) map[string]string {
	params := map[string]string{
		"endpoint":      cfg.Fallback.Endpoint,
		"api_key":       cfg.Fallback.APIKey,
		"model":         cfg.Fallback.Model,
		"temperature":   strconv.FormatFloat(cfg.Fallback.Temperature, 'g', -1, 64),
		"chunk_size":    strconv.Itoa(cfg.Fallback.ChunkSize),
		"top_k":         strconv.Itoa(cfg.Fallback.TopK),
	}
	if cfg.Fallback.ChunkOverlap != nil {
		params["chunk_overlap"] = strconv.Itoa(*cfg.Fallback.ChunkOverlap)
	}
	if cfg.Engine.Timeout > 0 {
		params["timeout"] = cfg.Engine.Timeout.String()
	}
	if cfg.Embedding.Endpoint != "" {
		params["embedding_endpoint"] = cfg.Embedding.Endpoint
		params["embedding_api_key"] = cfg.Embedding.APIKey
		params["embedding_model"] = cfg.Embedding.Model
		params["embedding_dimensions"] = strconv.Itoa(cfg.Embedding.Dimensions)
	}
	return params
}
