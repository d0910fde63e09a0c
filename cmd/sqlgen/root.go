package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sqlgen/internal/config"
	"sqlgen/internal/httpapi"
	"sqlgen/internal/llama"
	"sqlgen/internal/mcpserver"
	"sqlgen/internal/sqlgen"
)

// cliState is shared by every subcommand after the persistent pre-run.
type cliState struct {
	cfgPath  string
	backend  string
	logLevel string
	cfg      config.Config
	log      zerolog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	st := &cliState{stdin: stdin, stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "sqlgen",
		Short:         "Generate and repair SQL statements with a language model",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&st.cfgPath, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	root.PersistentFlags().StringVar(&st.backend, "backend", "", "Backend: checkpoint|hosted|hub (overrides config)")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults SQLGEN_LOG_LEVEL or info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return st.setup()
	}

	root.AddCommand(
		newPromptCmd(st, "generate", "Generate one SQL statement from a prompt"),
		newPromptCmd(st, "debug", "Repair a SQL statement described by a prompt"),
		newServeCmd(st),
		newMCPCmd(st),
	)
	return root
}

// setup loads configuration, applies flag overrides and installs loggers.
func (st *cliState) setup() error {
	var cfg config.Config
	if st.cfgPath != "" {
		c, err := config.Load(st.cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if st.backend != "" {
		cfg.Backend = st.backend
	}
	if st.logLevel != "" {
		cfg.LogLevel = st.logLevel
	}
	st.cfg = cfg.WithDefaults()

	lvl, err := zerolog.ParseLevel(strings.ToLower(st.cfg.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	st.log = zerolog.New(zerolog.ConsoleWriter{Out: st.stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Str("app", "sqlgen").Logger()
	sqlgen.SetLogger(st.log.With().Str("component", "sqlgen").Logger())
	llama.SetLogger(st.log.With().Str("component", "llama").Logger())
	httpapi.SetLogger(st.log.With().Str("component", "http").Logger())
	mcpserver.SetLogger(st.log.With().Str("component", "mcp").Logger())
	return nil
}

func newPromptCmd(st *cliState, mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:     mode + " [prompt]",
		Short:   short,
		Long:    short + ". The prompt is taken from the arguments, or from stdin when none are given or the only argument is '-'.",
		Example: "  sqlgen " + mode + " --backend hosted \"Q: list users older than 30\"\n  cat prompt.txt | sqlgen " + mode,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, st.stdin)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			gen, err := sqlgen.New(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer gen.Close()
			call := gen.Generate
			if mode == "debug" {
				call = gen.Debug
			}
			out, err := call(ctx, prompt)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(st.stdout, out)
			return err
		},
	}
}

// readPrompt joins args, or reads all of r when args are empty or "-".
func readPrompt(args []string, r io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", errors.New("empty prompt")
	}
	return string(b), nil
}

func newServeCmd(st *cliState) *cobra.Command {
	var (
		addr           string
		corsOrigins    []string
		maxBodyBytes   int64
		requestTimeout int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /generate and POST /debug over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = st.cfg.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			gen, err := sqlgen.New(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer gen.Close()

			httpapi.SetMaxBodyBytes(maxBodyBytes)
			httpapi.SetRequestTimeoutSeconds(requestTimeout)
			if len(corsOrigins) > 0 {
				httpapi.SetCORSOptions(true, corsOrigins, []string{http.MethodPost, http.MethodGet, http.MethodOptions}, []string{"Content-Type", "X-Log-Level"})
			}
			httpapi.SetShutdownContext(ctx)
			srv := &http.Server{Addr: addr, Handler: httpapi.NewMux(gen, st.cfg.Backend), ReadHeaderTimeout: 10 * time.Second}

			errCh := make(chan error, 1)
			go func() {
				st.log.Info().Str("addr", addr).Str("backend", st.cfg.Backend).Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				st.log.Warn().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config addr, default :8080)")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origins", nil, "Enable CORS for these origins")
	cmd.Flags().Int64Var(&maxBodyBytes, "max-body-bytes", 1<<20, "Maximum request body size in bytes")
	cmd.Flags().Int64Var(&requestTimeout, "request-timeout", 0, "Per-request timeout in seconds (0 disables)")
	return cmd
}

func newMCPCmd(st *cliState) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve generate_sql and debug_sql as MCP tools (stdio by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			gen, err := sqlgen.New(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer gen.Close()
			s := mcpserver.New(gen, version)
			if httpAddr == "" {
				st.log.Info().Str("backend", st.cfg.Backend).Msg("mcp stdio")
				return mcpserver.ServeStdio(s)
			}

			hs := mcpserver.NewHTTP(s)
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = hs.Shutdown(shutdownCtx)
			}()
			st.log.Info().Str("addr", httpAddr).Str("backend", st.cfg.Backend).Msg("mcp http listening on /mcp")
			if err := hs.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio")
	return cmd
}
