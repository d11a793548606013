package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/VolaTeQ/conveyor/pkg/api"
	"github.com/VolaTeQ/conveyor/pkg/artifact"
	"github.com/VolaTeQ/conveyor/pkg/engine"
	"github.com/VolaTeQ/conveyor/pkg/logging"
	"github.com/VolaTeQ/conveyor/pkg/secrets"
	"github.com/VolaTeQ/conveyor/pkg/server"
	"github.com/VolaTeQ/conveyor/pkg/trigger"
)

var version = "dev"

const (
	_ = iota
	exitDotenvError
	exitLoadPipelineFailed
	exitSecretStoreFailed
	exitArtifactStoreFailed
	exitEventNotSpecified
	exitRunFailed
	exitServerFailed
)

var (
	pipelineFile   string
	eventKind      string
	eventBranch    string
	sourceDir      string
	artifactDir    string
	secretFile     string
	secretPrefix   string
	workDir        string
	keepWorkspaces bool
	listenAddr     string
	loggingType    string
	logLevel       string
	showVersion    bool
)

func init() {
	flag.StringVar(
		&pipelineFile,
		"pipeline",
		"conveyor.yaml",
		"pipeline definition file")
	flag.StringVar(
		&eventKind,
		"event",
		"",
		"event kind for a one-shot run: push or pull_request")
	flag.StringVar(
		&eventBranch,
		"branch",
		"",
		"event branch for a one-shot run")
	flag.StringVar(
		&sourceDir,
		"source",
		"",
		"local source tree for checkouts without a repository")
	flag.StringVar(
		&artifactDir,
		"artifacts",
		"artifacts",
		"artifact store root directory")
	flag.StringVar(
		&secretFile,
		"secrets-file",
		"",
		"dotenv file backing the secret store")
	flag.StringVar(
		&secretPrefix,
		"secrets-env-prefix",
		"CONVEYOR_SECRET_",
		"environment prefix backing the secret store when no file is given")
	flag.StringVar(
		&workDir,
		"work-dir",
		"",
		"directory for run workspaces (default: system temp)")
	flag.BoolVar(
		&keepWorkspaces,
		"keep-workspaces",
		false,
		"leave run workspaces on disk for inspection")
	flag.StringVar(
		&listenAddr,
		"listen",
		"",
		"listen address for webhook server mode, e.g. :8080")
	flag.StringVar(
		&loggingType,
		"logging-type",
		"tint",
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		"info",
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	_ = logging.Initialize(loggingType, logLevel)

	includeEnv()

	pipeline := loadPipeline()
	runner := &engine.Runner{
		Secrets:        openSecretStore(),
		Artifacts:      openArtifactStore(),
		WorkRoot:       workDir,
		Source:         sourceDir,
		KeepWorkspaces: keepWorkspaces,
	}

	if listenAddr != "" {
		runServer(pipeline, runner)
	} else {
		runOnce(pipeline, runner)
	}

	slog.Info("done")
}

func runOnce(pipeline *api.Pipeline, runner *engine.Runner) {
	if eventKind == "" || eventBranch == "" {
		slog.Error("-event and -branch are required for a one-shot run")
		os.Exit(exitEventNotSpecified)
	}

	ev := trigger.Event{Kind: eventKind, Branch: eventBranch}
	if !trigger.Match(pipeline.On, ev) {
		slog.Info("event does not match trigger rules, no run created",
			"event", ev.Kind, "branch", ev.Branch)
		return
	}

	if _, err := runner.RunPipeline(context.Background(), pipeline, ev); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(exitRunFailed)
	}
}

func runServer(pipeline *api.Pipeline, runner *engine.Runner) {
	srv := server.New(pipeline, runner)
	slog.Info("listening for events", "addr", listenAddr)
	if err := http.ListenAndServe(listenAddr, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(exitServerFailed)
	}
}

func loadPipeline() *api.Pipeline {
	pipeline, err := api.LoadPipeline(pipelineFile)
	if err != nil {
		slog.Error("failed to load pipeline", "filename", pipelineFile, "error", err)
		os.Exit(exitLoadPipelineFailed)
	}
	return pipeline
}

func openSecretStore() secrets.Store {
	if secretFile == "" {
		return secrets.FromEnv(secretPrefix)
	}

	store, err := secrets.FromFile(secretFile)
	if err != nil {
		slog.Error("failed to open secret store", "filename", secretFile, "error", err)
		os.Exit(exitSecretStoreFailed)
	}
	return store
}

func openArtifactStore() *artifact.Store {
	store, err := artifact.NewStore(artifactDir)
	if err != nil {
		slog.Error("failed to open artifact store", "directory", artifactDir, "error", err)
		os.Exit(exitArtifactStoreFailed)
	}
	return store
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Info("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}
