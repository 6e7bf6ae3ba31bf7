package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"airbnb-pricer/api"
	"airbnb-pricer/metrics"
	"airbnb-pricer/predictor"
	"airbnb-pricer/storage"
)

func (a *app) importModelCmd() *commander.Command {
	var file string
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			return a.runImportModel(file)
		},
		UsageLine: "import-model -file <model.json>",
		Short:     "validate a model artifact and store it for serving",
		Flag:      *flag.NewFlagSet("import-model", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&file, "file", "", "Model artifact JSON")
	return cmd
}

func (a *app) runImportModel(file string) error {
	if err := requireFlag("file", file); err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}
	model, err := predictor.LoadArtifactBytes(data)
	if err != nil {
		return err
	}

	store, err := a.openArtifacts()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SaveModel(data); err != nil {
		return err
	}

	a.logger.Info().Str("file", file).Str("kind", model.Kind()).Fields(model.Characteristics()).Msg("[import-model] Model stored")
	return nil
}

func (a *app) serveCmd() *commander.Command {
	var (
		modelPath string
		port      int
	)
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			return a.runServe(modelPath, port)
		},
		UsageLine: "serve [-model <model.json>] [-port <port>]",
		Short:     "serve price predictions over HTTP",
		Long: `
serve loads a model artifact, from -model or from the artifact store when
-model is empty, and serves the prediction API until interrupted.

	$ pricer serve -model model.json -port 8000

`,
		Flag: *flag.NewFlagSet("serve", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&modelPath, "model", a.cfg.Model.Path, "Model artifact JSON; empty uses the imported model")
	cmd.Flag.IntVar(&port, "port", a.cfg.Server.Port, "Listen port")
	return cmd
}

func (a *app) runServe(modelPath string, port int) error {
	ctx, cfg, logger := a.ctx, a.cfg, a.logger

	model, err := a.loadModel(modelPath)
	if err != nil {
		return err
	}
	metrics.SetModelLoaded(model.Kind())

	handler, err := api.NewHandler(model, logger.Component("api"))
	if err != nil {
		return err
	}
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	})

	addr := cfg.Server.Host + ":" + strconv.Itoa(port)
	sup := api.NewSupervisor(router, api.ServerConfig{
		Addr:            addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger.Component("supervisor"))

	logger.Info().Str("addr", addr).Str("model", model.Kind()).Msg("[serve] Prediction API listening")
	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if unstopped, _ := sup.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("[serve] Service failed to stop")
		}
	}
	logger.Info().Msg("[serve] Shut down")
	return nil
}

func (a *app) loadModel(path string) (predictor.Regressor, error) {
	if path != "" {
		return predictor.LoadFile(path)
	}

	store, err := a.openArtifacts()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	data, err := store.LoadModel()
	if errors.Is(err, storage.ErrArtifactNotFound) {
		return nil, errors.New("no model: pass -model or run import-model first")
	}
	if err != nil {
		return nil, err
	}
	return predictor.LoadArtifactBytes(data)
}
