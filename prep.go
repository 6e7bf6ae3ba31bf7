package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"airbnb-pricer/dataset"
	"airbnb-pricer/models"
	"airbnb-pricer/services"
	"airbnb-pricer/storage"
	"airbnb-pricer/utils"
)

type prepJob struct {
	name   string
	source storage.TableSource
	result *services.Result
	err    error
}

type prepOptions struct {
	input        string
	output       string
	fromPostgres bool
	toPostgres   bool
	freeze       bool
	useFrozen    bool
	summary      bool
}

func (a *app) prepCmd() *commander.Command {
	var opts prepOptions
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			return a.runPrep(opts)
		},
		UsageLine: "prep -input <listings.csv[,...]> [options]",
		Short:     "encode raw listings into the numeric feature table",
		Long: `
prep runs the preprocessing pipeline over each input table and writes the
encoded rows, with the price as the last column, to a features CSV.

	$ pricer prep -input listings.csv -output features.csv [-postgres] [-freeze-frequencies]

`,
		Flag: *flag.NewFlagSet("prep", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&opts.input, "input", "", "Comma separated raw listings CSV files")
	cmd.Flag.StringVar(&opts.output, "output", a.cfg.Pipeline.OutputPath, "Features CSV output path")
	cmd.Flag.BoolVar(&opts.fromPostgres, "from-postgres", false, "Also read the raw listings table from PostgreSQL")
	cmd.Flag.BoolVar(&opts.toPostgres, "postgres", false, "Also write features to PostgreSQL")
	cmd.Flag.BoolVar(&opts.freeze, "freeze-frequencies", false, "Store the neighbourhood frequency table computed from the inputs")
	cmd.Flag.BoolVar(&opts.useFrozen, "use-frozen", false, "Encode neighbourhoods with the stored frequency table")
	cmd.Flag.BoolVar(&opts.summary, "summary", true, "Print a summary per input")
	return cmd
}

func (a *app) runPrep(opts prepOptions) error {
	ctx, cfg, logger := a.ctx, a.cfg, a.logger
	if opts.freeze && opts.useFrozen {
		return errors.New("-freeze-frequencies and -use-frozen are mutually exclusive")
	}

	var pg *storage.PostgresStore
	if opts.fromPostgres || opts.toPostgres {
		var err error
		if pg, err = a.openPostgres(); err != nil {
			return err
		}
		defer pg.Close()
	}

	var jobs []*prepJob
	if opts.fromPostgres {
		jobs = append(jobs, &prepJob{name: "postgres:" + cfg.Postgres.RawTable, source: pg})
	}
	for _, path := range splitList(opts.input) {
		jobs = append(jobs, &prepJob{name: path, source: storage.NewCSVSource(path)})
	}
	if len(jobs) == 0 {
		return errors.New("nothing to prepare: pass -input or -from-postgres")
	}

	var artifacts *storage.ArtifactStore
	var pipelineOpts []services.Option
	if opts.freeze || opts.useFrozen {
		var err error
		if artifacts, err = a.openArtifacts(); err != nil {
			return err
		}
		defer artifacts.Close()
	}
	if opts.useFrozen {
		snap, err := artifacts.LoadFrequencies(models.ColNeighbourhoodCleansed)
		if err != nil {
			return fmt.Errorf("load frozen frequencies: %w", err)
		}
		pipelineOpts = append(pipelineOpts, services.WithFrozenFrequencies(snap.Counts))
		logger.Info().Strs("sources", snap.Sources).Time("created_at", snap.CreatedAt).Msg("[prep] Using frozen frequency table")
	}

	pipeline := services.NewPipeline(logger.Component("pipeline"), pipelineOpts...)
	logger.Info().
		Int("inputs", len(jobs)).
		Int("concurrency", cfg.Pipeline.MaxConcurrency).
		Strs("steps", pipeline.StepNames()).
		Msg("[prep] Preparing listing features")

	pool := utils.NewWorkerPool(ctx, cfg.Pipeline.MaxConcurrency)
	for _, job := range jobs {
		job := job
		pool.Submit(job.name, func(ctx context.Context) error {
			raw, err := job.source.Load(ctx)
			if err != nil {
				job.err = err
				return err
			}
			job.result, job.err = pipeline.RunDetailed(raw)
			return job.err
		})
	}
	if err := pool.Wait(); err != nil {
		logger.Warn().Err(err).Msg("[prep] Some inputs were rejected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	csvWriter, err := storage.NewCSVWriter(opts.output)
	if err != nil {
		return err
	}
	defer csvWriter.Close()

	writers := []storage.TableWriter{csvWriter}
	if opts.toPostgres {
		if err := pg.ResetFeatures(ctx, models.EncodedColumns()); err != nil {
			return err
		}
		writers = append(writers, pg)
	}

	var (
		failed  []error
		sources []string
		merged  = services.FrequencyTable{}
	)
	summarySvc := services.NewSummaryService(logger)
	for _, job := range jobs {
		if job.err != nil {
			logger.Error().Err(job.err).Str("input", job.name).Msg("[prep] Input rejected")
			failed = append(failed, fmt.Errorf("%s: %w", job.name, job.err))
			continue
		}
		if err := writeAll(ctx, writers, job.result.Table); err != nil {
			return fmt.Errorf("%s: %w", job.name, err)
		}
		merged = merged.Merge(job.result.Frequencies)
		sources = append(sources, job.name)
		if opts.summary {
			summarySvc.Print(summarySvc.Generate(job.name, job.result))
		}
	}

	if opts.freeze && len(sources) > 0 {
		snap := &models.FrequencySnapshot{
			Column:    models.ColNeighbourhoodCleansed,
			Sources:   sources,
			CreatedAt: time.Now().UTC(),
			Counts:    merged,
		}
		if err := artifacts.SaveFrequencies(snap); err != nil {
			return err
		}
	}

	logger.Info().
		Int("encoded_rows", csvWriter.Rows()).
		Int("failed_inputs", len(failed)).
		Str("output", opts.output).
		Msg("[prep] Done")
	return errors.Join(failed...)
}

// writeAll sends t to every writer concurrently.
func writeAll(ctx context.Context, writers []storage.TableWriter, t *dataset.Table) error {
	var wg sync.WaitGroup
	errs := make([]error, len(writers))
	for i, w := range writers {
		i, w := i, w
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = w.Write(ctx, t)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (a *app) loadRawCmd() *commander.Command {
	var input string
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			return a.runLoadRaw(input)
		},
		UsageLine: "load-raw -input <listings.csv>",
		Short:     "copy a raw listings CSV into the PostgreSQL raw table",
		Flag:      *flag.NewFlagSet("load-raw", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&input, "input", "", "Raw listings CSV file")
	return cmd
}

func (a *app) runLoadRaw(input string) error {
	if err := requireFlag("input", input); err != nil {
		return err
	}

	raw, err := storage.NewCSVSource(input).Load(a.ctx)
	if err != nil {
		return err
	}
	pg, err := a.openPostgres()
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.WriteRaw(a.ctx, raw); err != nil {
		return err
	}
	a.logger.Info().Str("input", input).Int("rows", raw.Len()).Str("table", a.cfg.Postgres.RawTable).Msg("[load-raw] Raw listings stored")
	return nil
}
