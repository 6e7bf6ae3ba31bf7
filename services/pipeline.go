package services

import (
	"fmt"
	"time"

	"airbnb-pricer/dataset"
	"airbnb-pricer/metrics"
	"airbnb-pricer/models"
	"airbnb-pricer/utils"
)

// Step is one named stage of the preprocessing pipeline.
type Step struct {
	Name  string
	Apply Encoder
}

// Result is the outcome of a pipeline run.
type Result struct {
	Table       *dataset.Table
	Frequencies FrequencyTable // neighbourhood counts used for encoding
	RawRows     int
	DroppedRows int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFrozenFrequencies encodes neighbourhoods with a snapshot taken from a
// reference corpus instead of counting the table being processed.
func WithFrozenFrequencies(ft FrequencyTable) Option {
	return func(p *Pipeline) { p.frozen = ft.Clone() }
}

// Pipeline runs the pruner, the normalizer and the encoders in a fixed order.
// A Pipeline holds no per-run state and may be shared between goroutines.
type Pipeline struct {
	logger  *utils.Logger
	cleaner *Cleaner
	frozen  FrequencyTable
}

// NewPipeline creates a Pipeline with the given logger.
func NewPipeline(logger *utils.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = utils.Nop()
	}
	p := &Pipeline{logger: logger}
	p.cleaner = NewCleaner(logger)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunPreprocessingPipeline turns a raw listings table into the numeric feature
// table with target as its last column. The input table is not modified.
func RunPreprocessingPipeline(raw *dataset.Table) (*dataset.Table, error) {
	return NewPipeline(nil).Run(raw)
}

// Run is RunDetailed without the run statistics.
func (p *Pipeline) Run(raw *dataset.Table) (*dataset.Table, error) {
	res, err := p.RunDetailed(raw)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// RunDetailed applies every step to raw and stops at the first failure.
func (p *Pipeline) RunDetailed(raw *dataset.Table) (*Result, error) {
	res := &Result{RawRows: raw.Len()}
	start := time.Now()

	t := raw
	for _, step := range p.steps(res) {
		stepStart := time.Now()
		next, err := step.Apply(t)
		metrics.RecordPipelineStep(step.Name, time.Since(stepStart))
		if err != nil {
			metrics.RecordPipelineRun(0, 0, err)
			p.logger.Error().Err(err).Str("step", step.Name).Msg("[pipeline] Step failed")
			return nil, fmt.Errorf("pipeline step %s: %w", step.Name, err)
		}
		p.logger.Debug().
			Str("step", step.Name).
			Int("rows", next.Len()).
			Int("columns", next.Width()).
			Dur("took", time.Since(stepStart)).
			Msg("[pipeline] Step done")
		t = next
	}

	res.Table = t
	metrics.RecordPipelineRun(res.DroppedRows, t.Len(), nil)
	p.logger.Info().
		Int("rows_in", res.RawRows).
		Int("rows_out", t.Len()).
		Int("features", t.Width()-1).
		Dur("took", time.Since(start)).
		Msg("[pipeline] Encoded listings")
	return res, nil
}

// StepNames lists the steps in execution order.
func (p *Pipeline) StepNames() []string {
	steps := p.steps(&Result{})
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

// steps builds the step list for one run; res collects what the steps observe.
func (p *Pipeline) steps(res *Result) []Step {
	return []Step{
		{Name: "prune", Apply: PruneColumns},
		{Name: "normalize", Apply: func(t *dataset.Table) (*dataset.Table, error) {
			out, dropped, err := p.cleaner.HandleMissing(t)
			res.DroppedRows = dropped
			return out, err
		}},
		{Name: "bathrooms", Apply: EncodeBathrooms},
		{Name: "amenities", Apply: EncodeAmenities},
		{Name: "host_since", Apply: EncodeHostSince},
		{Name: "response_rate", Apply: EncodeResponseRate},
		{Name: "price", Apply: EncodePrice},
		{Name: "room_type", Apply: EncodeRoomType},
		{Name: "response_time", Apply: EncodeResponseTime},
		{Name: "booleans", Apply: EncodeBooleans},
		{Name: "neighbourhood", Apply: func(t *dataset.Table) (*dataset.Table, error) {
			ft := p.frozen
			if ft == nil {
				var err error
				if ft, err = ComputeFrequencyTable(t, models.ColNeighbourhoodCleansed); err != nil {
					return nil, err
				}
			}
			res.Frequencies = ft.Clone()
			return ApplyFrequencyMapping(t, models.ColNeighbourhoodCleansed, ft)
		}},
		{Name: "materialize", Apply: Materialize},
	}
}
