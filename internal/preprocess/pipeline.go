package preprocess

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/tabprep/internal/config"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/io"
	"github.com/paveg/tabprep/internal/logging"
	"github.com/paveg/tabprep/internal/monitoring"
	"github.com/paveg/tabprep/internal/validation"
	"github.com/rs/zerolog"
)

const stepLoad = "load"

// Pipeline loads a CSV file and runs the preprocessing steps over it
type Pipeline struct {
	columns  config.Columns
	splitter Splitter
	steps    []Step
	logger   zerolog.Logger
	metrics  *monitoring.MetricsCollector
	mem      memory.Allocator
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics sets the collector that records step timings
func WithMetrics(metrics *monitoring.MetricsCollector) Option {
	return func(p *Pipeline) {
		p.metrics = metrics
	}
}

// WithAllocator sets the Arrow allocator used for every column
func WithAllocator(mem memory.Allocator) Option {
	return func(p *Pipeline) {
		p.mem = mem
	}
}

// WithSteps replaces the default steps
func WithSteps(steps ...Step) Option {
	return func(p *Pipeline) {
		p.steps = steps
	}
}

// NewPipeline creates a pipeline for cfg. Zero fields of cfg take their
// defaults, so NewPipeline(config.Config{}) reproduces the stock column names.
func NewPipeline(cfg config.Config, opts ...Option) *Pipeline {
	cfg = cfg.WithDefaults()

	p := &Pipeline{
		columns:  cfg.Columns,
		splitter: Splitter{TestSize: cfg.Split.TestSize, Seed: cfg.Split.Seed},
		logger:   logging.Nop(),
		metrics:  monitoring.NewMetricsCollector(cfg.MetricsCollection),
		mem:      memory.NewGoAllocator(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.steps == nil {
		p.steps = DefaultSteps(p.columns, p.mem)
	}
	p.splitter.Mem = p.mem
	return p
}

// DefaultSteps returns the standard step order for the given column roles:
// impute, one-hot, label encode, standardize, parse torque, ratio.
func DefaultSteps(cols config.Columns, mem memory.Allocator) []Step {
	return []Step{
		Impute{Mean: []string{cols.ImputeMean}, Mode: []string{cols.ImputeMode}, Mem: mem},
		OneHot{Columns: cols.OneHot, Mem: mem},
		LabelEncode{Column: cols.LabelEncode, Mem: mem},
		Standardize{Columns: cols.Scale, Mem: mem},
		Torque{Column: cols.Torque, Mem: mem},
		Ratio{Numerator: cols.RatioNumerator, Denominator: cols.RatioDenominator, Output: cols.RatioName, Mem: mem},
	}
}

// Schema returns the columns the input must provide and the kind each is read as
func (p *Pipeline) Schema() []dataframe.Field {
	cols := p.columns
	fields := []dataframe.Field{
		{Name: cols.ImputeMean, Kind: dataframe.KindNumeric},
		{Name: cols.ImputeMode, Kind: dataframe.KindCategorical},
	}
	for _, name := range cols.OneHot {
		fields = append(fields, dataframe.Field{Name: name, Kind: dataframe.KindCategorical})
	}
	fields = append(fields, dataframe.Field{Name: cols.LabelEncode, Kind: dataframe.KindCategorical})
	for _, name := range cols.Scale {
		fields = append(fields, dataframe.Field{Name: name, Kind: dataframe.KindNumeric})
	}
	return append(fields,
		dataframe.Field{Name: cols.Torque, Kind: dataframe.KindText},
		dataframe.Field{Name: cols.RatioNumerator, Kind: dataframe.KindNumeric},
		dataframe.Field{Name: cols.RatioDenominator, Kind: dataframe.KindNumeric},
	)
}

// Load reads the CSV file at path and checks it against Schema. The target
// column only has to exist; its kind is inferred.
func (p *Pipeline) Load(path string) (*dataframe.DataFrame, error) {
	schema := p.Schema()

	options := io.DefaultCSVOptions()
	options.Kinds = make(map[string]dataframe.Kind, len(schema))
	for _, field := range schema {
		options.Kinds[field.Name] = field.Kind
	}

	df, err := io.ReadCSVFile(path, options, p.mem)
	if err != nil {
		return nil, err
	}

	if err := validation.NewCompoundValidator(
		validation.NewSchemaValidator(df, stepLoad, schema...),
		validation.NewColumnValidator(df, stepLoad, p.columns.Target),
	).Validate(); err != nil {
		df.Release()
		return nil, err
	}
	return df, nil
}

// Run loads the CSV file at path and preprocesses it. The first error stops the
// run and is returned wrapped with the name of the failing step.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	var df *dataframe.DataFrame
	err := p.metrics.RecordStep(stepLoad, func() (int, error) {
		var err error
		df, err = p.Load(path)
		if err != nil {
			return 0, err
		}
		return df.Len(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stepLoad, err)
	}
	defer df.Release()

	p.logger.Debug().
		Str("path", path).
		Int("rows", df.Len()).
		Int("columns", df.Width()).
		Msg("input loaded")

	return p.RunFrame(ctx, df)
}

// RunFrame preprocesses an already loaded frame. df is not modified or
// released.
func (p *Pipeline) RunFrame(ctx context.Context, df *dataframe.DataFrame) (*Result, error) {
	current := df
	release := func() {
		if current != df {
			current.Release()
		}
	}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			release()
			return nil, err
		}

		var next *dataframe.DataFrame
		err := p.metrics.RecordStep(step.Name(), func() (int, error) {
			var err error
			next, err = step.Apply(current)
			return current.Len(), err
		})
		if err != nil {
			release()
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		release()
		current = next
		p.logger.Debug().
			Str("step", step.Name()).
			Int("columns", current.Width()).
			Msg("step applied")
	}
	defer release()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, y, err := SeparateTarget(current, p.columns.Target)
	if err != nil {
		return nil, fmt.Errorf("separate_target: %w", err)
	}
	defer x.Release()
	defer y.Release()

	var result *Result
	err = p.metrics.RecordStep(StepSplit, func() (int, error) {
		var err error
		result, err = p.splitter.Split(x, y)
		return x.Len(), err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StepSplit, err)
	}

	p.logger.Info().
		Int("train_rows", result.XTrain.Len()).
		Int("test_rows", result.XTest.Len()).
		Int("features", result.XTrain.Width()).
		Msg("preprocessing finished")

	return result, nil
}

// Timings returns the duration of every step recorded so far. It is empty
// unless metrics collection is enabled.
func (p *Pipeline) Timings() []monitoring.StepTiming {
	return p.metrics.Timings()
}

// Metrics returns the pipeline's collector
func (p *Pipeline) Metrics() *monitoring.MetricsCollector {
	return p.metrics
}
