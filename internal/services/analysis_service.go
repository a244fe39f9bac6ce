package services

import (
	"context"
	"errors"
	"time"

	"github.com/simlens/simlens/internal/analytics"
	"github.com/simlens/simlens/internal/analytics/anomaly"
	"github.com/simlens/simlens/internal/analytics/correlation"
	"github.com/simlens/simlens/internal/analytics/stats"
	"github.com/simlens/simlens/internal/analytics/timeseries"
	"github.com/simlens/simlens/internal/config"
	"github.com/simlens/simlens/internal/dataset"
	"github.com/simlens/simlens/internal/downsampling"
	"github.com/simlens/simlens/internal/logging"
	"github.com/simlens/simlens/internal/source"
	"github.com/simlens/simlens/internal/utils"
)

// AnalysisService answers analysis requests against the current dataset
type AnalysisService struct {
	logger   *logging.Logger
	session  *source.Session
	defaults config.AnalysisConfig
}

// NewAnalysisService creates a new AnalysisService. Zero-valued defaults
// fall back to the built-in ones.
func NewAnalysisService(logger *logging.Logger, session *source.Session, defaults config.AnalysisConfig) *AnalysisService {
	if defaults.MovingAverageWindow < 1 {
		defaults.MovingAverageWindow = utils.DefaultMovingAverageWindow
	}
	if defaults.HistogramBins < 1 {
		defaults.HistogramBins = utils.DefaultHistogramBins
	}
	if defaults.CriticalThreshold <= 0 {
		defaults.CriticalThreshold = utils.DefaultCriticalThreshold
	}
	if !stats.SupportedConfidence(defaults.Confidence) {
		defaults.Confidence = utils.DefaultConfidence
	}
	if defaults.DownsampleThreshold <= 0 {
		defaults.DownsampleThreshold = utils.DefaultDownsampleThreshold
	}

	return &AnalysisService{
		logger:   logger,
		session:  session,
		defaults: defaults,
	}
}

// snapshot returns the current dataset or a DATA_NOT_FOUND/MALFORMED_CSV error
func (s *AnalysisService) snapshot() (*dataset.Dataset, error) {
	ds, err := s.session.Current()
	if err != nil {
		return nil, translate(err)
	}
	return ds, nil
}

func requireParam(name, value string) error {
	if value == "" {
		return invalidParameter(name, name+" is required")
	}
	return nil
}

// Overview describes the loaded dataset
type Overview struct {
	Source    source.Status `json:"source"`
	Rows      int           `json:"rows"`
	Columns   int           `json:"columns"`
	Agents    int           `json:"agents"`
	FirstDate string        `json:"first_date,omitempty"`
	LastDate  string        `json:"last_date,omitempty"`
}

// Overview returns row, column and agent counts plus the date range
func (s *AnalysisService) Overview(ctx context.Context) (*Overview, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	first, last := ds.DateRange()
	return &Overview{
		Source:    s.session.Status(),
		Rows:      ds.Len(),
		Columns:   len(ds.Columns),
		Agents:    len(ds.Agents()),
		FirstDate: first,
		LastDate:  last,
	}, nil
}

// Reload re-reads the source and returns the fresh overview. A failed
// reload keeps serving the previous snapshot and reports the error.
func (s *AnalysisService) Reload(ctx context.Context) (*Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.ReloadTimeout)
	defer cancel()

	if err := s.session.Reload(ctx); err != nil {
		return nil, translate(err)
	}
	return s.Overview(ctx)
}

// ColumnCatalogue lists the columns of the dataset
type ColumnCatalogue struct {
	Columns []string `json:"columns"`
	Numeric []string `json:"numeric"`
	Date    string   `json:"date_column,omitempty"`
	Agent   string   `json:"agent_column,omitempty"`
}

// Columns returns all columns and the numeric parameters among them
func (s *AnalysisService) Columns(ctx context.Context) (*ColumnCatalogue, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	cat := &ColumnCatalogue{
		Columns: append([]string{}, ds.Columns...),
		Numeric: ds.NumericColumns(),
	}
	if ds.HasColumn(ds.DateColumn()) {
		cat.Date = ds.DateColumn()
	}
	if ds.HasColumn(ds.AgentColumn()) {
		cat.Agent = ds.AgentColumn()
	}
	return cat, nil
}

// Agents returns the distinct agents in first-seen order
func (s *AnalysisService) Agents(ctx context.Context) ([]string, error) {
	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return ds.Agents(), nil
}

// SeriesRequest selects one parameter series
type SeriesRequest struct {
	Param      string
	Agent      string
	Mode       string // nullable (default) or zerofill
	Downsample string // none (default), auto, lttb, minmax, m4
	Threshold  int    // target point count when downsampling
}

// SeriesPoint is one sample of a series; a null value marks a missing cell
type SeriesPoint struct {
	Row   int                `json:"row"`
	Date  string             `json:"date,omitempty"`
	Value analytics.Optional `json:"value"`
}

// SeriesResult is a parameter series ready for charting
type SeriesResult struct {
	Param      string        `json:"param"`
	Agent      string        `json:"agent,omitempty"`
	Mode       string        `json:"mode"`
	Downsample string        `json:"downsample"`
	Total      int           `json:"total"`
	Returned   int           `json:"returned"`
	Points     []SeriesPoint `json:"points"`
	Message    string        `json:"message,omitempty"`
}

// Series extracts a parameter series, optionally thinned for display
func (s *AnalysisService) Series(ctx context.Context, req *SeriesRequest) (*SeriesResult, error) {
	if err := requireParam("param", req.Param); err != nil {
		return nil, err
	}
	mode, err := dataset.ParseNumericMode(req.Mode)
	if err != nil {
		return nil, invalidParameter("mode", err.Error())
	}
	dsMode, err := downsampling.ParseMode(req.Downsample)
	if err != nil {
		return nil, invalidParameter("downsample", err.Error())
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.defaults.DownsampleThreshold
	}

	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ts := dataset.Extract(ds, req.Param, req.Agent, mode)
	sampled, err := downsampling.Apply(ts, dsMode, threshold)
	if err != nil {
		return nil, invalidParameter("downsample", err.Error())
	}

	points := make([]SeriesPoint, len(sampled))
	for i, p := range sampled {
		v := analytics.None
		if p.Valid {
			v = analytics.Some(p.Value)
		}
		points[i] = SeriesPoint{Row: p.Index, Date: p.Date, Value: v}
	}

	result := &SeriesResult{
		Param:      req.Param,
		Agent:      req.Agent,
		Mode:       string(mode),
		Downsample: string(dsMode),
		Total:      ts.Len(),
		Returned:   len(points),
		Points:     points,
	}
	if ts.ValidCount() == 0 {
		result.Message = noDataAvailableMessage
	}

	s.logger.Debug("Series extracted",
		"param", req.Param,
		"agent", req.Agent,
		"total", result.Total,
		"returned", result.Returned,
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// SummaryRequest selects the series to summarise
type SummaryRequest struct {
	Param      string
	Agent      string
	Confidence float64 // 0.90, 0.95 or 0.99; 0 uses the default
}

// SummaryResult holds the descriptive statistics of one parameter
type SummaryResult struct {
	Param              string         `json:"param"`
	Agent              string         `json:"agent,omitempty"`
	Points             int            `json:"points"`
	Nulls              int            `json:"nulls"`
	Statistics         stats.Extended `json:"statistics"`
	ConfidenceInterval stats.Interval `json:"confidence_interval"`
	Message            string         `json:"message,omitempty"`
}

// Summary computes extended statistics and the mean confidence interval.
// A parameter without numeric values yields the all-zero summary.
func (s *AnalysisService) Summary(ctx context.Context, req *SummaryRequest) (*SummaryResult, error) {
	if err := requireParam("param", req.Param); err != nil {
		return nil, err
	}
	level := req.Confidence
	if level == 0 {
		level = s.defaults.Confidence
	}
	if !stats.SupportedConfidence(level) {
		return nil, invalidParameter("confidence", "confidence must be one of 0.90, 0.95, 0.99")
	}

	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	ts := dataset.Extract(ds, req.Param, req.Agent, dataset.NullableNumeric)
	values := ts.Values()

	interval, err := stats.ConfidenceInterval(values, level)
	if err != nil {
		return nil, invalidParameter("confidence", err.Error())
	}

	result := &SummaryResult{
		Param:              req.Param,
		Agent:              req.Agent,
		Points:             len(values),
		Nulls:              ts.Len() - len(values),
		Statistics:         stats.Describe(values),
		ConfidenceInterval: interval,
	}
	if len(values) == 0 {
		result.Message = noDataAvailableMessage
	}
	return result, nil
}

// HistogramRequest selects the series and bin count
type HistogramRequest struct {
	Param string
	Agent string
	Bins  int // 0 uses the default
}

// HistogramResult is the distribution of one parameter
type HistogramResult struct {
	Param   string      `json:"param"`
	Agent   string      `json:"agent,omitempty"`
	Points  int         `json:"points"`
	Bins    []stats.Bin `json:"bins"`
	Message string      `json:"message,omitempty"`
}

// Histogram bins the valid values of a parameter
func (s *AnalysisService) Histogram(ctx context.Context, req *HistogramRequest) (*HistogramResult, error) {
	if err := requireParam("param", req.Param); err != nil {
		return nil, err
	}
	if req.Bins < 0 {
		return nil, invalidParameter("bins", "bins must be positive")
	}
	bins := req.Bins
	if bins == 0 {
		bins = s.defaults.HistogramBins
	}

	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	values := dataset.Extract(ds, req.Param, req.Agent, dataset.NullableNumeric).Values()
	result := &HistogramResult{
		Param:  req.Param,
		Agent:  req.Agent,
		Points: len(values),
		Bins:   stats.Histogram(values, bins),
	}
	if len(values) == 0 {
		result.Message = noDataAvailableMessage
	}
	return result, nil
}

// TimeSeriesRequest selects the series and analysis knobs
type TimeSeriesRequest struct {
	Param     string
	Agent     string
	Window    int     // moving average window; 0 uses the default
	Threshold float64 // critical point threshold; 0 uses the default
}

// TimeSeriesResult wraps the time-series report of one parameter
type TimeSeriesResult struct {
	Param   string            `json:"param"`
	Agent   string            `json:"agent,omitempty"`
	Report  timeseries.Report `json:"report"`
	Message string            `json:"message,omitempty"`
}

// TimeSeries runs trend, smoothing, critical point, cycle and volatility
// analysis over a parameter
func (s *AnalysisService) TimeSeries(ctx context.Context, req *TimeSeriesRequest) (*TimeSeriesResult, error) {
	if err := requireParam("param", req.Param); err != nil {
		return nil, err
	}
	if req.Window < 0 {
		return nil, invalidParameter("window", "window must be positive")
	}
	if req.Threshold < 0 {
		return nil, invalidParameter("threshold", "threshold cannot be negative")
	}

	opts := timeseries.Options{
		Window:            s.defaults.MovingAverageWindow,
		CriticalThreshold: s.defaults.CriticalThreshold,
	}
	if req.Window > 0 {
		opts.Window = req.Window
	}
	if req.Threshold > 0 {
		opts.CriticalThreshold = req.Threshold
	}

	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	ts := dataset.Extract(ds, req.Param, req.Agent, dataset.NullableNumeric)
	result := &TimeSeriesResult{
		Param:  req.Param,
		Agent:  req.Agent,
		Report: timeseries.Analyze(ts, opts),
	}
	if ts.ValidCount() == 0 {
		result.Message = noDataAvailableMessage
	}
	return result, nil
}

// CorrelationRequest selects two parameters
type CorrelationRequest struct {
	X     string
	Y     string
	Agent string
}

// CorrelationResult is the Pearson correlation and regression of Y on X
type CorrelationResult struct {
	X       string             `json:"x"`
	Y       string             `json:"y"`
	Agent   string             `json:"agent,omitempty"`
	Result  correlation.Result `json:"result"`
	Message string             `json:"message,omitempty"`
}

// Correlation correlates two parameters over the rows where both are numeric
func (s *AnalysisService) Correlation(ctx context.Context, req *CorrelationRequest) (*CorrelationResult, error) {
	if err := requireParam("x", req.X); err != nil {
		return nil, err
	}
	if err := requireParam("y", req.Y); err != nil {
		return nil, err
	}

	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	xs, ys := dataset.ExtractPair(ds, req.X, req.Y, req.Agent)
	res, err := correlation.Correlate(xs, ys)
	if err != nil {
		return nil, translate(err)
	}

	result := &CorrelationResult{X: req.X, Y: req.Y, Agent: req.Agent, Result: res}
	if len(xs) == 0 {
		result.Message = noDataAvailableMessage
	}
	return result, nil
}

// AnomalyRequest selects the series and detector
type AnomalyRequest struct {
	Param     string
	Agent     string
	Algorithm string  // iqr, zscore, moving_avg or auto (default)
	Threshold float64 // 0 uses the detector default
	Window    int     // moving_avg window; 0 uses the detector default
}

// AnomalyResult lists the flagged samples of one parameter
type AnomalyResult struct {
	Param     string            `json:"param"`
	Agent     string            `json:"agent,omitempty"`
	Algorithm string            `json:"algorithm"`
	Points    int               `json:"points"`
	Anomalies []anomaly.Anomaly `json:"anomalies"`
	Message   string            `json:"message,omitempty"`
}

// Anomalies runs the named detector over a parameter's valid samples
func (s *AnalysisService) Anomalies(ctx context.Context, req *AnomalyRequest) (*AnomalyResult, error) {
	if err := requireParam("param", req.Param); err != nil {
		return nil, err
	}
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = "auto"
	}
	if req.Threshold < 0 {
		return nil, invalidParameter("threshold", "threshold cannot be negative")
	}

	cfg := anomaly.DefaultConfig()
	if req.Threshold > 0 {
		cfg.Threshold = req.Threshold
	}
	if req.Window > 0 {
		cfg.WindowSize = req.Window
	}

	ds, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	ts := dataset.Extract(ds, req.Param, req.Agent, dataset.NullableNumeric)
	found, err := anomaly.Detect(ts, algorithm, cfg)
	if err != nil {
		if errors.Is(err, anomaly.ErrUnknownDetector) {
			return nil, NewServiceErrorWithDetails(CodeInvalidParameter, err.Error(), map[string]interface{}{
				"parameter": "algorithm",
				"supported": anomaly.ListDetectors(),
			})
		}
		return nil, translate(err)
	}

	result := &AnomalyResult{
		Param:     req.Param,
		Agent:     req.Agent,
		Algorithm: algorithm,
		Points:    ts.ValidCount(),
		Anomalies: found,
	}
	if result.Points == 0 {
		result.Message = noDataAvailableMessage
	}
	return result, nil
}
