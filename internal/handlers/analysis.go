package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/simlens/simlens/internal/services"
)

// Series returns one parameter as chart points
// GET /v1/series?param=&agent=&mode=&downsample=&threshold=
func (h *Handler) Series(c *fiber.Ctx) error {
	threshold, err := queryInt(c, "threshold")
	if err != nil {
		return err
	}

	res, err := h.analysis.Series(c.UserContext(), &services.SeriesRequest{
		Param:      c.Query("param"),
		Agent:      c.Query("agent"),
		Mode:       c.Query("mode"),
		Downsample: c.Query("downsample"),
		Threshold:  threshold,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Summary returns descriptive statistics of one parameter
// GET /v1/summary?param=&agent=&confidence=
func (h *Handler) Summary(c *fiber.Ctx) error {
	confidence, err := queryFloat(c, "confidence")
	if err != nil {
		return err
	}

	res, err := h.analysis.Summary(c.UserContext(), &services.SummaryRequest{
		Param:      c.Query("param"),
		Agent:      c.Query("agent"),
		Confidence: confidence,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Histogram returns the distribution of one parameter
// GET /v1/histogram?param=&agent=&bins=
func (h *Handler) Histogram(c *fiber.Ctx) error {
	bins, err := queryInt(c, "bins")
	if err != nil {
		return err
	}

	res, err := h.analysis.Histogram(c.UserContext(), &services.HistogramRequest{
		Param: c.Query("param"),
		Agent: c.Query("agent"),
		Bins:  bins,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// TimeSeries returns the trend, smoothing and pattern report
// GET /v1/timeseries?param=&agent=&window=&threshold=
func (h *Handler) TimeSeries(c *fiber.Ctx) error {
	window, err := queryInt(c, "window")
	if err != nil {
		return err
	}
	threshold, err := queryFloat(c, "threshold")
	if err != nil {
		return err
	}

	res, err := h.analysis.TimeSeries(c.UserContext(), &services.TimeSeriesRequest{
		Param:     c.Query("param"),
		Agent:     c.Query("agent"),
		Window:    window,
		Threshold: threshold,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Correlation correlates two parameters
// GET /v1/correlation?x=&y=&agent=
func (h *Handler) Correlation(c *fiber.Ctx) error {
	res, err := h.analysis.Correlation(c.UserContext(), &services.CorrelationRequest{
		X:     c.Query("x"),
		Y:     c.Query("y"),
		Agent: c.Query("agent"),
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Anomalies flags unusual samples of one parameter
// GET /v1/anomalies?param=&agent=&algorithm=&threshold=&window=
func (h *Handler) Anomalies(c *fiber.Ctx) error {
	threshold, err := queryFloat(c, "threshold")
	if err != nil {
		return err
	}
	window, err := queryInt(c, "window")
	if err != nil {
		return err
	}

	res, err := h.analysis.Anomalies(c.UserContext(), &services.AnomalyRequest{
		Param:     c.Query("param"),
		Agent:     c.Query("agent"),
		Algorithm: c.Query("algorithm"),
		Threshold: threshold,
		Window:    window,
	})
	if err != nil {
		return err
	}
	return c.JSON(res)
}
