package analytics

import (
	"context"
	"fmt"
)

// ChartKind names a server-rendered chart image.
type ChartKind string

const (
	// ChartRevenue is the monthly revenue line chart.
	ChartRevenue ChartKind = "revenue"
	// ChartPlanDistribution is the subscribers-per-plan pie chart.
	ChartPlanDistribution ChartKind = "plan-distribution"
)

var chartPaths = map[ChartKind]string{
	ChartRevenue:          "/api/revenue-chart/",
	ChartPlanDistribution: "/api/plan-distribution-chart/",
}

// Chart fetches a server-rendered chart as PNG bytes. A failed fetch is
// not retried here; re-requesting is the caller's call.
func (s *Service) Chart(ctx context.Context, kind ChartKind) ([]byte, error) {
	path, ok := chartPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown chart kind %q", kind)
	}
	raw, err := s.api.GetRaw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s chart: %w", kind, err)
	}
	return raw, nil
}

// PDFReport fetches the full analytics report as PDF bytes.
func (s *Service) PDFReport(ctx context.Context) ([]byte, error) {
	raw, err := s.api.GetRaw(ctx, "/api/generate-pdf-report/")
	if err != nil {
		return nil, fmt.Errorf("fetch pdf report: %w", err)
	}
	return raw, nil
}
