package api

import (
	"context"
	"fmt"
)

// GetMetrics retrieves the headline portfolio metrics.
func (c *Client) GetMetrics(ctx context.Context) (Metrics, error) {
	resp, err := c.Get(ctx, "/api/portfolio/metrics")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics: %w", err)
	}
	out, err := decode[MetricsResponse](resp, "/api/portfolio/metrics")
	if err != nil {
		return nil, err
	}
	return out.Metrics, nil
}

// GetHistory retrieves the equity history for a timeframe such as "1D" or "1Y".
func (c *Client) GetHistory(ctx context.Context, timeframe string) (*HistoryResponse, error) {
	resp, err := c.GetWithParams(ctx, "/api/portfolio/history", map[string]string{
		"timeframe": timeframe,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return decodeBody[HistoryResponse](resp, sanitizeNonFinite(resp.Body()), "/api/portfolio/history")
}

// GetPositions retrieves open positions.
func (c *Client) GetPositions(ctx context.Context) ([]Position, error) {
	resp, err := c.Get(ctx, "/api/portfolio/positions")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch positions: %w", err)
	}
	out, err := decode[PositionsResponse](resp, "/api/portfolio/positions")
	if err != nil {
		return nil, err
	}
	return out.Positions, nil
}

// GetOrders retrieves recent orders.
func (c *Client) GetOrders(ctx context.Context) ([]Order, error) {
	resp, err := c.Get(ctx, "/api/portfolio/orders")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	out, err := decode[OrdersResponse](resp, "/api/portfolio/orders")
	if err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetAnalysis retrieves indicators for a symbol.
func (c *Client) GetAnalysis(ctx context.Context, symbol string) (*AnalysisResponse, error) {
	resp, err := c.GetWithParams(ctx, "/api/portfolio/analysis", map[string]string{
		"symbol": symbol,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analysis: %w", err)
	}
	return decode[AnalysisResponse](resp, "/api/portfolio/analysis")
}

// GetImportantInfo retrieves stored facts about the user. An empty category
// returns everything.
func (c *Client) GetImportantInfo(ctx context.Context, category string) ([]InfoItem, error) {
	params := map[string]string{}
	if category != "" {
		params["category"] = category
	}
	resp, err := c.GetWithParams(ctx, "/api/user/important-info", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch important info: %w", err)
	}
	out, err := decode[ImportantInfoResponse](resp, "/api/user/important-info")
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &AppError{Message: "Failed to fetch important info"}
	}
	return out.Data, nil
}

// GetLegacy retrieves one of the legacy chart-data endpoints:
// LegacyMetrics, LegacyAllocation or LegacyPerformance.
func (c *Client) GetLegacy(ctx context.Context, kind string) (*LegacyResponse, error) {
	switch kind {
	case LegacyMetrics, LegacyAllocation, LegacyPerformance:
	default:
		return nil, fmt.Errorf("unknown legacy endpoint %q", kind)
	}

	path := "/portfolio/" + kind
	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	return decode[LegacyResponse](resp, path)
}
