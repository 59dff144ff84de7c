package models

// Requests for the dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type MetricsRequest struct {
	Maturity string `query:"maturity" json:"maturity" default:"10Y" validate:"required"`
}

type HistoryRequest struct {
	Maturity string `query:"maturity" json:"maturity" default:"10Y" validate:"required"`
	Limit    int    `query:"limit" json:"limit" default:"0" validate:"gte=0,lte=20000"`
}

type SpreadRequest struct {
	Short string `query:"short" json:"short" default:"2Y" validate:"required"`
	Long  string `query:"long" json:"long" default:"10Y" validate:"required,nefield=Short"`
}

type InversionsRequest struct {
	Short string `query:"short" json:"short" default:"2Y" validate:"required"`
	Long  string `query:"long" json:"long" default:"10Y" validate:"required,nefield=Short"`
}
