package datamodels

import (
	"time"

	"github.com/google/uuid"
)

type BaseModel struct {
	Id        int64     `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type BaseModelUUID struct {
	ID        uuid.UUID `gorm:"primarykey;default:gen_random_uuid();type:uuid" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// BacktestRun is the summary row of one pipeline run.
type BacktestRun struct {
	BaseModelUUID
	Name              string    `gorm:"not null;index" json:"name"`
	ConfigFingerprint string    `gorm:"not null;index" json:"config_fingerprint"`
	Commit            string    `json:"commit"`
	StartedAt         time.Time `gorm:"not null" json:"started_at"`
	SymbolX           string    `gorm:"not null" json:"symbol_x"`
	SymbolY           string    `gorm:"not null" json:"symbol_y"`
	Window            int       `gorm:"not null" json:"window"`
	EntryThreshold    float64   `gorm:"not null" json:"entry_threshold"`
	ExitThreshold     float64   `gorm:"not null" json:"exit_threshold"`
	StopZ             float64   `gorm:"not null" json:"stop_z"`
	TransactionCost   float64   `gorm:"not null" json:"transaction_cost"`
	Periods           int       `gorm:"not null" json:"periods"`
	Trades            int       `gorm:"not null" json:"trades"`
	FirstTimestamp    time.Time `json:"first_timestamp"`
	LastTimestamp     time.Time `json:"last_timestamp"`
	Sharpe            float64   `json:"sharpe"`
	SharpeNet         float64   `json:"sharpe_net"`
	CumPnL            float64   `json:"cum_pnl"`
	CumPnLNet         float64   `json:"cum_pnl_net"`
	CumReturn         float64   `json:"cum_return"`
	CumReturnNet      float64   `json:"cum_return_net"`
}

// BacktestPeriod is one timestamp of a run, flattened across all stages.
type BacktestPeriod struct {
	BaseModel
	RunID        uuid.UUID `gorm:"not null;index;type:uuid" json:"-"`
	Timestamp    time.Time `gorm:"not null;index" json:"timestamp"`
	PriceX       float64   `gorm:"not null" json:"price_x"`
	PriceY       float64   `gorm:"not null" json:"price_y"`
	Alpha        float64   `json:"alpha"`
	Beta         float64   `json:"beta"`
	SpreadMean   float64   `json:"spread_mean"`
	SpreadStd    float64   `json:"spread_std"`
	CointPValue  float64   `json:"coint_pvalue"`
	ZScore       *float64  `json:"zscore"`
	Position     Position  `gorm:"not null" json:"position"`
	Turnover     float64   `json:"turnover"`
	Cost         float64   `json:"cost"`
	PnL          float64   `json:"pnl"`
	PnLNet       float64   `json:"pnl_net"`
	CumPnL       float64   `json:"cum_pnl"`
	CumPnLNet    float64   `json:"cum_pnl_net"`
	Return       float64   `json:"return"`
	ReturnNet    float64   `json:"return_net"`
	CumReturn    float64   `json:"cum_return"`
	CumReturnNet float64   `json:"cum_return_net"`
}
