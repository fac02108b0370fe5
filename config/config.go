package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/adelgadom/papertrade/internal/domain"
)

// Config es la configuración completa de papertrade.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Backtest BacktestConfig `yaml:"backtest"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// StrategyConfig controla el generador de señales.
type StrategyConfig struct {
	FastPeriod int `yaml:"fast_period"`
	MidPeriod  int `yaml:"mid_period"`
	SlowPeriod int `yaml:"slow_period"`
	// TrendFilter selecciona la política de gating contra la EMA lenta:
	// below_slow | mid_above_slow | none
	TrendFilter string `yaml:"trend_filter"`
}

// BacktestConfig controla el simulador y las métricas.
type BacktestConfig struct {
	InitialBalance     float64 `yaml:"initial_balance"`
	CommissionPerTrade float64 `yaml:"commission_per_trade"` // 0 = sin fricciones
	SlippageBps        float64 `yaml:"slippage_bps"`         // 0 = sin fricciones
	ExtraOverlays      bool    `yaml:"extra_overlays"`       // añade RSI/ATR al chart

	// PeriodsPerYear anualiza el Sharpe por bar size. Tabla explícita,
	// claves como "1 day"; lo no listado usa los defaults del engine.
	PeriodsPerYear map[string]float64 `yaml:"periods_per_year"`

	Limits LimitsConfig `yaml:"limits"`
}

// LimitsConfig controla los guardrails de entrada. Desactivados por defecto.
type LimitsConfig struct {
	Enabled              bool `yaml:"enabled"`
	MaxConsecutiveLosses int  `yaml:"max_consecutive_losses"`
	NoTradeWindowMinutes int  `yaml:"no_trade_window_minutes"`
}

// APIConfig contiene el base URL del proveedor de datos de mercado.
type APIConfig struct {
	MarketDataBase string `yaml:"market_data_base"`
}

// StorageConfig controla dónde se persiste el ledger.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Los valores del .env sobreescriben los del YAML para las keys que
// correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Default devuelve la configuración por defecto sin leer ningún archivo.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// NoTradeWindow devuelve la ventana de sesión como time.Duration.
func (c LimitsConfig) NoTradeWindow() time.Duration {
	return time.Duration(c.NoTradeWindowMinutes) * time.Minute
}

// AnnualizationTable convierte la tabla YAML a claves domain.BarSize.
func (c *Config) AnnualizationTable() map[domain.BarSize]float64 {
	out := make(map[domain.BarSize]float64, len(c.Backtest.PeriodsPerYear))
	for k, v := range c.Backtest.PeriodsPerYear {
		out[domain.BarSize(k)] = v
	}
	return out
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están
// presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MARKET_DATA_BASE"); v != "" {
		cfg.API.MarketDataBase = v
	}
	if v := os.Getenv("LEDGER_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Strategy.FastPeriod <= 0 {
		cfg.Strategy.FastPeriod = 9
	}
	if cfg.Strategy.MidPeriod <= 0 {
		cfg.Strategy.MidPeriod = 20
	}
	if cfg.Strategy.SlowPeriod <= 0 {
		cfg.Strategy.SlowPeriod = 200
	}
	if cfg.Strategy.TrendFilter == "" {
		cfg.Strategy.TrendFilter = "below_slow"
	}
	if cfg.Backtest.InitialBalance <= 0 {
		cfg.Backtest.InitialBalance = 10000
	}
	if cfg.Backtest.PeriodsPerYear == nil {
		cfg.Backtest.PeriodsPerYear = map[string]float64{
			"1 hour":  1638,
			"1 day":   252,
			"1 week":  52,
			"1 month": 12,
		}
	}
	if cfg.Backtest.Limits.MaxConsecutiveLosses <= 0 {
		cfg.Backtest.Limits.MaxConsecutiveLosses = 5
	}
	if cfg.Backtest.Limits.NoTradeWindowMinutes <= 0 {
		cfg.Backtest.Limits.NoTradeWindowMinutes = 30
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "papertrade.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
