package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	// Instrument
	Ticker    string
	Interval  string
	RangeSpec string

	// Loop cadence
	PollSeconds    int
	BackoffSeconds int
	MinCandles     int
	PositionSize   int64

	// Indicators
	RSIPeriod  int
	BandPeriod int
	BandWidth  float64

	// Thresholds
	RSIBuy        float64
	RSISell       float64
	StopLossPct   float64
	TakeProfitPct float64

	// Data source: "yahoo" or "smartapi"
	DataSource string

	// SmartAPI credentials (required when DataSource == "smartapi")
	SmartAPIKey      string
	SmartClientCode  string
	SmartPassword    string
	SmartTOTPSecret  string
	SmartExchange    string
	SmartSymbolToken string

	// Stores
	TradeLogPath  string
	JournalDBPath string
	CandleDBPath  string

	// Infrastructure
	RedisAddr     string // empty disables the candle cache
	RedisPassword string
	MetricsAddr   string

	// Notifications (empty token disables Telegram)
	TelegramBotToken string
	TelegramChatID   string

	LogLevel string
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		Ticker:    getEnv("TICKER", "BTC-USD"),
		Interval:  getEnv("INTERVAL", "5m"),
		RangeSpec: getEnv("RANGE_SPEC", "2d"),

		PollSeconds:    getInt("POLL_SECONDS", 300),
		BackoffSeconds: getInt("BACKOFF_SECONDS", 60),
		MinCandles:     getInt("MIN_CANDLES", 20),
		PositionSize:   int64(getInt("POSITION_SIZE", 1)),

		RSIPeriod:  getInt("RSI_PERIOD", 14),
		BandPeriod: getInt("BAND_PERIOD", 20),
		BandWidth:  getFloat("BAND_WIDTH", 2.0),

		RSIBuy:        getFloat("RSI_BUY", 30),
		RSISell:       getFloat("RSI_SELL", 70),
		StopLossPct:   getFloat("STOP_LOSS_PCT", 0.02),
		TakeProfitPct: getFloat("TAKE_PROFIT_PCT", 0.05),

		DataSource: getEnv("DATA_SOURCE", "yahoo"),

		SmartAPIKey:      getEnv("SMARTAPI_KEY", ""),
		SmartClientCode:  getEnv("SMARTAPI_CLIENT_CODE", ""),
		SmartPassword:    getEnv("SMARTAPI_PASSWORD", ""),
		SmartTOTPSecret:  getEnv("SMARTAPI_TOTP_SECRET", ""),
		SmartExchange:    getEnv("SMARTAPI_EXCHANGE", "NSE"),
		SmartSymbolToken: getEnv("SMARTAPI_SYMBOL_TOKEN", ""),

		TradeLogPath:  getEnv("TRADE_LOG_PATH", "paper_trades.csv"),
		JournalDBPath: getEnv("JOURNAL_DB_PATH", "data/trades.db"),
		CandleDBPath:  getEnv("CANDLE_DB_PATH", "data/candles.db"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.DataSource {
	case "yahoo":
	case "smartapi":
		if c.SmartAPIKey == "" || c.SmartClientCode == "" || c.SmartPassword == "" ||
			c.SmartTOTPSecret == "" || c.SmartSymbolToken == "" {
			return fmt.Errorf("smartapi data source requires SMARTAPI_KEY, SMARTAPI_CLIENT_CODE, SMARTAPI_PASSWORD, SMARTAPI_TOTP_SECRET, SMARTAPI_SYMBOL_TOKEN")
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q (want yahoo or smartapi)", c.DataSource)
	}
	if c.RSIBuy >= c.RSISell {
		return fmt.Errorf("RSI_BUY (%.1f) must be below RSI_SELL (%.1f)", c.RSIBuy, c.RSISell)
	}
	return nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
