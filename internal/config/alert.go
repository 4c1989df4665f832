package config

import "time"

type Alert struct {
	ScanInterval      time.Duration `env:"ALERT_SCAN_INTERVAL" envDefault:"24h"`
	LowStockThreshold int           `env:"ALERT_LOW_STOCK_THRESHOLD" envDefault:"5"`
}
