// Package config はダッシュボードサーバーの設定を提供します
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config はサーバー設定を表します
//
// すべての項目はデフォルト値を持ち、環境変数で上書きできる。
type Config struct {
	BindAddr                string        `envconfig:"BIND_ADDR"`
	GracefulShutdownTimeout time.Duration `envconfig:"GRACEFUL_SHUTDOWN_TIMEOUT"`
	DataSource              string        `envconfig:"DATA_SOURCE"` // 空: 埋め込みデータ, パス or s3://bucket/key
	AWSRegion               string        `envconfig:"AWS_REGION"`
	RecomputeDelay          time.Duration `envconfig:"RECOMPUTE_DELAY"` // ローディング表示のための待ち時間
	AllowedOrigins          []string      `envconfig:"ALLOWED_ORIGINS"`
	TableMaxHeight          int           `envconfig:"TABLE_MAX_HEIGHT"`
	ChartWidth              int           `envconfig:"CHART_WIDTH"`
	ChartHeight             int           `envconfig:"CHART_HEIGHT"`
	SSEKeepalive            time.Duration `envconfig:"SSE_KEEPALIVE"`
}

var cfg *Config

// Get はデフォルト設定に環境変数による変更を適用して返します
// 2回目以降の呼び出しでは同じ設定を返す
func Get() (*Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	cfg = &Config{
		BindAddr:                "0.0.0.0:8080",
		GracefulShutdownTimeout: 5 * time.Second,
		DataSource:              "",
		AWSRegion:               "ap-northeast-1",
		RecomputeDelay:          1 * time.Second,
		AllowedOrigins:          []string{"http://localhost:3000"},
		TableMaxHeight:          300,
		ChartWidth:              960,
		ChartHeight:             480,
		SSEKeepalive:            15 * time.Second,
	}

	if err := envconfig.Process("", cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate は設定値の整合性を検証します
func (c *Config) Validate() error {
	var errs []error
	if c.RecomputeDelay < 0 {
		errs = append(errs, errors.New("RECOMPUTE_DELAY must not be negative"))
	}
	if c.TableMaxHeight <= 0 {
		errs = append(errs, errors.New("TABLE_MAX_HEIGHT must be positive"))
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		errs = append(errs, errors.New("CHART_WIDTH and CHART_HEIGHT must be positive"))
	}
	if c.SSEKeepalive <= 0 {
		errs = append(errs, errors.New("SSE_KEEPALIVE must be positive"))
	}
	return errors.Join(errs...)
}
