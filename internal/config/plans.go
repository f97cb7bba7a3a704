package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	IntervalMonthly = "monthly"
	IntervalAnnual  = "annual"
)

// PlanProduct maps a provider product id to a billing interval.
type PlanProduct struct {
	ProductID string `mapstructure:"productId"`
	Interval  string `mapstructure:"interval"`
}

// PlanConfig is the provider product catalog. The checkout provider sells
// exactly one monthly and one annual product for the premium plan.
type PlanConfig struct {
	Products []PlanProduct `mapstructure:"products"`
}

func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Products: []PlanProduct{
			{ProductID: getenv("LASTLINK_MONTHLY_PRODUCT_ID", "TBMONTHLY"), Interval: IntervalMonthly},
			{ProductID: getenv("LASTLINK_ANNUAL_PRODUCT_ID", "TBANNUAL"), Interval: IntervalAnnual},
		},
	}
}

// PlanCatalog holds the current plan config and supports hot reload.
type PlanCatalog struct {
	current atomic.Value // holds PlanConfig
}

func NewPlanCatalog() (*PlanCatalog, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/timberbase/config")
	v.AddConfigPath("/etc/timberbase")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TIMBERBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPlanConfig()
		v.SetDefault("plans.products", defaults.Products)
	}

	var cfg PlanConfig
	if err := v.UnmarshalKey("plans", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Products) == 0 {
		cfg = DefaultPlanConfig()
	}
	if err := validatePlanConfig(cfg); err != nil {
		return nil, err
	}

	catalog := &PlanCatalog{}
	catalog.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlanConfig
		if err := v.UnmarshalKey("plans", &updated); err != nil {
			zap.L().Warn("plan catalog reload failed", zap.Error(err))
			return
		}
		if err := validatePlanConfig(updated); err != nil {
			zap.L().Warn("plan catalog reload ignored", zap.Error(err))
			return
		}
		catalog.current.Store(updated)
		zap.L().Info("plan catalog reloaded", zap.String("file", e.Name))
	})

	return catalog, nil
}

// NewStaticPlanCatalog builds a catalog from a fixed config, used by tests.
func NewStaticPlanCatalog(cfg PlanConfig) *PlanCatalog {
	catalog := &PlanCatalog{}
	catalog.current.Store(cfg)
	return catalog
}

func (c *PlanCatalog) Get() PlanConfig {
	return c.current.Load().(PlanConfig)
}

// Interval returns the billing interval for a provider product id.
func (c *PlanCatalog) Interval(productID string) (string, bool) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return "", false
	}
	for _, p := range c.Get().Products {
		if strings.EqualFold(p.ProductID, productID) {
			return p.Interval, true
		}
	}
	return "", false
}

func validatePlanConfig(cfg PlanConfig) error {
	if len(cfg.Products) == 0 {
		return errors.New("plans.products cannot be empty")
	}
	for _, p := range cfg.Products {
		if strings.TrimSpace(p.ProductID) == "" {
			return errors.New("plans.products entries require a productId")
		}
		switch p.Interval {
		case IntervalMonthly, IntervalAnnual:
		default:
			return errors.New("plans.products interval must be monthly or annual")
		}
	}
	return nil
}
