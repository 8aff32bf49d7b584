package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"` // 留空表示不启用 Redis，分布式锁降级为仅依赖数据库事务
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"` // 留空表示不启用 Kafka，台账事件仅落 outbox 表
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	LedgerEvents string `mapstructure:"ledger_events"`
}

type BusinessConfig struct {
	// TransactionsEnabled=false 时走非事务降级路径：
	// 同一套业务步骤顺序执行，中途失败会残留部分状态，启动时和出错时都会告警
	TransactionsEnabled bool `mapstructure:"transactions_enabled"`
	VoucherPadWidth     int  `mapstructure:"voucher_pad_width"`
	MaxRetryCount       int  `mapstructure:"max_retry_count"`
	ReconcileIntervalS  int  `mapstructure:"reconcile_interval_seconds"`
}

var GlobalConfig *Config

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("business.transactions_enabled", true)
	viper.SetDefault("business.voucher_pad_width", 4)
	viper.SetDefault("business.max_retry_count", 3)
	viper.SetDefault("business.reconcile_interval_seconds", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	GlobalConfig = config
	return config
}
