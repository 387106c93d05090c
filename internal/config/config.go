package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (s ServerConfig) Addr() string {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig 选择持久化实现：mongo 或 mysql
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// MongoConfig 文档数据库配置
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置，Addr 为空时不启用
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	PoolSize int    `mapstructure:"pool_size"`
}

// RabbitMQConfig MQ 配置，URL 为空时订单事件不投递
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig 限流配置，读写接口分开计数
type RateLimitConfig struct {
	Window    time.Duration `mapstructure:"window"`
	ReadMax   int           `mapstructure:"read_max"`
	WriteMax  int           `mapstructure:"write_max"`
	UseRedis  bool          `mapstructure:"use_redis"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// UploadConfig 图片上传配置
type UploadConfig struct {
	Backend  string `mapstructure:"backend"` // local / s3
	Dir      string `mapstructure:"dir"`
	URLPath  string `mapstructure:"url_path"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

// S3Config 上传到 S3 时使用
type S3Config struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config 应用总配置
type Config struct {
	Server      ServerConfig    `mapstructure:"server"`
	AdminServer ServerConfig    `mapstructure:"admin_server"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Mongo       MongoConfig     `mapstructure:"mongo"`
	MySQL       MySQLConfig     `mapstructure:"mysql"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RabbitMQ    RabbitMQConfig  `mapstructure:"rabbitmq"`
	JWT         JWTConfig       `mapstructure:"jwt"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Upload      UploadConfig    `mapstructure:"upload"`
	S3          S3Config        `mapstructure:"s3"`
	Log         LogConfig       `mapstructure:"log"`
	// VariantRules 分类名(小写) -> 允许的规格
	VariantRules map[string][]string `mapstructure:"variant_rules"`
}

// DefaultConfig 默认配置，方便快速跑起来
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		AdminServer: ServerConfig{
			Host: "0.0.0.0",
			Port: 5001,
		},
		Storage: StorageConfig{
			Driver: "mongo",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://127.0.0.1:27017",
			Database: "storefront",
		},
		MySQL: MySQLConfig{
			DSN: "storefront:storefront123@tcp(127.0.0.1:3306)/storefront?charset=utf8mb4&parseTime=True&loc=Local",
		},
		Redis: RedisConfig{
			PoolSize: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "storefront.orders",
			Queue:    "storefront.order_addresses",
		},
		JWT: JWTConfig{
			Secret: "storefront-secret",
			TTL:    5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Window:    time.Minute,
			ReadMax:   50,
			WriteMax:  5,
			KeyPrefix: "ratelimit",
		},
		Upload: UploadConfig{
			Backend:  "local",
			Dir:      "./uploads",
			URLPath:  "/uploads",
			MaxBytes: 500 * 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
		VariantRules: map[string][]string{
			"clothing": {"S", "M", "L", "XL"},
			"drinks":   {"250ml", "500ml", "1L", "2L"},
		},
	}
}

// Load 读取配置文件与 STOREFRONT_ 前缀的环境变量，未设置的项使用 DefaultConfig
// path 为空时在 . 与 ./config 下查找 config.yaml，找不到文件不算错误
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setDefaults 逐项注册默认值，AutomaticEnv 只对已知 key 生效
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("admin_server.host", d.AdminServer.Host)
	v.SetDefault("admin_server.port", d.AdminServer.Port)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("mongo.uri", d.Mongo.URI)
	v.SetDefault("mongo.database", d.Mongo.Database)
	v.SetDefault("mysql.dsn", d.MySQL.DSN)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("rabbitmq.url", d.RabbitMQ.URL)
	v.SetDefault("rabbitmq.exchange", d.RabbitMQ.Exchange)
	v.SetDefault("rabbitmq.queue", d.RabbitMQ.Queue)
	v.SetDefault("jwt.secret", d.JWT.Secret)
	v.SetDefault("jwt.ttl", d.JWT.TTL)
	v.SetDefault("rate_limit.window", d.RateLimit.Window)
	v.SetDefault("rate_limit.read_max", d.RateLimit.ReadMax)
	v.SetDefault("rate_limit.write_max", d.RateLimit.WriteMax)
	v.SetDefault("rate_limit.use_redis", d.RateLimit.UseRedis)
	v.SetDefault("rate_limit.key_prefix", d.RateLimit.KeyPrefix)
	v.SetDefault("upload.backend", d.Upload.Backend)
	v.SetDefault("upload.dir", d.Upload.Dir)
	v.SetDefault("upload.url_path", d.Upload.URLPath)
	v.SetDefault("upload.max_bytes", d.Upload.MaxBytes)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.bucket", d.S3.Bucket)
	v.SetDefault("s3.prefix", d.S3.Prefix)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("variant_rules", d.VariantRules)
}
