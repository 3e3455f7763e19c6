// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config 聚合了两个服务共享的进程级配置。
// HMAC 密钥、各类地址都在这里注入，不允许模块级单例。
type Config struct {
	// HashKey 是跨服务消息签名的共享密钥，两边必须一致
	HashKey string `yaml:"hash_key"`

	Jaeger struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"jaeger"`

	MySQL struct {
		Addr     string `yaml:"addr"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
	} `yaml:"mysql"`

	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers           []string `yaml:"brokers"`
		NotificationTopic string   `yaml:"notification_topic"`
	} `yaml:"kafka"`

	Services struct {
		// InventoryURL 是库存服务的基地址，例如 http://localhost:8082
		InventoryURL string `yaml:"inventory_url"`
	} `yaml:"services"`

	Order struct {
		// CompensateReservations 开启后，下单失败会逐个释放已提交的预占。
		// 默认关闭，保持与旧系统一致的行为（见 DESIGN.md）。
		CompensateReservations bool          `yaml:"compensate_reservations"`
		ReservationTimeout     time.Duration `yaml:"reservation_timeout"`
	} `yaml:"order"`
}

// LoadConfig 读取 yaml 配置文件，再用环境变量覆盖关键项。
// path 为空时使用 CONFIG_FILE 环境变量，两者都缺省则返回纯默认值。
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	// 环境变量优先级最高，方便容器部署
	if v := os.Getenv("HASH_KEY"); v != "" {
		cfg.HashKey = v
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Jaeger.Endpoint = v
	}
	if v := os.Getenv("INVENTORY_SERVICE_URL"); v != "" {
		cfg.Services.InventoryURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	if cfg.HashKey == "" {
		return nil, errors.New("hash_key is required: set it in the config file or HASH_KEY env")
	}
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.MySQL.Addr = "localhost:3306"
	cfg.MySQL.User = "root"
	cfg.MySQL.Database = "almacen"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Kafka.NotificationTopic = "pedido-notifications"
	cfg.Services.InventoryURL = "http://localhost:8082"
	cfg.Order.ReservationTimeout = 5 * time.Second
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
