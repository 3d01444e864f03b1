package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/pricing"
	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"TICKETS_ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DBUser     string `yaml:"db_user" env:"TICKETS_DB_USER" env-required:"true"`
	DBPassword string `yaml:"db_password" env:"TICKETS_DB_PASSWORD"`
	DBHost     string `yaml:"db_host" env:"TICKETS_DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"TICKETS_DB_PORT" env-default:"3306"`
	DBName     string `yaml:"db_name" env:"TICKETS_DB_NAME" env-required:"true"`
	ParseTime  bool   `yaml:"parse_time" env-default:"true"`

	AdminLogin string `yaml:"admin_login" env:"TICKETS_ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"TICKETS_ADMIN_PASS"`

	CORSOrigins []string `yaml:"cors_origins" env:"TICKETS_CORS_ORIGINS" env-default:"http://localhost:5173"`

	Pricing Pricing `yaml:"pricing"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"TICKETS_HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Pricing holds the flat rates of the calculator, in percent.
type Pricing struct {
	UrgentMarkupPct         float64 `yaml:"urgent_markup_pct" env:"TICKETS_URGENT_MARKUP_PCT" env-default:"30"`
	ServicesSubscriptionPct float64 `yaml:"services_subscription_pct" env-default:"10"`
	PartsSubscriptionPct    float64 `yaml:"parts_subscription_pct" env-default:"5"`
}

func (p Pricing) Rates() pricing.Rates {
	return pricing.Rates{
		UrgentMarkupPct:         decimal.NewFromFloat(p.UrgentMarkupPct),
		ServicesSubscriptionPct: decimal.NewFromFloat(p.ServicesSubscriptionPct),
		PartsSubscriptionPct:    decimal.NewFromFloat(p.PartsSubscriptionPct),
	}
}

// DSN builds the go-sql-driver/mysql data source name. The driver formats it,
// so a password containing '@', '/' or ':' still parses back intact.
func (c Config) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.DBUser
	dsn.Passwd = c.DBPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort))
	dsn.DBName = c.DBName
	dsn.ParseTime = c.ParseTime
	return dsn.FormatDSN()
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	return &cfg, nil
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}
