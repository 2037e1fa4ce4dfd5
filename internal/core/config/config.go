package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxBodyBytes      int64
	RateLimitRPS      float64
	RateLimitBurst    int
	PerIPRPS          float64
	PerIPBurst        int
	MaxInFlight       int64
	CORSOrigins       []string
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	UserTTLSec int    `mapstructure:"user_ttl_sec"`
}

// DB Driver: postgres / mysql / sqlite / mongo / memory
type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	Database           string // mongo 库名
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Community struct {
	DefaultPageSize  int    `mapstructure:"default_page_size"`
	MaxPageSize      int    `mapstructure:"max_page_size"`
	SearchLimit      int    `mapstructure:"search_limit"`
	MaxContentLength int    `mapstructure:"max_content_length"`
	DeletePolicy     string `mapstructure:"delete_policy"` // open / author
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	DB        DB
	Redis     Redis     `mapstructure:"redis"`
	Community Community `mapstructure:"community"`
}

const defaultPath = "./configs/config.local.yaml"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "plantcare-community")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.maxbodybytes", 1<<20)
	v.SetDefault("app.http.ratelimitrps", 200)
	v.SetDefault("app.http.ratelimitburst", 400)
	v.SetDefault("app.http.peripps", 20)
	v.SetDefault("app.http.peripburst", 40)
	v.SetDefault("app.http.maxinflight", 300)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 5001)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.issuer", "plantcare-community")
	v.SetDefault("jwt.accesstokenttlmin", 120)

	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.database", "flowers")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.user_ttl_sec", 300)

	v.SetDefault("community.default_page_size", 10)
	v.SetDefault("community.max_page_size", 100)
	v.SetDefault("community.search_limit", 100)
	v.SetDefault("community.max_content_length", 5000)
	v.SetDefault("community.delete_policy", "open")
}

// Load 读取 YAML + APP_ 前缀环境变量；未显式指定路径且默认文件不存在时只用默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = defaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || os.IsNotExist(err)) {
			return nil, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Community.DeletePolicy {
	case "open", "author":
	default:
		return errors.New("community.delete_policy must be open or author")
	}
	if c.Community.DefaultPageSize <= 0 || c.Community.MaxPageSize < c.Community.DefaultPageSize {
		return errors.New("community page sizes are inconsistent")
	}
	return nil
}
