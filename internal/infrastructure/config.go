package infra

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix env prefix for viper
const EnvPrefix = "LEETBOARD"

// EnvDevelopment development runtime environment
const EnvDevelopment = "development"

// EnvProduction production runtime environment
const EnvProduction = "production"

// AppConfig App option object
type AppConfig struct {
	AppID          string        `mapstructure:"app_id" json:"app_id" yaml:"app_id" validate:"required"`            // Application ID
	Host           string        `mapstructure:"host" json:"host" yaml:"host"`                                      // bind host address
	Port           int           `mapstructure:"port" json:"port" yaml:"port"`                                      // bind listen port
	Env            string        `mapstructure:"env" json:"env" yaml:"env" validate:"oneof=development production"` // runtime environment
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout"`
	Database       struct {
		Driver   string `mapstructure:"driver" json:"driver" yaml:"driver" validate:"required"`                      // driver name
		Host     string `mapstructure:"host" json:"host" yaml:"host" validate:"required"`                            // server host
		MaxConn  int32  `mapstructure:"maxconn" json:"maxconn" yaml:"maxconn" validate:"min=10"`                     // maximum opening connections number
		Password string `mapstructure:"password" json:"password" yaml:"password" validate:"required"`                // db password
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`                                                // server port
		Protocol string `mapstructure:"protocol" json:"protocol" yaml:"protocol" validate:"omitempty,oneof=tcp udp"` // connection protocol, eg.tcp
		Query    string `mapstructure:"query" json:"query" yaml:"query"`                                             // DSN query parameter
		Schema   string `mapstructure:"schema" json:"schema" yaml:"schema" validate:"required"`                      // use schema
		User     string `mapstructure:"username" json:"username" yaml:"username" validate:"required"`                // db username
	} `mapstructure:"database" json:"database" yaml:"database"`
	Logging struct {
		FilePath string `mapstructure:"file_path" json:"file_path" yaml:"file_path"`                            // log file path
		Level    string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"` // global logging level
	} `mapstructure:"logging" json:"logging" yaml:"logging"`
	Upstream struct {
		BaseURL  string        `mapstructure:"base_url" json:"base_url" yaml:"base_url" validate:"required,url"` // stats API base URL
		Timeout  time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`                            // per fetch call timeout
		CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" yaml:"cache_ttl"`                      // calendar cache lifetime, 0 disables caching
	} `mapstructure:"upstream" json:"upstream" yaml:"upstream"`
	Snapshot struct {
		Schedule      string        `mapstructure:"schedule" json:"schedule" yaml:"schedule" validate:"required"`  // cron spec, evaluated in the board timezone
		TopN          int           `mapstructure:"top_n" json:"top_n" yaml:"top_n" validate:"min=1"`              // entries kept per weekly snapshot
		MaxConcurrent int           `mapstructure:"max_concurrent" json:"max_concurrent" yaml:"max_concurrent"`    // upstream fetch parallelism
		RetryAttempts int           `mapstructure:"retry_attempts" json:"retry_attempts" yaml:"retry_attempts"`    // commit attempts on contention
		RetryBackoff  time.Duration `mapstructure:"retry_backoff" json:"retry_backoff" yaml:"retry_backoff"`       // wait between commit attempts
		RunTimeout    time.Duration `mapstructure:"run_timeout" json:"run_timeout" yaml:"run_timeout"`             // upper bound for a whole job run
	} `mapstructure:"snapshot" json:"snapshot" yaml:"snapshot"`
	IDLength int `mapstructure:"id_length" json:"id_length" yaml:"id_length"` // length of generated ID for entities
	KVStore  struct {
		Host     string `mapstructure:"host" json:"host" yaml:"host"`             // bind host address
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`             // bind listen port
		Password string `mapstructure:"password" json:"password" yaml:"password"` // password for security reasons
	} `mapstructure:"kv" json:"kv" yaml:"kv"`
	DevOP struct {
		APM bool `mapstructure:"apm" json:"apm" yaml:"apm"`
	} `mapstructure:"devop" json:"devop" yaml:"devop"`
}

// InitConfig init app config using viper
func InitConfig() (*AppConfig, error) {
	// app
	pflag.String("host", "", "binding address")
	pflag.String("app_id", "", "application identifier (required)")
	pflag.String("env", "development", "runtime environment, can be 'development' or 'production'")
	pflag.Int("port", 8081, "listening port")
	pflag.Duration("request_timeout", 30*time.Second, "server side request timeout")

	// database
	pflag.String("database.driver", "postgres", "database driver to use, 'postgres' or 'mysql'")
	pflag.String("database.host", "127.0.0.1", "database host")
	pflag.Int("database.port", 5432, "database server port")
	pflag.String("database.protocol", "", "connection protocol(if mysql is used, this flag must be set), eg.tcp")
	pflag.String("database.username", "", "database username (required)")
	pflag.String("database.password", "", "database password (required)")
	pflag.String("database.schema", "", "database schema (required)")
	pflag.String("database.query", "", "additional DSN query parameters('?' is auto prefixed)")
	pflag.Int32("database.maxconn", 50, "max connection count")

	// logging
	pflag.String("logging.level", "info", "logging level")
	pflag.String("logging.file_path", "", "log to file")

	// upstream stats provider
	pflag.String("upstream.base_url", "https://leetcode-api-faisalshohag.vercel.app", "stats API base URL")
	pflag.Duration("upstream.timeout", 10*time.Second, "upstream fetch timeout")
	pflag.Duration("upstream.cache_ttl", 5*time.Minute, "calendar cache TTL, 0 disables caching")

	// weekly snapshot
	pflag.String("snapshot.schedule", "0 0 * * 1", "snapshot cron spec, evaluated at UTC+05:30")
	pflag.Int("snapshot.top_n", 3, "entries kept per weekly snapshot")
	pflag.Int("snapshot.max_concurrent", 4, "concurrent upstream fetches per run")
	pflag.Int("snapshot.retry_attempts", 3, "commit attempts on storage contention")
	pflag.Duration("snapshot.retry_backoff", 200*time.Millisecond, "wait between commit attempts")
	pflag.Duration("snapshot.run_timeout", 10*time.Minute, "upper bound for a snapshot run")

	// entities
	pflag.Int("id_length", 24, "set length of generated ID for entities")

	// kv storage
	pflag.String("kv.host", "127.0.0.1", "kv host")
	pflag.Int("kv.port", 6379, "kv server port")
	pflag.String("kv.password", "", "kv server password")

	// DevOp
	pflag.Bool("devop.apm", false, "enable apm metrics")

	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config = new(AppConfig)
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if config.Logging.Level == "debug" {
		if configJSON, err := json.MarshalIndent(config, "", "  "); err == nil {
			log.Printf("App config: %s\n", string(configJSON))
		}
	}
	return config, nil
}

func validateConfig(config *AppConfig) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "-" || name == "" {
			name = fld.Tag.Get("yaml")
			if name == "-" || name == "" {
				return ""
			}
		}
		return name
	})
	err := validate.Struct(config)
	if _, ok := err.(*validator.InvalidValidationError); ok {
		log.Fatalf("Failed to validate config: %s", err)
	}
	if err == nil {
		return nil
	}

	var msg []string
	for _, field := range err.(validator.ValidationErrors) {
		namespace := field.Namespace()
		fieldName := namespace[strings.IndexByte(namespace, '.')+1:] // trim top level namespace
		switch field.Tag() {
		case "required":
			msg = append(msg, fmt.Sprintf("%s is required", fieldName))
		case "oneof":
			msg = append(msg, fmt.Sprintf("%s must be one of (%s)", fieldName, field.Param()))
		case "min":
			msg = append(msg, fmt.Sprintf("%s must be at least %s", fieldName, field.Param()))
		case "url":
			msg = append(msg, fmt.Sprintf("%s must be a valid URL", fieldName))
		}
	}
	if len(msg) > 0 {
		return fmt.Errorf("failed to validate config: \n%s", strings.Join(msg, "\n"))
	}
	return nil
}
