package config

import (
	"slices"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion            string `mapstructure:"GENERAL_VERSION"`
	Environment               string `mapstructure:"ENVIRONMENT"`
	ServerPort                int    `mapstructure:"SERVER_PORT"`
	DatabaseHost              string `mapstructure:"DB_HOST"`
	DatabasePort              int    `mapstructure:"DB_PORT"`
	DatabaseName              string `mapstructure:"DB_NAME"`
	DatabaseUser              string `mapstructure:"DB_USER"`
	DatabasePassword          string `mapstructure:"DB_PASSWORD"`
	DatabaseMaxOpenConns      int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DatabaseMaxIdleConns      int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DatabaseCacheAddress      string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort         int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset        int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins          string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret                 string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours            int    `mapstructure:"JWT_EXPIRY_HOURS"`
	OTPExpiryMinutes          int    `mapstructure:"OTP_EXPIRY_MINUTES"`
	OTPMaxAttempts            int    `mapstructure:"OTP_MAX_ATTEMPTS"`
	OTPDebug                  bool   `mapstructure:"OTP_DEBUG"`
	OTPRequestsPerMinute      int    `mapstructure:"OTP_REQUESTS_PER_MINUTE"`
	StoragePath               string `mapstructure:"STORAGE_PATH"`
	StorageBaseURL            string `mapstructure:"STORAGE_BASE_URL"`
	MaxUploadMB               int    `mapstructure:"MAX_UPLOAD_MB"`
	SMTPHost                  string `mapstructure:"SMTP_HOST"`
	SMTPPort                  int    `mapstructure:"SMTP_PORT"`
	SMTPUser                  string `mapstructure:"SMTP_USER"`
	SMTPPassword              string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom                  string `mapstructure:"SMTP_FROM"`
	SchedulerEnabled          bool   `mapstructure:"SCHEDULER_ENABLED"`
	JobPostExpiryDays         int    `mapstructure:"JOB_POST_EXPIRY_DAYS"`
	NotificationRetentionDays int    `mapstructure:"NOTIFICATION_RETENTION_DAYS"`
	DefaultLocale             string `mapstructure:"DEFAULT_LOCALE"`
	AdminName                 string `mapstructure:"ADMIN_NAME"`
	AdminPhone                string `mapstructure:"ADMIN_PHONE"`
	AdminPassword             string `mapstructure:"ADMIN_PASSWORD"`
}

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
	"CORS_ALLOW_ORIGINS",
	"JWT_SECRET", "JWT_EXPIRY_HOURS",
	"OTP_EXPIRY_MINUTES", "OTP_MAX_ATTEMPTS", "OTP_DEBUG", "OTP_REQUESTS_PER_MINUTE",
	"STORAGE_PATH", "STORAGE_BASE_URL", "MAX_UPLOAD_MB",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
	"SCHEDULER_ENABLED", "JOB_POST_EXPIRY_DAYS", "NOTIFICATION_RETENTION_DAYS",
	"DEFAULT_LOCALE",
	"ADMIN_NAME", "ADMIN_PHONE", "ADMIN_PASSWORD",
}

var SupportedLocales = []string{"en", "ur"}

func setDefaults() {
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 50)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_CACHE_PORT", 6379)
	viper.SetDefault("DB_CACHE_RESET", -1)
	viper.SetDefault("JWT_EXPIRY_HOURS", 72)
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("OTP_MAX_ATTEMPTS", 5)
	viper.SetDefault("OTP_REQUESTS_PER_MINUTE", 5)
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("STORAGE_BASE_URL", "/storage")
	viper.SetDefault("MAX_UPLOAD_MB", 10)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("JOB_POST_EXPIRY_DAYS", 30)
	viper.SetDefault("NOTIFICATION_RETENTION_DAYS", 90)
	viper.SetDefault("DEFAULT_LOCALE", "en")
	viper.SetDefault("ADMIN_NAME", "Administrator")
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()
	setDefaults()

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"schedulerEnabled", config.SchedulerEnabled,
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error("Fatal error: invalid server port", "port", config.ServerPort)
	}

	if config.JWTSecret == "" {
		return log.ErrMsg("Fatal error: JWT_SECRET is required")
	}

	if config.Environment == "production" && len(config.JWTSecret) < 32 {
		return log.ErrMsg("Fatal error: JWT_SECRET must be at least 32 characters in production")
	}

	if config.JWTExpiryHours <= 0 {
		return log.Error("Fatal error: invalid JWT expiry", "hours", config.JWTExpiryHours)
	}

	if config.OTPExpiryMinutes <= 0 || config.OTPMaxAttempts <= 0 {
		return log.Error(
			"Fatal error: invalid OTP settings",
			"expiryMinutes", config.OTPExpiryMinutes,
			"maxAttempts", config.OTPMaxAttempts,
		)
	}

	if config.MaxUploadMB <= 0 {
		return log.Error("Fatal error: invalid upload limit", "maxUploadMB", config.MaxUploadMB)
	}

	if !slices.Contains(SupportedLocales, config.DefaultLocale) {
		return log.Error("Fatal error: unsupported default locale", "locale", config.DefaultLocale)
	}

	if config.SMTPHost != "" && config.SMTPFrom == "" {
		return log.ErrMsg("Fatal error: SMTP_FROM required when SMTP_HOST is set")
	}

	ConfigInstance = config
	return nil
}
