package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported values for STORE_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	StoreDriver string
	MySQLDSN    string
	PostgresDSN string
	SQLitePath  string
	MongoURI    string
	MongoDB     string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	AMQPURL     string
	JWTSecret   string
	SwaggerHost string
	ResetDB     bool

	AdminSecretCode string
	BcryptCost      int

	LoanPeriodDays      int
	UserMaxBorrow       int
	AdminMaxBorrow      int
	AllowDuplicateLoans bool
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMySQL)),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/library?charset=utf8mb4&parseTime=True&loc=Local"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=library port=5432 sslmode=disable"),
		SQLitePath:  getEnv("SQLITE_PATH", "library.db"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "library"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		AMQPURL:     os.Getenv("AMQP_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		ResetDB:     getEnvBool("RESET_DB", false),

		AdminSecretCode: getEnv("ADMIN_SECRET_CODE", "ADMIN123"),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),

		LoanPeriodDays:      getEnvInt("LOAN_PERIOD_DAYS", 30),
		UserMaxBorrow:       getEnvInt("USER_MAX_BORROW", 5),
		AdminMaxBorrow:      getEnvInt("ADMIN_MAX_BORROW", 10),
		AllowDuplicateLoans: getEnvBool("LEDGER_ALLOW_DUPLICATE_LOANS", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
