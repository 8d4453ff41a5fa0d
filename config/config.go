package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `json:"app_name"`
	AppEnv  string `json:"app_env"`
	Port    uint16 `json:"port"`
	GinMode string `json:"gin_mode"`
	DBHost  string `json:"db_host"`
	DBPort  uint16 `json:"db_port"`
	DBName  string `json:"db_name"`
	DBUser  string `json:"db_user"`
	DBPass  string `json:"db_password"`
}

var config *Config
var once sync.Once

// LoadConfig loads environment variables from a .env file when present and
// returns a singleton Config instance. A missing .env file is not fatal so
// container deployments can rely on real environment variables instead.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}

		port, _ := strconv.ParseUint(getEnv("PORT", "8080"), 10, 16)
		dbPort, _ := strconv.ParseUint(getEnv("DB_PORT", "3306"), 10, 16)

		config = &Config{
			AppName: getEnv("APP_NAME", "clinicore"),
			AppEnv:  getEnv("APP_ENV", "development"),
			Port:    uint16(port),
			GinMode: getEnv("GIN_MODE", "debug"),
			DBHost:  os.Getenv("DB_HOST"),
			DBPort:  uint16(dbPort),
			DBName:  os.Getenv("DB_NAME"),
			DBUser:  os.Getenv("DB_USER"),
			DBPass:  os.Getenv("DB_PASSWORD"),
		}
	})
	return config
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// ConnectMySQL establishes a connection to the MySQL database using the
// configuration values.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
