package config

import "os"

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env          string
	StoreBackend string
	DataFile     string
	SQLitePath   string
	ExportFile   string
}

// Load returns application config populated from environment variables
// with sensible defaults.
func Load() App {
	return App{
		Env:          getEnv("APP_ENV", "dev"),
		StoreBackend: getEnv("STORE_BACKEND", "json"),
		DataFile:     getEnv("DATA_FILE", "data/markbook.json"),
		SQLitePath:   getEnv("SQLITE_PATH", "data/markbook.db"),
		ExportFile:   getEnv("EXPORT_FILE", "marks_report.csv"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
