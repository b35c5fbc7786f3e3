// Package config layers the service configuration: defaults, then a JSON
// file, then MOP_* environment variables, then flags.
package config

import (
	"encoding/json"
	"flag"
	"os"
	"strings"
)

type Config struct {
	Port        string `json:"port"`
	CatalogsDir string `json:"catalogsDir"` // reference catalogs (*.yaml)
	ModelsDir   string `json:"modelsDir"`   // model config overlays, optional
	DBURL       string `json:"dbUrl"`       // empty = in-memory store
	AutoMigrate bool   `json:"autoMigrate"`
	Debug       bool   `json:"debug"`
}

func def() Config {
	return Config{
		Port:        "8080",
		CatalogsDir: "reference/catalogs",
		ModelsDir:   "",
		DBURL:       "",
		AutoMigrate: false,
		Debug:       false,
	}
}

func loadJSON(path string) (Config, error) {
	c := def()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		switch strings.TrimSpace(strings.ToLower(v)) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return fallback
}

// LoadArgs reads the JSON file at jsonPath when it exists, then applies
// environment and flag overrides. A -config flag restarts the layering from
// the named file.
func LoadArgs(jsonPath string, args []string) Config {
	cfg := def()

	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		if c2, err := loadJSON(jsonPath); err == nil {
			cfg = c2
		}
	}

	cfg.Port = getenv("MOP_PORT", cfg.Port)
	cfg.CatalogsDir = getenv("MOP_CATALOGS_DIR", cfg.CatalogsDir)
	cfg.ModelsDir = getenv("MOP_MODELS_DIR", cfg.ModelsDir)
	cfg.DBURL = getenv("MOP_DB_URL", cfg.DBURL)
	cfg.AutoMigrate = getenvBool("MOP_AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.Debug = getenvBool("MOP_DEBUG", cfg.Debug)

	fs := flag.NewFlagSet("mop", flag.ExitOnError)
	configPath := fs.String("config", jsonPath, "Path to config JSON")
	port := fs.String("port", cfg.Port, "HTTP port")
	catalogs := fs.String("catalogs", cfg.CatalogsDir, "Path to reference catalogs directory")
	models := fs.String("models", cfg.ModelsDir, "Path to model config overlay directory (optional)")
	db := fs.String("db", cfg.DBURL, "Postgres URL (empty = in-memory)")
	auto := fs.Bool("auto-migrate", cfg.AutoMigrate, "Apply DDL on startup")
	debug := fs.Bool("debug", cfg.Debug, "Debug logging")
	_ = fs.Parse(args)

	if *configPath != jsonPath {
		return LoadArgs(*configPath, args)
	}

	cfg.Port = strings.TrimSpace(*port)
	cfg.CatalogsDir = strings.TrimSpace(*catalogs)
	cfg.ModelsDir = strings.TrimSpace(*models)
	cfg.DBURL = strings.TrimSpace(*db)
	cfg.AutoMigrate = *auto
	cfg.Debug = *debug
	return cfg
}

// Load reads config.json from the working directory.
func Load() Config { return LoadArgs("config.json", os.Args[1:]) }
