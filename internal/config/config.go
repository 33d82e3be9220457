package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Storage      Storage      `mapstructure:",squash"`
	Processing   Processing   `mapstructure:",squash"`
	Simulation   Simulation   `mapstructure:",squash"`
	CacheCleanup CacheCleanup `mapstructure:",squash"`
	SecretKey    string       `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Storage struct {
	// Arquivo plano de credenciais (username -> hash de senha e role)
	UsersFile string `mapstructure:"users_file"`
}

type Processing struct {
	CriticalMarginThreshold float64 `mapstructure:"critical_margin_threshold"`
	StagnantStockThreshold  int     `mapstructure:"stagnant_stock_threshold"`
	FrameCacheTTLMinutes    int     `mapstructure:"frame_cache_ttl_minutes"`
}

type Simulation struct {
	// Preenchimento simulado de TIPO DE VENDA / ESTADO quando a planilha não
	// traz essas colunas. Comportamento de demonstração herdado do dashboard
	// original; determinístico a partir da semente.
	Enabled bool  `mapstructure:"simulation_enabled"`
	Seed    int64 `mapstructure:"simulation_seed"`
}

type CacheCleanup struct {
	CronSchedule string `mapstructure:"frame_cache_cleanup_cron"`
	Enabled      bool   `mapstructure:"frame_cache_cleanup_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("USERS_FILE", "usuarios.json")

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	// Regras de alerta do dashboard
	viper.SetDefault("CRITICAL_MARGIN_THRESHOLD", 10.0) // margem ativa < 10%
	viper.SetDefault("STAGNANT_STOCK_THRESHOLD", 10)    // Estoque Tiny > 10 unidades
	viper.SetDefault("FRAME_CACHE_TTL_MINUTES", 60)

	viper.SetDefault("SIMULATION_ENABLED", true)
	viper.SetDefault("SIMULATION_SEED", 42)

	viper.SetDefault("FRAME_CACHE_CLEANUP_CRON", "*/10 * * * *") // A cada 10 minutos
	viper.SetDefault("FRAME_CACHE_CLEANUP_ENABLED", true)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
