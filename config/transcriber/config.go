package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           int    `env:"PORT" env-default:"8080"`
	UploadDir      string `env:"UPLOAD_DIR" env-default:"uploads"`
	ScratchDir     string `env:"SCRATCH_DIR"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"524288000"`
	Engine         EngineConfig
}

type EngineConfig struct {
	Backend string `env:"ENGINE" env-default:"local"`
	Local   LocalConfig
	OpenAI  OpenAIConfig
}

type LocalConfig struct {
	Python string `env:"WHISPER_PY" env-default:"python3"`
	Model  string `env:"WHISPER_MODEL" env-default:"base"`
	Device string `env:"WHISPER_DEVICE" env-default:"auto"`
}

type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string `env:"OPENAI_MODEL" env-default:"whisper-1"`
}

func MustLoad() *Config {
	// a local .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read environment variables: " + err.Error())
	}

	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}
	return &cfg
}
