package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/clawdhub/clawdhub"
	"github.com/clawdhub/clawdhub/internal/domain"
)

type Config struct {
	Hub     domain.Config `yaml:"hub"`
	Server  Server        `yaml:"server"`
	Oracles Oracles       `yaml:"oracles"`
}

type Server struct {
	Bind          string `yaml:"bind"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Oracles struct {
	WalletAuthURL    string `yaml:"walletAuthURL"`
	WalletAuthSecret string `yaml:"walletAuthSecret"`
	MoltbookURL      string `yaml:"moltbookURL"`
	MoltbookAppKey   string `yaml:"moltbookAppKey"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	address, err := clawdhub.PrivKeyToAddr(config.Hub.PrivateKey)
	if err != nil {
		return Config{}, err
	}

	config.Hub.Address = address

	return config, nil
}
