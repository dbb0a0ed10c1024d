package model

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		WebSocket struct {
			Host string `yaml:"host"`
			Port int    `yaml:"port"`
		} `yaml:"web_socket"`
		Authentication struct {
			Enable bool   `yaml:"enable"`
			Secret string `yaml:"secret"`
		} `yaml:"authentication"`
	} `yaml:"server"`
	Game struct {
		AgentCount           int                    `yaml:"agent_count"`
		Roles                map[int]map[string]int `yaml:"roles"`
		Phases               []string               `yaml:"phases"`
		DeadCanSeeAllRoles   bool                   `yaml:"dead_can_see_all_roles"`
		AllCanSeeRoleOfDead  bool                   `yaml:"all_can_see_role_of_dead"`
		LeaderIsPlayer       bool                   `yaml:"leader_is_player"`
		AutoStart            bool                   `yaml:"auto_start"`
		AutoFinishVotings    bool                   `yaml:"auto_finish_votings"`
		AutoFinishRounds     bool                   `yaml:"auto_finish_rounds"`
		RunoffThreshold      int                    `yaml:"runoff_threshold"`
		VotingTimeout        struct {
			Enable   bool          `yaml:"enable"`
			Duration time.Duration `yaml:"duration"`
		} `yaml:"voting_timeout"`
	} `yaml:"game"`
	JSONLogger struct {
		Enable    bool   `yaml:"enable"`
		OutputDir string `yaml:"output_dir"`
		Filename  string `yaml:"filename"`
	} `yaml:"json_logger"`
	GameLogger struct {
		Enable    bool   `yaml:"enable"`
		OutputDir string `yaml:"output_dir"`
		Filename  string `yaml:"filename"`
	} `yaml:"game_logger"`
	RealtimeBroadcaster RealtimeBroadcasterConfig `yaml:"realtime_broadcaster"`
	UserDirectory       struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"user_directory"`
}

type RealtimeBroadcasterConfig struct {
	Enable    bool   `yaml:"enable"`
	OutputDir string `yaml:"output_dir"`
	Filename  string `yaml:"filename"`
}

func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("設定ファイルの読み込みに失敗しました", "path", path, "error", err)
		return nil, err
	}
	return LoadFromBytes(data)
}

func LoadFromBytes(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		slog.Error("設定ファイルのパースに失敗しました", "error", err)
		return nil, err
	}
	return &config, nil
}

// PlayerCount is the number of connections that receive a role. The leader
// only plays when leader_is_player is set.
func (c Config) PlayerCount() int {
	if c.Game.LeaderIsPlayer {
		return c.Game.AgentCount
	}
	return c.Game.AgentCount - 1
}

// EnvOverrides are read after the YAML file. Set variables win over the file.
type EnvOverrides struct {
	Host   string `env:"WEREWOLF_HOST"`
	Port   int    `env:"WEREWOLF_PORT"`
	Secret string `env:"WEREWOLF_AUTH_SECRET"`
}

func (c *Config) ApplyEnv() error {
	var overrides EnvOverrides
	if err := env.Parse(&overrides); err != nil {
		slog.Error("環境変数の読み込みに失敗しました", "error", err)
		return fmt.Errorf("parse env: %w", err)
	}
	if overrides.Host != "" {
		c.Server.WebSocket.Host = overrides.Host
	}
	if overrides.Port != 0 {
		c.Server.WebSocket.Port = overrides.Port
	}
	if overrides.Secret != "" {
		c.Server.Authentication.Secret = overrides.Secret
	}
	return nil
}
