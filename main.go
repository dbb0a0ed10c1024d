package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aiwolfdial/werewolf-room-server/core"
	"github.com/aiwolfdial/werewolf-room-server/model"
	"github.com/joho/godotenv"
)

var (
	version  = "dev"
	revision = "unknown"
	build    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("c", "./config/default.yml", "設定ファイルのパス")
		envPath     = flag.String("e", ".env", "環境変数ファイルのパス")
		debug       = flag.Bool("d", false, "デバッグログを出力する")
		showVersion = flag.Bool("v", false, "バージョンを表示する")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version, revision, build)
		return
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := godotenv.Load(*envPath); err != nil {
		slog.Warn("環境変数ファイルの読み込みに失敗しました", "path", *envPath, "error", err)
	}

	config, err := model.LoadFromPath(*configPath)
	if err != nil {
		slog.Error("設定ファイルの読み込みに失敗しました", "error", err)
		os.Exit(1)
	}
	if err := config.ApplyEnv(); err != nil {
		os.Exit(1)
	}

	core.SetVersion(version, revision, build)
	server, err := core.NewServer(*config)
	if err != nil {
		slog.Error("サーバの作成に失敗しました", "error", err)
		os.Exit(1)
	}
	server.Run()
}
