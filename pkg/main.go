package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	pkg "github.com/wonderfly/host-hub/pkg/internal"
	"github.com/wonderfly/host-hub/pkg/internal/cache"
	"github.com/wonderfly/host-hub/pkg/internal/database"
	"github.com/wonderfly/host-hub/pkg/internal/http"
	"github.com/wonderfly/host-hub/pkg/internal/pubsub"
	"github.com/wonderfly/host-hub/pkg/internal/services"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" _   _           _     _   _       _\n| | | | ___  ___| |_  | | | |_   _| |__\n| |_| |/ _ \\/ __| __| | |_| | | | | '_ \\\n|  _  | (_) \\__ \\ |_  |  _  | |_| | |_) |\n|_| |_|\\___/|___/\\__| |_| |_|\\__,_|_.__/"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Host Hub"), pkg.AppVersion)
	fmt.Printf("The event hosting companion for guests and admins\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Local cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing local cache.")
	}

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	if err := services.EnsureBootstrapAdmin(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when ensuring the bootstrap admin account.")
	}

	// Real-time hub
	go pubsub.H.Run()

	// Re-arm auto close timers lost in the last shutdown
	services.RestorePollSchedules()

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 1m", services.SweepOverduePolls)
	quartz.Start()

	// Server
	go http.NewServer().Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
