package main

import (
	"context"
	"fmt"
	"os"
	"time"

	cfg "github.com/mailio/go-web3-kit/config"
	"github.com/spf13/cobra"

	"github.com/alertify/go-alertify-server/global"
	"github.com/alertify/go-alertify-server/repository"
)

var configFile string

func check(e error) {
	if e != nil {
		fmt.Printf("%v\n", e.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "alertify-admin",
	Short:   "Alertify admin commands",
	Long:    `Administrative helpers for the Alertify reminder server: seed users and inspect the stored reminders.`,
	Version: "0.1.0",
	Run: func(cmd *cobra.Command, args []string) {
		// empty
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "conf.yaml", "configuration file path")
}

// openStorage loads the config and opens the configured backend.
func openStorage() repository.Storage {
	err := cfg.NewYamlConfig(configFile, &global.Conf)
	check(err)

	switch global.Conf.Storage.Type {
	case repository.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, sErr := repository.NewPostgresStorage(ctx, global.Conf.Storage.Postgres)
		check(sErr)
		return store
	default:
		dataDir := global.Conf.Storage.DataDir
		if dataDir == "" {
			dataDir = "data"
		}
		store, sErr := repository.NewCsvStorage(dataDir)
		check(sErr)
		return store
	}
}

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
