package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alertify/go-alertify-server/dispatch"
	"github.com/alertify/go-alertify-server/email"
	"github.com/alertify/go-alertify-server/global"
	"github.com/alertify/go-alertify-server/repository"
	"github.com/alertify/go-alertify-server/services"
	"github.com/alertify/go-alertify-server/types"
)

// ConfigStorage selects the persistence backend from the config. Both backends
// implement the same logical contract; nothing downstream depends on which one
// is active.
func ConfigStorage() repository.Storage {
	switch global.Conf.Storage.Type {
	case repository.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := repository.NewPostgresStorage(ctx, global.Conf.Storage.Postgres)
		if err != nil {
			global.Logger.Log("error", "failed to connect to postgres", "error", err.Error())
			panic(err)
		}
		return store
	case repository.BackendCsv, "":
		dataDir := global.Conf.Storage.DataDir
		if dataDir == "" {
			dataDir = "data"
		}
		store, err := repository.NewCsvStorage(dataDir)
		if err != nil {
			global.Logger.Log("error", "failed to open csv storage", "error", err.Error())
			panic(err)
		}
		return store
	default:
		panic(fmt.Sprintf("unknown storage type %q", global.Conf.Storage.Type))
	}
}

// ConfigDispatch builds the coordinator shared by the interval timer and the
// HTTP cron trigger.
func ConfigDispatch(store repository.Storage, sender email.Sender) *dispatch.Coordinator {
	systemMailer := email.NewSystemMailer(sender, global.Conf.System)
	userService := services.NewUserService(store, systemMailer)
	return dispatch.NewCoordinator(
		store,
		userService,
		sender,
		global.Conf.Dispatch.WorkerLimit(),
		time.Duration(global.Conf.Dispatch.SendTimeout())*time.Second,
	)
}

// ConfigDispatchJobs schedules the recurring scan-and-dispatch cycle.
func ConfigDispatchJobs(env *types.Environment, coordinator *dispatch.Coordinator) {
	env.Cron.AddFunc(fmt.Sprintf("@every %dm", global.Conf.Dispatch.Interval()), func() {
		coordinator.RunCycle(context.Background())
	})
	env.Cron.Start()
}
