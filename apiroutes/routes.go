package apiroutes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alertify/go-alertify-server/api"
	"github.com/alertify/go-alertify-server/api/interceptors"
	"github.com/alertify/go-alertify-server/dispatch"
	"github.com/alertify/go-alertify-server/email"
	"github.com/alertify/go-alertify-server/global"
	"github.com/alertify/go-alertify-server/metrics"
	"github.com/alertify/go-alertify-server/repository"
	"github.com/alertify/go-alertify-server/services"
)

// REST API routes
func ConfigRoutes(router *gin.Engine, store repository.Storage, sender email.Sender, coordinator *dispatch.Coordinator) *gin.Engine {
	// init metrics
	if global.Conf.Prometheus.Enabled {
		metrics.InitMetrics()

		authorized := router.Group("/metrics", gin.BasicAuth(gin.Accounts{
			global.Conf.Prometheus.Username: global.Conf.Prometheus.Password,
		}))

		authorized.GET("", gin.WrapH(promhttp.Handler()))
	}

	// SERVICE definitions
	systemMailer := email.NewSystemMailer(sender, global.Conf.System)
	userService := services.NewUserService(store, systemMailer)
	reminderService := services.NewReminderService(store)

	// API definitions
	healthApi := api.NewHealthCheckAPI()
	accountApi := api.NewUserAccountApi(userService)
	profileApi := api.NewUserProfileApi(userService, sender)
	remindersApi := api.NewRemindersApi(reminderService)
	cronApi := api.NewCronApi(coordinator)

	// PUBLIC ROOT API
	rootPublicApi := router.Group("/")
	{
		rootPublicApi.GET("health", healthApi.HealthCheck)
		// external cron trigger; idempotent-safe next to the interval timer
		rootPublicApi.GET("cron/reminders", cronApi.RunReminders)
	}

	// PUBLIC API
	publicApi := router.Group("/api", metrics.MetricsMiddleware())
	{
		publicApi.POST("/v1/register", accountApi.Register)
		publicApi.POST("/v1/login", accountApi.Login)
		publicApi.POST("/v1/forgot-password", accountApi.ForgotPassword)
		publicApi.POST("/v1/reset-password", accountApi.ResetPassword)
	}

	// AUTHENTICATED API
	authApi := router.Group("/api", metrics.MetricsMiddleware(), interceptors.JWTMiddleware())
	{
		authApi.GET("/v1/user/me", profileApi.GetProfile)
		authApi.PUT("/v1/user/me", profileApi.UpdateProfile)
		authApi.PUT("/v1/user/me/credentials", profileApi.UpdateEmailCredentials)
		authApi.POST("/v1/user/me/credentials/test", profileApi.SendTestEmail)
		authApi.POST("/v1/user/me/confirm", profileApi.RequestEmailConfirmation)
		authApi.PUT("/v1/user/me/confirm", profileApi.ConfirmEmail)

		authApi.GET("/v1/reminders", remindersApi.List)
		authApi.POST("/v1/reminders", remindersApi.Create)
		authApi.GET("/v1/reminders/export", remindersApi.Export)
		authApi.POST("/v1/reminders/import", remindersApi.Import)
		authApi.GET("/v1/reminders/:id", remindersApi.Get)
		authApi.PUT("/v1/reminders/:id", remindersApi.Update)
		authApi.DELETE("/v1/reminders/:id", remindersApi.Delete)
	}

	return router
}
