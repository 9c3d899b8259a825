package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"clientadmin/internal/api"

	"github.com/sirupsen/logrus"
)

// @title Client Admin API
// @version 1.0
// @description Administration of clients, products, subscription plans and licenses.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logrus.Info("App start")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.StartServer(ctx); err != nil {
		logrus.Fatal(err)
	}
	logrus.Info("App terminated")
}
