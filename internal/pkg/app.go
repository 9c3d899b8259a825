package pkg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clientadmin/internal/app/config"
	"clientadmin/internal/app/state"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	Store   *state.Store
	closers []func() error
}

func NewApp(c *config.Config, r *gin.Engine, s *state.Store, closers ...func() error) *Application {
	return &Application{
		Config:  c,
		Router:  r,
		Store:   s,
		closers: closers,
	}
}

// RunApp serves until ctx is cancelled, then drains in-flight requests.
// The first load of every collection starts in the background.
func (a *Application) RunApp(ctx context.Context) error {
	logrus.Info("Server start up")
	defer a.close()

	go a.Store.EnsureLoaded(ctx)

	serverAddress := fmt.Sprintf("%s:%d", a.Config.ServiceHost, a.Config.ServicePort)
	srv := &http.Server{
		Addr:              serverAddress,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Starting server on %s", serverAddress)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logrus.Info("Server down")
	return nil
}

func (a *Application) close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logrus.Warnf("close: %v", err)
		}
	}
}
