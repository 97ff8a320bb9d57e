package main

import (
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/sirupsen/logrus"

	"github.com/octotrack/octotrack-api/internal/container"
	"github.com/octotrack/octotrack-api/internal/router"
)

func main() {
	c := container.New()
	defer c.Shutdown()

	r := router.New(router.RouterConfig{
		UserHandler:      c.UserContainer.Handler,
		GoalHandler:      c.GoalContainer.Handler,
		DashboardHandler: c.DashboardContainer.Handler,
	})

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := chiadapter.New(r)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	addr := os.Getenv("API_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}
	logrus.WithField("addr", addr).Info("starting http server")
	if err := http.ListenAndServe(addr, r); err != nil {
		logrus.WithError(err).Fatal("http server exited")
	}
}
