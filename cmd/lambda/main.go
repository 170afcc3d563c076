package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"neurovault/infrastructure/config"
	"neurovault/infrastructure/di"
	"neurovault/interfaces/http/rest"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
	coldStart = true

	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.IsLambda = true

	container, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	router := rest.NewRouter(
		container.CommandBus,
		container.QueryBus,
		container.Config,
		container.RateLimiter,
		container.Logger,
	)

	chiRouter, ok := router.Setup().(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
	)
}

// Handler proxies API Gateway requests through the Chi router. The JWT
// authorizer has already validated the token, so the caller's identity is
// forwarded as headers the auth middleware trusts.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	if jwt := req.RequestContext.Authorizer; jwt != nil && jwt.JWT != nil {
		claims := jwt.JWT.Claims
		if sub, ok := claims["sub"]; ok {
			req.Headers["X-User-ID"] = sub
		}
		if email, ok := claims["email"]; ok {
			req.Headers["X-User-Email"] = email
		}
		if roles, ok := claims["roles"]; ok {
			req.Headers["X-User-Roles"] = strings.Trim(roles, "[]")
		}
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if resp.StatusCode >= 500 {
		container.Logger.Error("Lambda error response",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", resp.Body),
		)
	}

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
