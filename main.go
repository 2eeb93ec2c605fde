package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	identitypb "support-chat-service/pb/identity"

	"support-chat-service/internal/chat"
	"support-chat-service/internal/conversation"
	"support-chat-service/internal/db"
	grpcclient "support-chat-service/internal/grpc"
	"support-chat-service/internal/handlers"
	"support-chat-service/internal/middleware"
	"support-chat-service/internal/observability"
	"support-chat-service/internal/rabbitmq"
	"support-chat-service/internal/repositories"
	"support-chat-service/internal/telemetry"
	"support-chat-service/internal/ws"
)

const serviceName = "support-chat-service"

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	shutdownTracing, err := telemetry.SetupTracing(ctx, serviceName, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	authAddr := getEnv("AUTH_GRPC_ADDR", "localhost:8084")
	directoryAddr := getEnv("DIRECTORY_GRPC_ADDR", "localhost:8085")

	authConn, err := grpc.Dial(authAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Fatalf("failed to connect to auth grpc: %v", err)
	}
	defer authConn.Close()

	directoryConn, err := grpc.Dial(directoryAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		log.Fatalf("failed to connect to directory grpc: %v", err)
	}
	defer directoryConn.Close()

	authClient := grpcclient.NewAuthClient(identitypb.NewAuthClient(authConn))
	directoryClient := grpcclient.NewDirectoryClient(identitypb.NewDirectoryClient(directoryConn))

	amqpURL := os.Getenv("AMQP_URL")
	eventsExchange := getEnv("EVENTS_EXCHANGE", "chat_events")
	if eventsPublisher, err := observability.NewAMQPPublisher(amqpURL, eventsExchange); err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventsPublisher)
		defer eventsPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(amqpURL, getEnv("AUDIT_EXCHANGE", "audit"))
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s reason=%q", rabbitmq.PublisherMode(auditPublisher), rabbitmq.PublisherNoopReason(auditPublisher))
	auditEmitter := telemetry.NewAuditEmitter(auditPublisher, "audit_log.support_chat", serviceName, getEnv("ENVIRONMENT", "dev"))

	messageRepo := repositories.NewMessageRepo(database)
	hub := ws.NewHub()
	resolver := conversation.NewResolver(directoryClient)
	chatService := chat.NewService(messageRepo, resolver, hub)

	conversationHandler := handlers.NewConversationHandler(messageRepo, chatService, resolver, directoryClient)
	gateway := ws.NewGateway(hub, chatService, authClient)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(authClient)

	router.POST("/conversations/support", authMiddleware, conversationHandler.StartSupportConversation)
	router.GET("/conversations", authMiddleware, conversationHandler.ListConversations)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, conversationHandler.GetConversationMessages)
	router.POST("/conversations/:conversation_id/read", authMiddleware, conversationHandler.MarkConversationRead)
	router.DELETE("/conversations/:conversation_id/messages/:message_id", authMiddleware, conversationHandler.DeleteMessage)

	router.GET("/ws", gateway.Handle)

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, auditEmitter, getEnv("DEBUG_ROUTES", "false") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
