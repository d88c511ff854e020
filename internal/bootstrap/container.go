package bootstrap

import (
	"context"
	"log"

	"ai-studypal-be/internal/config"
	"ai-studypal-be/internal/controller"
	"ai-studypal-be/internal/handler"
	"ai-studypal-be/internal/pkg/logger"
	"ai-studypal-be/internal/pkg/mailer"
	"ai-studypal-be/internal/repository/memory"
	"ai-studypal-be/internal/repository/unitofwork"
	"ai-studypal-be/internal/service"
	"ai-studypal-be/internal/websocket"
	"ai-studypal-be/pkg/content"
	"ai-studypal-be/pkg/embedding"
	"ai-studypal-be/pkg/gate"
	"ai-studypal-be/pkg/llm/factory"

	pktNats "ai-studypal-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	OAuthController   controller.IOAuthController
	UserController    controller.IUserController
	StudyController   controller.IStudyController
	PaymentController controller.IPaymentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WsHandler    *handler.WsHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.ContentTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.ContentTopic,
		uowFactory,
		embeddingProvider,
	)

	walletService := service.NewWalletService(uowFactory, natsPub, wsHub)
	pipeline := gate.NewPipeline(walletService, service.NewLLMGenerator(llmProvider), sysLogger)

	storeRegistry := memory.NewStoreRegistry(sysLogger)
	studyService := service.NewStudyService(
		storeRegistry,
		pipeline,
		content.NewFetcher(),
		publisherService,
		uowFactory,
		embeddingProvider,
		natsPub,
		wsHub,
	)

	authService := service.NewAuthService(uowFactory, emailService, natsPub, cfg.Tokens.SignupGrant)
	oauthService := service.NewOAuthService(uowFactory, cfg.OAuth, cfg.Tokens.SignupGrant)
	userService := service.NewUserService(uowFactory)
	paymentService := service.NewPaymentService(uowFactory, walletService, cfg.Keys.MidtransServer)

	// 6. Notification Worker
	notifService := service.NewNotificationService(natsSub, wsHub, emailService, uowFactory, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	wsHandler := handler.NewWsHandler(wsHub, wsLogger)

	return &Container{
		WsHandler:    wsHandler,
		WebSocketHub: wsHub,

		AuthController:    controller.NewAuthController(authService),
		OAuthController:   controller.NewOAuthController(oauthService),
		UserController:    controller.NewUserController(userService),
		StudyController:   controller.NewStudyController(studyService),
		PaymentController: controller.NewPaymentController(paymentService),

		ConsumerService: consumerService,
	}
}
