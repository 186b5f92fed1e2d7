package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"productapi/internal/database"
	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "productdb")
	viper.AutomaticEnv()

	port := viper.GetString("PORT")
	apiKey := viper.GetString("API_KEY")
	mongoURI := viper.GetString("MONGO_URI")
	mongoDB := viper.GetString("MONGO_DB")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	if apiKey == "" {
		log.Println("Warning: API_KEY is not set; all requests will be rejected with 403")
	}

	// --- Connect to MongoDB ---
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := database.Connect(connectCtx, mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("MongoDB connected!")

	// --- Initialize RabbitMQ Client (optional) ---
	// Events are a best-effort side channel; the API runs without a broker.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, product events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	// --- Initialize Repositories ---
	productCollection := client.Database(mongoDB).Collection("products")
	productRepo := repositories.NewMongoProductRepository(productCollection)

	// --- Initialize Services ---
	var publisher services.ProductEventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	productService := services.NewProductService(productRepo, publisher)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	// Order matters: logging first, then the API-key gate, then per-route
	// validation inside the handler registrations.
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${method} ${path}\n",
		TimeFormat: "2006-01-02T15:04:05.000Z0700",
	}))
	app.Use(middleware.APIKeyAuth(apiKey))

	// --- Routes ---
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Welcome to the Product API! Go to /api/products to see all products.")
	})

	api := app.Group("/api")
	productHandler.RegisterRoutes(api)

	// --- Start RabbitMQ Consumer ---
	// Keeps an audit trail of product lifecycle events in the server log.
	if mqClient != nil {
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received product event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}
		if consumerErr := mqClient.ConsumeProductEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Server is running on http://localhost:%s", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer disconnectCancel()
	if err := client.Disconnect(disconnectCtx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	}

	log.Println("Server gracefully stopped")
}
