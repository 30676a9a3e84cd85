package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"socialmedia/api/middleware"
	"socialmedia/api/routes"
	"socialmedia/config"
	"socialmedia/db"
	"socialmedia/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	err = db.ConnectDB()
	if err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	// Redis и RabbitMQ опциональны: без них лента строится из БД,
	// а push-события уходят напрямую через WebSocket
	if err := services.InitRedis(); err != nil {
		log.Println("Redis unavailable, feed cache disabled:", err)
	} else {
		defer services.CloseRedis()
		services.QueueServiceInstance.StartWorkers(context.Background())
	}

	if err := services.InitRabbitMQ(); err != nil {
		log.Println("RabbitMQ unavailable, direct WebSocket push only:", err)
	} else {
		defer services.CloseRabbitMQ()
		if err := services.StartFeedEventConsumer(context.Background(), "feed_push_queue"); err != nil {
			log.Println("Failed to start feed event consumer:", err)
		}
	}

	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.PrometheusMiddleware("socialmedia"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.PublicApi(router)
	routes.PrivateApi(router)
	routes.AdminApi(router)

	addr := ":8080"
	if config.AppConfig.Backend.Port != 0 {
		addr = fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	}
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
