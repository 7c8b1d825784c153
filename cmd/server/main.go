package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sketchtalk/sketchtalk/internal/config"
	"github.com/sketchtalk/sketchtalk/internal/handler"
	"github.com/sketchtalk/sketchtalk/internal/middleware"
	"github.com/sketchtalk/sketchtalk/internal/model"
	"github.com/sketchtalk/sketchtalk/internal/repository"
	"github.com/sketchtalk/sketchtalk/internal/service"
	"github.com/sketchtalk/sketchtalk/pkg/database"
	"github.com/sketchtalk/sketchtalk/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unavailable at %s, rate limiting disabled: %v", cfg.RedisURL, err)
		redisClient = nil
	}

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	imageRepo := repository.NewImageRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	authService := service.NewAuthService(userRepo)
	authHandler := handler.NewAuthHandler(authService)

	userService := service.NewUserService(userRepo)
	userHandler := handler.NewUserHandler(userService)

	discussionService := service.NewDiscussionService(postRepo, userRepo, reactionRepo, imageStorage, redisClient)
	discussionHandler := handler.NewDiscussionHandler(discussionService)
	postHandler := handler.NewPostHandler(discussionService)

	reactionService := service.NewReactionService(reactionRepo, postRepo, redisClient)
	reactionHandler := handler.NewReactionHandler(reactionService)

	imageService := service.NewImageService(imageRepo, imageStorage)
	imageHandler := handler.NewImageHandler(imageService)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	api.GET("/images/:id", imageHandler.GetImage)
	api.GET("/posts/:id/reactions", reactionHandler.GetPostReactions)

	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	api.Use(authMiddleware.RequireAuth())
	{
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.DELETE("/users/:id", userHandler.DisableUser)
		}

		api.GET("/users", userHandler.GetUsers)
		api.GET("/users/me", userHandler.GetCurrentUser)
		api.GET("/users/:username", userHandler.GetUserByUsername)

		api.GET("/discussions", discussionHandler.GetSummaries)
		api.POST("/discussions", discussionHandler.CreateThread)

		api.GET("/posts/:id", postHandler.GetPost)
		api.GET("/posts/:id/tree", postHandler.GetReplyTree)
		api.POST("/posts/:id/replies", postHandler.CreateReply)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.ArchivePost)
		api.PUT("/posts/:id/inappropriate", postHandler.SetInappropriateFlag)

		api.POST("/posts/:id/reactions", reactionHandler.React)
		api.DELETE("/posts/:id/reactions/:type", reactionHandler.Unreact)
	}

	// Start Orphan Image Cleanup Job (Background)
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			log.Println("running orphan image cleanup...")
			if err := imageService.CleanupOrphanImages(context.Background()); err != nil {
				log.Printf("error cleaning up orphan images: %v", err)
			}
		}
	}()

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Image{},
		&model.Post{},
		&model.Reaction{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Super administrator"},
		{Name: "member", Description: "Regular member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("username = ?", "admin").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Username:     "admin",
		Email:        "admin@sketchtalk.local",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("admin user seeded (username: admin, password: admin123)")

	return nil
}
