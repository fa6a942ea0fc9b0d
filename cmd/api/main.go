// server/cmd/api/main.go
package main

import (
	"log"

	"construction-marketplace-api-server/config"
	"construction-marketplace-api-server/internal/api/routes"
	"construction-marketplace-api-server/internal/auth"
	"construction-marketplace-api-server/internal/database"
	"construction-marketplace-api-server/internal/s3"
	"construction-marketplace-api-server/internal/socket"

	"github.com/joho/godotenv"
)

func main() {
	// .env chỉ dùng cho môi trường dev, production đọc biến môi trường trực tiếp
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	auth.SetSecret(cfg.JWT.Secret)

	// 2. Kết nối MongoDB
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// 3. Seed tài khoản admin mặc định
	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// 4. Khởi tạo S3 uploader cho tài liệu dự án và hồ sơ dự thầu
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 uploader: %v", err)
	}

	// 5. Khởi tạo WebSocket hub cho thông báo thương lượng
	wsHub := socket.NewHub()

	// 6. Truyền tất cả các thành phần cần thiết vào router
	router := routes.SetupRouter(cfg, db, s3Uploader, wsHub)

	// 7. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
