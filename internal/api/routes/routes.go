// server/internal/api/routes/routes.go
package routes

import (
	"construction-marketplace-api-server/config"
	"construction-marketplace-api-server/internal/api/handlers"
	"construction-marketplace-api-server/internal/api/middleware"
	"construction-marketplace-api-server/internal/models"
	"construction-marketplace-api-server/internal/s3"
	"construction-marketplace-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter nhận vào các thành phần phụ thuộc và thiết lập các route
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	// Khởi tạo các handlers
	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}
	projectHandler := &handlers.ProjectHandler{DB: db}
	proposalHandler := &handlers.ProposalHandler{DB: db, Hub: wsHub}
	boqHandler := &handlers.BOQHandler{DB: db, S3Uploader: s3Uploader}
	paymentHandler := &handlers.PaymentHandler{DB: db, Hub: wsHub, Cfg: cfg}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// Route cho WebSocket
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === CÁC ROUTE KHÔNG YÊU CẦU XÁC THỰC ===
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		// Webhook từ cổng thanh toán, xác thực bằng chữ ký HMAC thay vì JWT
		apiV1.POST("/payments/notify", paymentHandler.HandleNotification)

		// === CÁC ROUTE YÊU CẦU XÁC THỰC (PROTECTED) ===

		// Nhóm API quản trị, yêu cầu vai trò "admin"
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			admin.GET("/projects/pending", projectHandler.ListPendingProjects)
			admin.POST("/projects/:id/moderate", projectHandler.ModerateProject)
		}

		// Nhóm các API nghiệp vụ chính
		businessRoutes := apiV1.Group("/")
		businessRoutes.Use(middleware.Authenticate())
		businessRoutes.Use(middleware.Authorize(models.RoleAdmin, models.RoleOwner, models.RoleVendor))
		{
			// Project management
			projects := businessRoutes.Group("/projects")
			{
				projects.GET("/:id", projectHandler.GetProject)
				projects.GET("/:id/milestones", projectHandler.GetProjectMilestones)
				projects.GET("/:id/boq", boqHandler.GetProjectBOQ)
				projects.GET("/:id/proposals", proposalHandler.GetProposalsByProject)

				// Route chỉ cho chủ đầu tư (owner)
				ownerProjectRoutes := projects.Group("/")
				ownerProjectRoutes.Use(middleware.Authorize(models.RoleOwner))
				{
					ownerProjectRoutes.POST("/", projectHandler.CreateProject)
					ownerProjectRoutes.PUT("/:id", projectHandler.UpdateProject)
					ownerProjectRoutes.POST("/:id/submit", projectHandler.SubmitForReview)
					ownerProjectRoutes.POST("/:id/reopen", projectHandler.ReopenTender)
					ownerProjectRoutes.POST("/:id/complete", projectHandler.CompleteProject)
					ownerProjectRoutes.POST("/:id/documents", boqHandler.UploadDocument)
				}
			}
			businessRoutes.GET("/my/projects", middleware.Authorize(models.RoleOwner), projectHandler.GetMyProjects)

			// Tenders đang mở cho nhà thầu
			businessRoutes.GET("/tenders", middleware.Authorize(models.RoleVendor), projectHandler.ListOpenTenders)

			// Proposal management
			proposals := businessRoutes.Group("/proposals")
			{
				proposals.GET("/:id", proposalHandler.GetProposal)

				// Route chỉ cho nhà thầu (vendor)
				vendorProposalRoutes := proposals.Group("/")
				vendorProposalRoutes.Use(middleware.Authorize(models.RoleVendor))
				{
					vendorProposalRoutes.POST("/", proposalHandler.SubmitProposal)
					vendorProposalRoutes.POST("/:id/resubmit", proposalHandler.Resubmit)
					vendorProposalRoutes.POST("/:id/attachments", boqHandler.UploadProposalAttachment)
				}

				// Route chỉ cho chủ đầu tư thương lượng và chốt
				ownerProposalRoutes := proposals.Group("/")
				ownerProposalRoutes.Use(middleware.Authorize(models.RoleOwner))
				{
					ownerProposalRoutes.POST("/:id/negotiate", proposalHandler.StartNegotiation)
					ownerProposalRoutes.POST("/:id/counter-offer", proposalHandler.RecordCounterOffer)
					ownerProposalRoutes.POST("/:id/accept", proposalHandler.Accept)
					ownerProposalRoutes.POST("/:id/reject", proposalHandler.Reject)
				}
			}
			businessRoutes.GET("/my/proposals", middleware.Authorize(models.RoleVendor), proposalHandler.GetMyProposals)

			// Payments
			payments := businessRoutes.Group("/payments")
			{
				payments.POST("/", middleware.Authorize(models.RoleOwner), paymentHandler.RegisterPayment)
				payments.GET("/:transactionID", paymentHandler.GetPaymentStatus)
			}
		}
	}

	return router
}
