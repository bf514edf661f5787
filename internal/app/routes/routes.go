package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lakshya/placement-portal/internal/app/controllers"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/middleware"
)

// SetupRouter configures all application routes. loginLimiter guards the
// login endpoint; pass a pass-through handler to disable throttling.
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	accountController *controllers.AccountController,
	studentController *controllers.StudentController,
	companyUpdateController *controllers.CompanyUpdateController,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter gin.HandlerFunc,
) {
	api := router.Group("/api")

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", loginLimiter, authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	profile := authenticated.Group("/auth")
	{
		profile.POST("/logout", authController.Logout)
		profile.GET("/profile", authController.GetProfile)
		profile.GET("/me", authController.GetProfile)
		profile.PUT("/profile", authController.UpdateProfile)
		profile.POST("/profile/resume", authMiddleware.RoleRequired(models.RoleStudent), authController.UploadResume)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", studentController.ListStudents)
		students.GET("/:studentId", studentController.GetStudent)
	}

	companyUpdates := authenticated.Group("/company-updates")
	{
		companyUpdates.GET("", companyUpdateController.ListCompanyUpdates)
		companyUpdates.GET("/:id", companyUpdateController.GetCompanyUpdate)

		companyUpdates.PUT("/:id/status",
			authMiddleware.RoleRequired(models.RoleCoordinator, models.RoleAdmin),
			companyUpdateController.UpdateCompanyUpdateStatus)

		coordinatorOnly := companyUpdates.Group("")
		coordinatorOnly.Use(authMiddleware.RoleRequired(models.RoleCoordinator))
		{
			coordinatorOnly.POST("", companyUpdateController.CreateCompanyUpdate)
			coordinatorOnly.PUT("/:id", companyUpdateController.UpdateCompanyUpdate)
			coordinatorOnly.DELETE("/:id", companyUpdateController.DeleteCompanyUpdate)
		}
	}

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/accounts", accountController.ListAccounts)
		admin.PATCH("/accounts/:id/status", accountController.UpdateAccountStatus)
	}
}
