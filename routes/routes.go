package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/config"
	"github.com/amirulhaziq/inspectable-backend/internal/asset"
	"github.com/amirulhaziq/inspectable-backend/internal/auditlog"
	"github.com/amirulhaziq/inspectable-backend/internal/auth"
	"github.com/amirulhaziq/inspectable-backend/internal/crossaudit"
	"github.com/amirulhaziq/inspectable-backend/internal/department"
	"github.com/amirulhaziq/inspectable-backend/internal/inspection"
	"github.com/amirulhaziq/inspectable-backend/internal/location"
	"github.com/amirulhaziq/inspectable-backend/internal/user"
	"github.com/amirulhaziq/inspectable-backend/middleware"
)

// Setup wires every module behind /api/v1. Credential endpoints sit outside
// the auth middleware with a tighter rate limit; everything else requires a
// valid token, with role checks layered per group.
func Setup(r *gin.Engine, cfg *config.Config, db *gorm.DB) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())
	api.Use(middleware.AuditMiddleware())

	// ========== Audit Log ==========
	auditRepo := auditlog.NewRepository(db)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc, auditSvc)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimiter())
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/verify-email", authHandler.VerifyEmail)
		authGroup.POST("/resend-verification", authHandler.ResendVerification)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	protected.POST("/auth/change-password", authHandler.ChangePassword)
	protected.GET("/auth/permissions", authHandler.GetPermissions)

	// ========== Departments ==========
	deptRepo := department.NewRepository(db)
	deptImporter := department.NewImporter(department.NewImportStore(db))
	deptSvc := department.NewService(deptRepo, deptImporter, cfg.UploadDir)
	deptHandler := department.NewHandler(deptSvc, auditSvc)

	deptRoutes := protected.Group("/departments")
	{
		deptRoutes.GET("", deptHandler.List)
		deptRoutes.GET("/:id", deptHandler.Get)
		deptRoutes.GET("/:id/summary-files", deptHandler.ListSummaryFiles)

		adminDept := deptRoutes.Group("")
		adminDept.Use(middleware.RequireAdmin())
		{
			adminDept.POST("", deptHandler.Create)
			adminDept.PUT("/:id", deptHandler.Update)
			adminDept.DELETE("/:id", deptHandler.Delete)
			adminDept.POST("/:id/summary-files", deptHandler.UploadSummaryFiles)
			adminDept.DELETE("/:id/summary-files/:fileId", deptHandler.DeleteSummaryFile)
			adminDept.POST("/import", deptHandler.BulkImport)
		}
	}

	// ========== Locations ==========
	locationRepo := location.NewRepository(db)
	locationSvc := location.NewService(locationRepo)
	locationHandler := location.NewHandler(locationSvc)

	locationRoutes := protected.Group("/locations")
	{
		locationRoutes.GET("", locationHandler.List)
		locationRoutes.GET("/:id", locationHandler.Get)

		manageLocations := locationRoutes.Group("")
		manageLocations.Use(middleware.RequireRoles(auth.RoleAdmin, auth.RoleAssetOfficer))
		{
			manageLocations.POST("", locationHandler.Create)
			manageLocations.PUT("/:id", locationHandler.Update)
			manageLocations.DELETE("/:id", locationHandler.Delete)
		}
	}

	// ========== Cross-Audit Assignments ==========
	crossAuditRepo := crossaudit.NewRepository(db)
	crossAuditSvc := crossaudit.NewService(crossAuditRepo)
	crossAuditHandler := crossaudit.NewHandler(crossAuditSvc, auditSvc)

	crossAuditRoutes := protected.Group("/cross-audits")
	{
		crossAuditRoutes.GET("", crossAuditHandler.ListAssignments)
		crossAuditRoutes.GET("/allowed-departments", crossAuditHandler.GetAllowedDepartments)
		crossAuditRoutes.GET("/eligible-auditors", crossAuditHandler.GetEligibleAuditors)

		adminCrossAudit := crossAuditRoutes.Group("")
		adminCrossAudit.Use(middleware.RequireAdmin())
		{
			adminCrossAudit.POST("", crossAuditHandler.CreateAssignment)
			adminCrossAudit.PUT("/:id", crossAuditHandler.UpdateAssignment)
			adminCrossAudit.DELETE("/:id", crossAuditHandler.DeleteAssignment)
		}
	}

	// ========== Inspections ==========
	inspectionRepo := inspection.NewRepository(db)
	inspectionSvc := inspection.NewService(inspectionRepo, crossAuditSvc)
	inspectionHandler := inspection.NewHandler(inspectionSvc)

	inspectionRoutes := protected.Group("/inspections")
	{
		inspectionRoutes.GET("", inspectionHandler.List)
		inspectionRoutes.GET("/:id", inspectionHandler.Get)

		manageSchedule := inspectionRoutes.Group("")
		manageSchedule.Use(middleware.RequireRoles(auth.RoleAdmin, auth.RoleAuditor))
		{
			manageSchedule.POST("", inspectionHandler.Create)
			manageSchedule.PUT("/:id", inspectionHandler.Update)
			manageSchedule.DELETE("/:id", inspectionHandler.Delete)
		}
	}

	// ========== Assets ==========
	assetRepo := asset.NewRepository(db)
	assetSvc := asset.NewService(assetRepo, deptRepo)
	assetHandler := asset.NewHandler(assetSvc, auditSvc)

	assetRoutes := protected.Group("/assets")
	{
		assetRoutes.GET("", assetHandler.ListRecords)
		assetRoutes.GET("/summary", assetHandler.GetSummary)
		assetRoutes.GET("/summary/export", assetHandler.ExportSummary)
		assetRoutes.GET("/batches", assetHandler.ListBatches)

		assetRoutes.PUT("/:id/inspect",
			middleware.RequireRoles(auth.RoleAdmin, auth.RoleAssetOfficer),
			assetHandler.MarkInspected)

		adminAssets := assetRoutes.Group("")
		adminAssets.Use(middleware.RequireAdmin())
		{
			adminAssets.POST("/upload", assetHandler.Ingest)
			adminAssets.DELETE("/batches/:id", assetHandler.DeleteBatch)
		}
	}

	// ========== User Management (Admin) ==========
	userRepo := user.NewRepository(db)
	userSvc := user.NewService(userRepo, deptRepo)
	userHandler := user.NewHandler(userSvc, auditSvc)

	userRoutes := protected.Group("/users")
	userRoutes.Use(middleware.RequireAdmin())
	{
		userRoutes.GET("", userHandler.ListUsers)
		userRoutes.GET("/:id", userHandler.GetUser)
		userRoutes.POST("", userHandler.CreateUser)
		userRoutes.PUT("/:id", userHandler.UpdateUser)
		userRoutes.DELETE("/:id", userHandler.DeleteUser)
		userRoutes.POST("/import", userHandler.ImportUsers)
		userRoutes.POST("/verify", userHandler.VerifyUser)
		userRoutes.POST("/transfer-staff-id", userHandler.TransferStaffID)
	}

	// ========== Audit Logs (Admin) ==========
	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(middleware.RequireAdmin())
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}
}
