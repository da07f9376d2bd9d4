package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicare-api/internal/middleware"
	"github.com/harentsoaR/medicare-api/internal/models"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)

		api.GET("/doctors", h.ListDoctors)
		api.GET("/doctors/:id", h.GetDoctor)
		api.GET("/doctors/user/:userId", h.GetDoctorByUser)

		api.GET("/medicines", h.ListMedicines)
		api.POST("/payment/create-order", h.CreatePaymentOrder)
	}

	staff := middleware.RequireRole(models.RoleStaff)
	auth := api.Group("", middleware.RequireAuth(h.Auth))
	{
		auth.GET("/auth/me", h.Me)

		auth.GET("/users", staff, h.ListUsers)
		auth.GET("/users/:id", h.GetUser)
		auth.PUT("/users/:id", h.UpdateUser)
		auth.DELETE("/users/:id", staff, h.DeleteUser)
		auth.GET("/users/:id/dashboard", h.Dashboard)

		auth.GET("/patients", middleware.RequireRole(models.RoleStaff, models.RoleDoctor), h.ListPatients)
		auth.GET("/patients/profile/me", middleware.RequireRole(models.RolePatient), h.MyPatientProfile)
		auth.GET("/patients/:id", h.GetPatient)
		auth.PUT("/patients/:id", h.UpdatePatient)
		auth.DELETE("/patients/:id", staff, h.DeletePatient)
		auth.GET("/patients/:id/appointments", h.PatientAppointments)

		auth.GET("/doctors/profile/me", middleware.RequireRole(models.RoleDoctor), h.MyDoctorProfile)
		auth.GET("/doctors-with-stats", h.DoctorsWithStats)
		auth.GET("/doctors/:id/stats", h.DoctorStats)
		auth.GET("/doctors/:id/appointments", h.DoctorAppointments)
		auth.PUT("/doctors/:id", h.UpdateDoctor)
		auth.DELETE("/doctors/:id", staff, h.DeleteDoctor)

		auth.GET("/staff", staff, h.ListStaff)
		auth.POST("/staff", staff, h.CreateStaff)
		auth.GET("/staff/profile/me", staff, h.MyStaffProfile)
		auth.GET("/staff/:id", staff, h.GetStaff)
		auth.PUT("/staff/:id", staff, h.UpdateStaff)
		auth.DELETE("/staff/:id", staff, h.DeleteStaff)

		auth.GET("/appointments", h.GetAppointments)
		auth.POST("/appointments", middleware.RequireRole(models.RolePatient, models.RoleStaff), h.CreateAppointment)
		auth.GET("/appointments/:id", h.GetAppointment)
		auth.PUT("/appointments/:id", h.UpdateAppointment)
		auth.DELETE("/appointments/:id", h.DeleteAppointment)

		auth.GET("/feedback", h.ListFeedback)
		auth.POST("/feedback", middleware.RequireRole(models.RolePatient), h.CreateFeedback)
		auth.GET("/feedback/:id", h.GetFeedback)
		auth.PUT("/feedback/:id", h.UpdateFeedback)
		auth.DELETE("/feedback/:id", h.DeleteFeedback)

		auth.GET("/export/:resource", staff, h.Export)

		auth.GET("/orders", h.ListOrders)
		auth.POST("/orders", middleware.RequireRole(models.RolePatient), h.CreateOrder)
	}

	return r
}
