// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/clinicore/clinicore/config"
	"github.com/clinicore/clinicore/endpoint"
	"github.com/clinicore/clinicore/middleware"
	"github.com/clinicore/clinicore/model"
	"github.com/clinicore/clinicore/util"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func main() {
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{}, &model.Role{}, &model.Session{},
		&model.Doctor{}, &model.Patient{}, &model.Appointment{}, &model.Invoice{},
		&model.SecurityLog{},
	); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	if err := model.SeedRoles(db); err != nil {
		log.Fatalf("Error seeding roles: %v", err)
	}

	util.SetSecurityLoggerDB(db)
	util.InitUserEmailCache(0)

	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, continuing without it: %v", err)
	}
	if err := util.InitGeoIP(""); err != nil {
		log.Printf("GeoIP unavailable, continuing without it: %v", err)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("strongpassword", util.StrongPasswordValidator); err != nil {
			log.Fatalf("Error registering password validator: %v", err)
		}
	}

	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})
	router.GET("/health", middleware.HealthHandler)

	// Credential endpoints are rate limited per IP.
	authLimiter := middleware.RateLimiter(middleware.RateLimitConfig{})
	router.POST("/register", authLimiter, endpoint.Register)
	router.POST("/login", authLimiter, endpoint.Login)
	router.GET("/token/validate", endpoint.ValidateToken)

	auth := router.Group("/")
	auth.Use(middleware.ValidateLoginToken())
	{
		auth.DELETE("/logout", endpoint.Logout)

		auth.GET("/user", endpoint.ListUsers)
		auth.PATCH("/user", endpoint.UpdateUser)
		auth.GET("/user/:id", endpoint.GetUserInfo)
		auth.DELETE("/user/:id", endpoint.DeleteUser)

		auth.GET("/patient", endpoint.ListPatients)
		auth.POST("/patient", endpoint.CreatePatient)
		auth.GET("/patient/:id", endpoint.GetPatient)
		auth.PATCH("/patient/:id", endpoint.UpdatePatient)
		auth.DELETE("/patient/:id", endpoint.DeletePatient)

		auth.GET("/doctor", endpoint.ListDoctors)
		auth.POST("/doctor", endpoint.CreateDoctor)
		auth.GET("/doctor/:id", endpoint.GetDoctor)
		auth.PATCH("/doctor/:id", endpoint.UpdateDoctor)
		auth.DELETE("/doctor/:id", endpoint.DeleteDoctor)

		auth.GET("/appointment", endpoint.ListAppointments)
		auth.POST("/appointment", endpoint.CreateAppointment)
		auth.GET("/appointment/:id", endpoint.GetAppointment)
		auth.PATCH("/appointment/:id/status", endpoint.UpdateAppointmentStatus)
		auth.DELETE("/appointment/:id", endpoint.DeleteAppointment)

		auth.GET("/invoice", endpoint.ListInvoices)
		auth.POST("/invoice", endpoint.CreateInvoice)
		auth.GET("/invoice/:id", endpoint.GetInvoice)
		auth.POST("/invoice/:id/pay", endpoint.PayInvoice)
		auth.DELETE("/invoice/:id", endpoint.DeleteInvoice)
	}

	// Explicit timeouts so no request can hang indefinitely.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("%s listening on %s", cfg.AppName, srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("error starting server: %v", err)
	}
}
