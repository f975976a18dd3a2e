package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	v1 "github.com/vietanh2810/campmeet-api/internal/api/handler/v1"
	"github.com/vietanh2810/campmeet-api/internal/api/middleware"
	"github.com/vietanh2810/campmeet-api/internal/config"
	"github.com/vietanh2810/campmeet-api/internal/realtime"
	"github.com/vietanh2810/campmeet-api/internal/repository"
	"github.com/vietanh2810/campmeet-api/internal/repository/dao"
	"github.com/vietanh2810/campmeet-api/internal/service"

	_ "github.com/vietanh2810/campmeet-api/docs"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	hub *realtime.Hub
}

func NewServer(conf *config.AppConfig, database *gorm.DB) *Server {
	if conf.Gin.Mode != "" {
		gin.SetMode(conf.Gin.Mode)
	}

	srv := &Server{
		Config: conf,
		Router: gin.New(),
	}

	rt := conf.RealtimeSettings()
	srv.hub = realtime.NewHub(
		time.Duration(rt.HeartbeatSeconds)*time.Second,
		time.Duration(rt.WriteTimeoutSeconds)*time.Second,
	)
	go srv.hub.Run()

	srv.MountMiddlewares()
	srv.MountHandlers(database)

	return srv
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(database *gorm.DB) {
	signingKey := s.Config.API.JWTSigningKey

	userRepo := repository.NewUserRepository(dao.NewUserDAO(database))
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(database))
	roomRepo := repository.NewRoomRepository(dao.NewRoomDAO(database))
	platoonRepo := repository.NewPlatoonRepository(dao.NewPlatoonDAO(database))

	authSvc := service.NewAuthService(userRepo)
	regSvc := service.NewRegistrationService(regRepo, signingKey)
	attendanceSvc := service.NewAttendanceService(regRepo, roomRepo, platoonRepo, s.hub, signingKey)
	allocationSvc := service.NewAllocationService(regRepo, roomRepo, platoonRepo, s.Config, s.hub)
	userSvc := service.NewUserService(userRepo)
	roomSvc := service.NewRoomService(roomRepo)
	platoonSvc := service.NewPlatoonService(platoonRepo)

	healthcheckHandler := v1.NewHealthcheckHandler()
	authHandler := v1.NewAuthHandler(authSvc, signingKey)
	userHandler := v1.NewUserHandler(userSvc)
	registrationHandler := v1.NewRegistrationHandler(regSvc)
	attendanceHandler := v1.NewAttendanceHandler(attendanceSvc)
	allocationHandler := v1.NewAllocationHandler(allocationSvc)
	roomHandler := v1.NewRoomHandler(roomSvc)
	platoonHandler := v1.NewPlatoonHandler(platoonSvc)
	realtimeHandler := v1.NewRealtimeHandler(s.hub, regSvc)

	auth := middleware.NewAuthenticator(signingKey)

	root := s.Router.Group("/api/v1")
	{
		root.GET("/healthcheck", healthcheckHandler.HandleHealthcheck)

		root.POST("/auth/signup", authHandler.HandleSignup)
		root.POST("/auth/login", authHandler.HandleLogin)
	}

	authed := s.Router.Group("/api/v1")
	authed.Use(auth.VerifyJWT())
	{
		// Any authenticated account can inspect itself.
		authed.GET("/users/me", userHandler.HandleGetCurrentUser)

		attendance := authed.Group("/attendance")
		{
			attendance.POST("/check",
				middleware.RequireOperation(middleware.OpAttendanceCheck), attendanceHandler.HandleCheck)
			attendance.POST("/verify",
				middleware.RequireOperation(middleware.OpAttendanceVerify), attendanceHandler.HandleVerify)
			attendance.POST("/unverify",
				middleware.RequireOperation(middleware.OpAttendanceUnverify), attendanceHandler.HandleUnverify)
		}

		registrations := authed.Group("/registrations")
		{
			registrations.GET("",
				middleware.RequireOperation(middleware.OpRegistrationView), registrationHandler.HandleListRegistrations)
			registrations.POST("",
				middleware.RequireOperation(middleware.OpRegistrationCreate), registrationHandler.HandleCreateRegistration)
			registrations.GET("/:id",
				middleware.RequireOperation(middleware.OpRegistrationView), registrationHandler.HandleGetRegistration)
			registrations.GET("/:id/qrcode",
				middleware.RequireOperation(middleware.OpRegistrationView), registrationHandler.HandleGetQRCode)
		}

		rooms := authed.Group("/rooms")
		{
			rooms.GET("",
				middleware.RequireOperation(middleware.OpContainerView), roomHandler.HandleListRooms)
			rooms.POST("",
				middleware.RequireOperation(middleware.OpContainerManage), roomHandler.HandleCreateRoom)
			rooms.GET("/:id",
				middleware.RequireOperation(middleware.OpContainerView), roomHandler.HandleGetRoom)
			rooms.PUT("/:id",
				middleware.RequireOperation(middleware.OpContainerManage), roomHandler.HandleUpdateRoom)
		}

		platoons := authed.Group("/platoons")
		{
			platoons.GET("",
				middleware.RequireOperation(middleware.OpContainerView), platoonHandler.HandleListPlatoons)
			platoons.POST("",
				middleware.RequireOperation(middleware.OpContainerManage), platoonHandler.HandleCreatePlatoon)
			platoons.GET("/:id",
				middleware.RequireOperation(middleware.OpContainerView), platoonHandler.HandleGetPlatoon)
			platoons.PUT("/:id",
				middleware.RequireOperation(middleware.OpContainerManage), platoonHandler.HandleUpdatePlatoon)
		}

		allocations := authed.Group("/allocations")
		{
			allocations.GET("/groups",
				middleware.RequireOperation(middleware.OpAllocationView), allocationHandler.HandleGroupingPreview)

			allocations.POST("/rooms",
				middleware.RequireOperation(middleware.OpAllocationCreate), allocationHandler.HandleAllocateRooms)
			allocations.POST("/rooms/auto",
				middleware.RequireOperation(middleware.OpAllocationCreate), allocationHandler.HandleAutoAllocateRooms)
			allocations.DELETE("/rooms",
				middleware.RequireOperation(middleware.OpAllocationRemoveAll), allocationHandler.HandleClearAllRooms)
			allocations.DELETE("/rooms/:id",
				middleware.RequireOperation(middleware.OpAllocationRemove), allocationHandler.HandleClearRoom)
			allocations.DELETE("/rooms/registrations/:id",
				middleware.RequireOperation(middleware.OpAllocationRemove), allocationHandler.HandleRemoveRoomAllocation)

			allocations.POST("/platoons",
				middleware.RequireOperation(middleware.OpAllocationCreate), allocationHandler.HandleAllocatePlatoons)
			allocations.POST("/platoons/auto",
				middleware.RequireOperation(middleware.OpAllocationCreate), allocationHandler.HandleAutoAllocatePlatoons)
			allocations.DELETE("/platoons",
				middleware.RequireOperation(middleware.OpAllocationRemoveAll), allocationHandler.HandleClearAllPlatoons)
			allocations.DELETE("/platoons/:id",
				middleware.RequireOperation(middleware.OpAllocationRemove), allocationHandler.HandleClearPlatoon)
			allocations.DELETE("/platoons/registrations/:id",
				middleware.RequireOperation(middleware.OpAllocationRemove), allocationHandler.HandleRemovePlatoonAllocation)
		}

		rt := authed.Group("/realtime")
		{
			rt.GET("/ws",
				middleware.RequireOperation(middleware.OpRealtimeSubscribe), realtimeHandler.HandleSubscribe)
			rt.GET("/poll",
				middleware.RequireOperation(middleware.OpRealtimeSubscribe), realtimeHandler.HandlePoll)
		}
	}

	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
