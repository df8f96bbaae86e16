package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"
	"golang.org/x/time/rate"

	"campus360/cmd/middleware"
	"campus360/internal/repo"
	"campus360/internal/service"
)

type Routers struct {
	Service service.Service
	Repo    repo.Repository
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	apiGroup := app.Group("/v1")
	apiGroup.Use(middleware.Identity(r.Repo))

	// Writes to the public feed are throttled per IP.
	postLimiter := middleware.NewIPRateLimiter(rate.Limit(2), 5)

	// community chat
	apiGroup.GET("/community/posts", r.Service.GetFeed)
	apiGroup.POST("/community/posts", middleware.RateLimit(postLimiter), r.Service.CreatePost)
	apiGroup.GET("/community/posts/:id", r.Service.GetPost)
	apiGroup.DELETE("/community/posts/:id", r.Service.DeletePost)
	apiGroup.GET("/community/posts/:id/replies", r.Service.GetReplies)
	apiGroup.POST("/community/posts/:id/replies", middleware.RateLimit(postLimiter), r.Service.CreateReply)
	apiGroup.GET("/community/ws", r.Service.ChatWS)

	// events
	apiGroup.GET("/events", r.Service.GetAllEvents)
	apiGroup.GET("/events/:id", r.Service.GetEvent)
	apiGroup.POST("/events", middleware.RequireAdmin(), r.Service.CreateEvent)
	apiGroup.POST("/events/:id/register", r.Service.Register)
	apiGroup.POST("/events/:id/cancel", r.Service.CancelRegistration)
	apiGroup.GET("/events/:id/registrations", middleware.RequireAdmin(), r.Service.GetRegistrations)
	apiGroup.POST("/registrations/:id/attended", middleware.RequireAdmin(), r.Service.MarkAttended)

	// sports equipment
	apiGroup.GET("/equipment", r.Service.GetAllEquipment)
	apiGroup.POST("/equipment", middleware.RequireAdmin(), r.Service.CreateEquipment)
	apiGroup.POST("/equipment/:id/borrow", r.Service.BorrowEquipment)
	apiGroup.POST("/equipment/logs/:id/return", r.Service.ReturnEquipment)
	apiGroup.GET("/equipment/loans", r.Service.GetMyLoans)

	// canteen
	apiGroup.GET("/canteen/menu", r.Service.GetMenu)
	apiGroup.POST("/canteen/menu", middleware.RequireAdmin(), r.Service.CreateFoodItem)
	apiGroup.PUT("/canteen/menu/:id", middleware.RequireAdmin(), r.Service.UpdateFoodItem)
	apiGroup.POST("/canteen/orders", r.Service.PlaceOrder)
	apiGroup.GET("/canteen/orders", r.Service.GetMyOrders)
	apiGroup.PATCH("/canteen/orders/:id/status", middleware.RequireAdmin(), r.Service.UpdateOrderStatus)

	// rooms
	apiGroup.GET("/rooms", r.Service.GetRooms)
	apiGroup.POST("/rooms", middleware.RequireAdmin(), r.Service.CreateRoom)
	apiGroup.POST("/rooms/:id/book", r.Service.BookRoom)
	apiGroup.GET("/rooms/:id/bookings", r.Service.GetRoomBookings)

	// transport
	apiGroup.GET("/transport/routes", r.Service.GetTransportRoutes)
	apiGroup.POST("/transport/routes", middleware.RequireAdmin(), r.Service.UpsertTransportRoute)
	apiGroup.PUT("/transport/routes/:id", middleware.RequireAdmin(), r.Service.UpsertTransportRoute)

	// grievances
	apiGroup.POST("/grievances", r.Service.CreateGrievance)
	apiGroup.GET("/grievances", r.Service.GetGrievances)
	apiGroup.PATCH("/grievances/:id/status", middleware.RequireAdmin(), r.Service.UpdateGrievanceStatus)

	// profile and notifications
	apiGroup.PUT("/users/me", r.Service.UpsertMe)
	apiGroup.POST("/users/me/fcm-token", r.Service.SaveFCMToken)
	apiGroup.GET("/notifications/route", r.Service.NotificationRoute)

	// SOS is throttled per IP so a stuck client cannot flood contacts.
	sosLimiter := middleware.NewIPRateLimiter(rate.Limit(1), 3)
	apiGroup.POST("/sos", middleware.RateLimit(sosLimiter), r.Service.TriggerSOS)

	return app
}
