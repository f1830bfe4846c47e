package api

import (
	"errors"
	"net/http"
	"strconv"

	"holdem-service/internal/config"
	"holdem-service/internal/middleware"
	"holdem-service/internal/model"
	"holdem-service/internal/service"
	roomSvc "holdem-service/internal/service/room"
	"holdem-service/internal/ws"
	appErr "holdem-service/pkg/errors"
	"holdem-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container, hub *ws.Hub) {
	handler := &Handler{services: services}

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
		}

		userGroup := api.Group("/user")
		userGroup.Use(middleware.AuthRequired())
		{
			userGroup.GET("/profile", handler.GetProfile)
			userGroup.POST("/borrow", handler.BorrowChips)
			userGroup.POST("/recharge", handler.CreateRecharge)
			userGroup.GET("/transactions", handler.ListTransactions)
		}

		adminGroup := api.Group("/admin")
		adminGroup.Use(middleware.AuthRequired())
		{
			adminGroup.GET("/users", handler.AdminListUsers)
			adminGroup.POST("/approve-recharge/:id", handler.AdminApproveRecharge)
			adminGroup.POST("/config/borrow-amount", handler.AdminSetBorrowAmount)
		}

		roomGroup := api.Group("/rooms")
		{
			roomGroup.GET("", handler.ListRooms)

			protected := roomGroup.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", handler.CreateRoom)
				protected.GET("/:id", handler.GetRoom)
				protected.DELETE("/:id", handler.DeleteRoom)
				protected.POST("/:id/join", handler.JoinRoom)
				protected.POST("/:id/leave", handler.LeaveRoom)
				protected.GET("/:id/game-state", handler.GetGameState)
				protected.POST("/:id/join-game", handler.JoinGame)
				protected.POST("/:id/ready", handler.SetReady)
				protected.POST("/:id/change-seat", handler.ChangeSeat)
				protected.POST("/:id/start-game", handler.StartGame)
			}
		}
	}

	r.GET("/ws", hub.HandleWS)
}

type registerBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type borrowBody struct {
	BigBlind int64 `json:"big_blind"`
}

type rechargeBody struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

type borrowAmountBody struct {
	Value int64 `json:"value" binding:"required,min=1"`
}

type createRoomBody struct {
	Name       string `json:"name" binding:"required"`
	SmallBlind int64  `json:"small_blind" binding:"required,min=1"`
	BigBlind   int64  `json:"big_blind" binding:"required,min=2"`
	MaxPlayers int    `json:"max_players"`
}

type readyBody struct {
	Ready bool `json:"ready"`
}

type changeSeatBody struct {
	SeatIndex *int `json:"seat_index" binding:"required"`
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, appErr.ErrUserNotFound),
		errors.Is(err, appErr.ErrRoomNotFound),
		errors.Is(err, appErr.ErrTableNotFound),
		errors.Is(err, appErr.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErr.ErrInvalidCredentials),
		errors.Is(err, appErr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, appErr.ErrAdminRequired),
		errors.Is(err, appErr.ErrNotRoomCreator),
		errors.Is(err, appErr.ErrUserDisabled):
		return http.StatusForbidden
	case errors.Is(err, appErr.ErrTooManyLogins):
		return http.StatusTooManyRequests
	case errors.Is(err, appErr.ErrUsernameTaken),
		errors.Is(err, appErr.ErrRoomFull),
		errors.Is(err, appErr.ErrRoomNotWaiting),
		errors.Is(err, appErr.ErrTableFull),
		errors.Is(err, appErr.ErrSeatUnavailable),
		errors.Is(err, appErr.ErrHandInProgress),
		errors.Is(err, appErr.ErrNotEnoughPlayers),
		errors.Is(err, appErr.ErrPlayerNotFound),
		errors.Is(err, appErr.ErrBorrowExhausted),
		errors.Is(err, appErr.ErrBorrowNotNeeded),
		errors.Is(err, appErr.ErrInvalidAmount),
		errors.Is(err, appErr.ErrTransactionSettled):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func userView(u *model.User) gin.H {
	return gin.H{
		"id":           strconv.FormatInt(u.ID, 10),
		"username":     u.Username,
		"avatar":       u.Avatar,
		"chips":        u.Chips,
		"borrow_count": u.BorrowCount,
		"level":        u.Level,
		"win_rate":     u.WinRate,
		"total_games":  u.TotalGames,
		"is_admin":     u.IsAdmin,
	}
}

func (h *Handler) Register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.services.Auth.Register(c.Request.Context(), body.Username, body.Password); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "registered")
}

func (h *Handler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.services.Auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, gin.H{
		"token":     result.Token,
		"expire_at": result.ExpireAt,
		"user":      userView(&result.User),
	})
}

func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.services.User.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, userView(user))
}

func (h *Handler) BorrowChips(c *gin.Context) {
	var body borrowBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	amount := h.services.User.BorrowAmount(c.Request.Context(), config.GlobalConfig.Game.BorrowAmount)
	result, err := h.services.Wallet.Borrow(c.Request.Context(), middleware.UserID(c), body.BigBlind, amount)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, result, "chips borrowed")
}

func (h *Handler) CreateRecharge(c *gin.Context) {
	var body rechargeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	txn, err := h.services.Wallet.CreateRecharge(c.Request.Context(), middleware.UserID(c), body.Amount)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{"transaction_id": txn.ID}, "recharge pending approval")
}

func (h *Handler) ListTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	txns, err := h.services.Wallet.Transactions(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, txns)
}

func (h *Handler) AdminListUsers(c *gin.Context) {
	if _, err := h.services.User.RequireAdmin(c.Request.Context(), middleware.UserID(c)); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	users, err := h.services.User.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	views := make([]gin.H, 0, len(users))
	for i := range users {
		views = append(views, userView(&users[i]))
	}
	response.Success(c, views)
}

func (h *Handler) AdminApproveRecharge(c *gin.Context) {
	admin, err := h.services.User.RequireAdmin(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	txnID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || txnID <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := h.services.Wallet.ApproveRecharge(c.Request.Context(), admin.Username, txnID); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "recharge approved")
}

func (h *Handler) AdminSetBorrowAmount(c *gin.Context) {
	if _, err := h.services.User.RequireAdmin(c.Request.Context(), middleware.UserID(c)); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	var body borrowAmountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.services.User.SetBorrowAmount(c.Request.Context(), body.Value); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "borrow amount updated")
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.services.Room.List(c.Request.Context())
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, rooms)
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var body createRoomBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	room, err := h.services.Room.Create(c.Request.Context(), roomSvc.CreateParams{
		Name:       body.Name,
		CreatorID:  middleware.UserID(c),
		SmallBlind: body.SmallBlind,
		BigBlind:   body.BigBlind,
		MaxPlayers: body.MaxPlayers,
	})
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, room)
}

func (h *Handler) GetRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := h.services.Room.Get(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, room)
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	user, err := h.services.User.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	if err := h.services.Room.Delete(c.Request.Context(), roomID, user.ID, user.IsAdmin); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "room deleted")
}

func (h *Handler) JoinRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := h.services.Room.Join(c.Request.Context(), roomID, middleware.UserID(c))
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{"room": room}, "joined room")
}

func (h *Handler) LeaveRoom(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	if err := h.services.Room.Leave(c.Request.Context(), roomID, middleware.UserID(c)); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{}, "left room")
}

func (h *Handler) GetGameState(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	room, err := h.services.Room.Get(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	tbl, err := h.services.Room.Table(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, gin.H{
		"room": room,
		"game": tbl.Snapshot(middleware.UserID(c)),
	})
}

func (h *Handler) JoinGame(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	user, err := h.services.User.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	tbl, err := h.services.Room.JoinGame(c.Request.Context(), roomID, user, -1)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.SuccessWithMsg(c, gin.H{"game_state": tbl.Snapshot(user.ID)}, "joined game")
}

func (h *Handler) SetReady(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var body readyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	tbl, err := h.services.Room.Table(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	if err := tbl.SetReady(middleware.UserID(c), body.Ready); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, gin.H{"ready": body.Ready})
}

func (h *Handler) ChangeSeat(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	var body changeSeatBody
	if err := c.ShouldBindJSON(&body); err != nil || body.SeatIndex == nil {
		response.Error(c, http.StatusBadRequest, "seat_index is required")
		return
	}
	tbl, err := h.services.Room.Table(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	if err := tbl.ChangeSeat(middleware.UserID(c), *body.SeatIndex); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	response.Success(c, gin.H{"seat_index": *body.SeatIndex})
}

func (h *Handler) StartGame(c *gin.Context) {
	roomID, ok := roomIDParam(c)
	if !ok {
		return
	}
	tbl, err := h.services.Room.Table(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	if err := tbl.StartHand(); err != nil {
		response.Error(c, statusForError(err), err.Error())
		return
	}
	h.services.Room.SetStatus(c.Request.Context(), roomID, "playing")
	response.SuccessWithMsg(c, gin.H{"game_state": tbl.Snapshot(middleware.UserID(c))}, "game started")
}

func roomIDParam(c *gin.Context) (int64, bool) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid room id")
		return 0, false
	}
	return roomID, true
}
