package room

import (
	"context"
	"fmt"
	"strconv"

	"holdem-service/internal/game"
	"holdem-service/internal/model"
	appErr "holdem-service/pkg/errors"
	"holdem-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	rdb    *redis.Client
	tables *game.Registry
}

type CreateParams struct {
	Name       string
	CreatorID  int64
	SmallBlind int64
	BigBlind   int64
	MaxPlayers int
}

type RoomView struct {
	model.Room
	CurrentPlayers int `json:"current_players"`
}

func NewService(db *gorm.DB, rdb *redis.Client, tables *game.Registry) *Service {
	return &Service{db: db, rdb: rdb, tables: tables}
}

// Tables exposes the engine registry for the transport layer.
func (s *Service) Tables() *game.Registry {
	return s.tables
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*model.Room, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: room name required", appErr.ErrInvalidAmount)
	}
	if params.SmallBlind <= 0 || params.BigBlind <= params.SmallBlind {
		return nil, fmt.Errorf("%w: blinds must satisfy 0 < small < big", appErr.ErrInvalidAmount)
	}
	if params.MaxPlayers <= 1 || params.MaxPlayers > 9 {
		params.MaxPlayers = 9
	}

	room := model.Room{
		Name:       params.Name,
		CreatorID:  params.CreatorID,
		SmallBlind: params.SmallBlind,
		BigBlind:   params.BigBlind,
		MaxPlayers: params.MaxPlayers,
		Status:     "waiting",
	}
	if err := s.db.WithContext(ctx).Create(&room).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("room created",
		zap.Int64("roomID", room.ID),
		zap.Int64("creatorID", params.CreatorID),
		zap.Int64("smallBlind", room.SmallBlind),
		zap.Int64("bigBlind", room.BigBlind),
	)
	return &room, nil
}

func (s *Service) List(ctx context.Context) ([]RoomView, error) {
	var rooms []model.Room
	err := s.db.WithContext(ctx).Where("status <> ?", "closed").Order("id").Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	views := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, RoomView{Room: r, CurrentPlayers: s.playerCount(ctx, r.ID)})
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, roomID int64) (*RoomView, error) {
	var room model.Room
	err := s.db.WithContext(ctx).First(&room, roomID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrRoomNotFound
		}
		return nil, err
	}
	return &RoomView{Room: room, CurrentPlayers: s.playerCount(ctx, room.ID)}, nil
}

// Delete removes an empty room. Only its creator may delete it.
func (s *Service) Delete(ctx context.Context, roomID, userID int64, isAdmin bool) error {
	var room model.Room
	err := s.db.WithContext(ctx).First(&room, roomID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.ErrRoomNotFound
		}
		return err
	}
	if !isAdmin && room.CreatorID != userID {
		return appErr.ErrNotRoomCreator
	}
	if s.playerCount(ctx, roomID) > 0 {
		return fmt.Errorf("%w: players still seated", appErr.ErrRoomNotWaiting)
	}

	if err := s.db.WithContext(ctx).Delete(&room).Error; err != nil {
		return err
	}
	s.tables.Remove(roomID)
	if s.rdb != nil {
		s.rdb.Del(ctx, presenceKey(roomID))
	}
	return nil
}

// Join registers presence in the room. Seating at the table itself happens
// separately through JoinGame.
func (s *Service) Join(ctx context.Context, roomID, userID int64) (*RoomView, error) {
	view, err := s.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if view.CurrentPlayers >= view.MaxPlayers {
		return nil, appErr.ErrRoomFull
	}

	if s.rdb != nil {
		if err := s.rdb.SAdd(ctx, presenceKey(roomID), userID).Err(); err != nil {
			logger.Log.Warn("presence update failed", zap.Int64("roomID", roomID), zap.Error(err))
		}
	}
	view.CurrentPlayers = s.playerCount(ctx, roomID)
	return view, nil
}

// Leave drops presence and unseats the player from the engine table.
func (s *Service) Leave(ctx context.Context, roomID, userID int64) error {
	if _, err := s.Get(ctx, roomID); err != nil {
		return err
	}

	if tbl, ok := s.tables.Get(roomID); ok {
		if err := tbl.RemovePlayer(userID); err != nil && err != appErr.ErrPlayerNotFound {
			return err
		}
	}
	if s.rdb != nil {
		s.rdb.SRem(ctx, presenceKey(roomID), userID)
	}
	return nil
}

// Table returns the room's engine table, creating it with the room's blinds
// on first use.
func (s *Service) Table(ctx context.Context, roomID int64) (*game.Table, error) {
	if tbl, ok := s.tables.Get(roomID); ok {
		return tbl, nil
	}
	var room model.Room
	err := s.db.WithContext(ctx).First(&room, roomID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrRoomNotFound
		}
		return nil, err
	}
	return s.tables.GetOrCreate(room.ID, room.SmallBlind, room.BigBlind), nil
}

// JoinGame seats the user at the engine table with their banked chips.
func (s *Service) JoinGame(ctx context.Context, roomID int64, user *model.User, seat int) (*game.Table, error) {
	tbl, err := s.Table(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if seat < 0 {
		seat = tbl.NextFreeSeat()
	}
	if err := tbl.AddPlayer(user.ID, user.Username, user.Chips, seat); err != nil {
		return nil, err
	}
	if s.rdb != nil {
		s.rdb.SAdd(ctx, presenceKey(roomID), user.ID)
	}
	return tbl, nil
}

// SetStatus mirrors the table lifecycle onto the room row for lobby listings.
func (s *Service) SetStatus(ctx context.Context, roomID int64, status string) {
	err := s.db.WithContext(ctx).Model(&model.Room{}).Where("id = ?", roomID).Update("status", status).Error
	if err != nil {
		logger.Log.Warn("room status update failed", zap.Int64("roomID", roomID), zap.Error(err))
	}
}

func (s *Service) playerCount(ctx context.Context, roomID int64) int {
	if tbl, ok := s.tables.Get(roomID); ok {
		return tbl.PlayerCount()
	}
	if s.rdb != nil {
		if n, err := s.rdb.SCard(ctx, presenceKey(roomID)).Result(); err == nil {
			return int(n)
		}
	}
	return 0
}

func presenceKey(roomID int64) string {
	return "room:presence:" + strconv.FormatInt(roomID, 10)
}
