package handler

import (
	"context"
	"log"
	"slices"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/convert"
	"github.com/Uwaniumnya/crystal-social/internal/server/storage"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

const (
	queryTimeout = 3 * time.Second

	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

var boards = []string{storage.BoardTotal, storage.BoardDaily, storage.BoardWeekly}

// --- 排行榜处理 ---

// handleGetStats 获取个人统计。余额与统计来自在线玩家，排名来自排行榜。
func (h *Handler) handleGetStats(client types.ClientInterface) error {
	p := client.GetPlayer()
	rank := int64(-1)
	if h.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		r, err := h.leaderboard.GetPlayerRank(ctx, p.ID)
		if err != nil {
			log.Printf("⚠️ 获取玩家 %s 排名失败: %v", p.ID, err)
		} else {
			rank = r
		}
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgStats, convert.StatsToPayload(p, rank)))
	return nil
}

// handleGetLeaderboard 获取排行榜，未配置存储时返回空榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, cmd codec.GetLeaderboard) error {
	board := cmd.Board
	if board == "" {
		board = storage.BoardTotal
	}
	if !slices.Contains(boards, board) {
		return apperrors.Wrapf(apperrors.ErrInvalidField, "unknown leaderboard %q", board)
	}

	entries := []protocol.LeaderboardEntry{}
	if h.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		got, err := h.leaderboard.GetLeaderboard(ctx, board, cmd.Limit)
		if err != nil {
			return err
		}
		entries = got
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboard, protocol.LeaderboardPayload{
		Type:    board,
		Entries: entries,
	}))
	return nil
}

// handleGetHistory 房间结算历史。有 Redis 时读 Redis，失败或未配置时用内存中的历史。
func (h *Handler) handleGetHistory(client types.ClientInterface, cmd codec.GetHistory) error {
	roomID := cmd.RoomID
	if roomID == "" {
		roomID = client.GetRoom()
	}
	if roomID == "" {
		return apperrors.ErrNotInRoom
	}
	room := h.roomManager.GetRoom(roomID)
	if room == nil {
		return apperrors.ErrRoomNotFound
	}

	limit := cmd.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	var rounds []protocol.RoundSummary
	if h.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		got, err := h.history.RoundHistory(ctx, roomID, limit)
		if err != nil {
			log.Printf("⚠️ 读取房间 %s 历史失败，改用内存记录: %v", roomID, err)
		} else {
			rounds = got
		}
	}
	if rounds == nil {
		rounds = room.History(limit)
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgHistory, protocol.HistoryPayload{
		RoomID: roomID,
		Rounds: rounds,
	}))
	return nil
}
