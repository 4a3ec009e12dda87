package handler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/game/player"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/convert"
	"github.com/Uwaniumnya/crystal-social/internal/types"
)

// profileLoadTimeout 读取玩家资料的超时
const profileLoadTimeout = 3 * time.Second

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, cmd codec.Ping) error {
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: cmd.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
	return nil
}

// handleAuthenticate 绑定玩家身份，回复 authenticated 并推送大厅房间列表
func (h *Handler) handleAuthenticate(client types.ClientInterface, cmd codec.Authenticate) error {
	if client.GetPlayer() != nil {
		return apperrors.ErrAlreadyAuthenticated
	}

	p, restored, err := h.resolvePlayer(cmd)
	if err != nil {
		return err
	}
	if err := h.server.BindPlayer(client, p); err != nil {
		return err
	}

	token := h.sessionManager.Issue(p)
	client.SendMessage(codec.MustNewMessage(protocol.MsgAuthenticated, protocol.AuthenticatedPayload{
		Player:         convert.PlayerToInfo(p),
		ReconnectToken: token,
		Restored:       restored,
	}))
	client.SendMessage(codec.MustNewMessage(protocol.MsgAvailableRooms, protocol.AvailableRoomsPayload{
		Rooms: h.roomManager.ListRooms(),
	}))
	// 顶替旧连接时接手了原来的座位
	if r, err := h.roomManager.RoomOf(client); err == nil {
		client.SendMessage(codec.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomPayload{
			Room: r.Snapshot(),
		}))
	}

	log.Printf("✅ 玩家 %s (%s) 已登录，余额 %d，在线 %d", p.Name, p.ID, p.Balance(), h.server.GetOnlineCount())
	return nil
}

// resolvePlayer 按顺序确定玩家：令牌身份 → 重连 token → 内存会话 → Redis 资料 → 新玩家。
// 第二个返回值表示是否恢复了已有余额。
func (h *Handler) resolvePlayer(cmd codec.Authenticate) (*player.Player, bool, error) {
	id, name := cmd.PlayerID, cmd.Name
	if h.verifier.Enabled() {
		claims, err := h.verifier.Verify(cmd.Token)
		if err != nil {
			return nil, false, err
		}
		id = claims.PlayerID
		if claims.Name != "" {
			name = claims.Name
		}
	}

	if p, ok := h.sessionManager.Restore(cmd.ReconnectToken); ok && (id == "" || id == p.ID) {
		return p, true, nil
	}

	if id == "" {
		id = uuid.NewString()
	} else {
		if p := h.sessionManager.Lookup(id); p != nil {
			return p, true, nil
		}
		if p := h.loadProfile(id); p != nil {
			return p, true, nil
		}
	}

	if name == "" {
		name = h.namer.Next(h.sessionManager.NameInUse)
	}
	credits := h.startingCredits
	if cmd.Credits != nil {
		credits = *cmd.Credits
	}
	return player.New(id, name, credits), false, nil
}

// loadProfile 从存储恢复玩家，失败只记录日志
func (h *Handler) loadProfile(id string) *player.Player {
	if h.profiles == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), profileLoadTimeout)
	defer cancel()

	profile, err := h.profiles.LoadProfile(ctx, id)
	if err != nil {
		log.Printf("⚠️ 读取玩家 %s 资料失败: %v", id, err)
		return nil
	}
	if profile == nil {
		return nil
	}
	return player.FromProfile(*profile)
}
