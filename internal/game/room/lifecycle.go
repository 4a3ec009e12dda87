package room

import (
	"log"
	"time"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

// cleanupLoop 定期清理空闲房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rm.stop:
			return
		case now := <-ticker.C:
			rm.cleanup(now)
		}
	}
}

// cleanup 销毁空闲超过 RoomTimeout 的房间，未结算的下注退回。返回清理数量。
func (rm *RoomManager) cleanup(now time.Time) int {
	removed := 0
	for _, r := range rm.snapshotRooms() {
		r.mu.Lock()
		if r.closed || now.Sub(r.lastActivity) <= rm.opts.RoomTimeout {
			r.mu.Unlock()
			continue
		}

		r.refundOutstanding()
		msg := codec.MustNewMessage(protocol.MsgRoomLeft, protocol.RoomLeftPayload{RoomID: r.ID})
		for _, id := range r.order {
			m := r.members[id]
			m.Client.SetRoom("")
			m.Client.SendMessage(msg)
		}
		r.close()
		r.mu.Unlock()

		rm.destroy(r.ID)
		log.Printf("🧹 房间 %s 空闲超时已清理", r.ID)
		removed++
	}

	if removed > 0 {
		rm.broadcastRoomList()
	}
	return removed
}
