package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Uwaniumnya/crystal-social/internal/auth"
	"github.com/Uwaniumnya/crystal-social/internal/client"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
	"github.com/Uwaniumnya/crystal-social/internal/protocol/codec"
)

const (
	waitTimeout = 30 * time.Second
	// 爆牌概率低于该值且不足 17 点时继续要牌
	hitThreshold = 0.5
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	winStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	loseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	redCard    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	blackCard  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	hiddenCard = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var suitSymbols = map[string]string{
	"spades":   "♠",
	"hearts":   "♥",
	"clubs":    "♣",
	"diamonds": "♦",
}

func main() {
	serverAddr := flag.String("server", "localhost:1780", "服务器地址")
	playerID := flag.String("id", "", "玩家 ID，留空由服务器分配")
	name := flag.String("name", "", "昵称")
	secret := flag.String("secret", "", "身份令牌密钥，服务器开启鉴权时需要")
	issuer := flag.String("issuer", "", "身份令牌签发者")
	game := flag.String("game", "blackjack", "游戏：blackjack/dice")
	bet := flag.Int64("bet", 50, "每局下注额")
	rounds := flag.Int("rounds", 3, "对局数")
	flag.Parse()

	token := ""
	if *secret != "" {
		if *playerID == "" {
			log.Fatal("开启鉴权时必须指定 -id")
		}
		var err error
		token, err = auth.NewVerifier(*secret, *issuer).Issue(*playerID, *name, time.Hour)
		if err != nil {
			log.Fatalf("签发身份令牌失败: %v", err)
		}
	}

	c := client.NewClient(fmt.Sprintf("ws://%s/ws", *serverAddr))
	c.OnReconnecting = func(attempt, maxAttempts int) {
		fmt.Println(infoStyle.Render(fmt.Sprintf("🔄 连接断开，正在重连 (%d/%d)...", attempt, maxAttempts)))
	}
	c.OnReconnect = func() {
		fmt.Println(infoStyle.Render("✅ 重连成功"))
	}
	if err := c.Connect(); err != nil {
		log.Fatalf("连接服务器失败: %v", err)
	}
	defer c.Close()
	c.StartHeartbeat()

	t := &table{c: c, state: client.NewTableState(), bet: *bet}
	if err := t.play(*playerID, *name, token, *game, *rounds); err != nil {
		fmt.Println(loseStyle.Render("❌ " + err.Error()))
		c.Close()
		os.Exit(1)
	}
}

// table 单人自动对局
type table struct {
	c     *client.Client
	state *client.TableState
	bet   int64
}

// errServer 服务器返回的错误
type errServer struct {
	payload *protocol.ErrorPayload
}

func (e errServer) Error() string {
	return fmt.Sprintf("%s: %s", e.payload.Code, e.payload.Message)
}

func (t *table) play(playerID, name, token, game string, rounds int) error {
	if _, err := t.until(protocol.MsgConnected); err != nil {
		return err
	}
	if err := t.c.Authenticate(playerID, name, token); err != nil {
		return err
	}
	if _, err := t.until(protocol.MsgAuthenticated); err != nil {
		return err
	}

	if err := t.c.CreateRoom(protocol.CreateRoomPayload{Game: game}); err != nil {
		return err
	}
	if _, err := t.until(protocol.MsgRoomCreated); err != nil {
		return err
	}

	for i := range rounds {
		fmt.Println(titleStyle.Render(fmt.Sprintf("═══ 第 %d 局 ═══", i+1)))
		if err := t.round(game); err != nil {
			return err
		}
	}

	if err := t.c.GetHistory("", rounds); err != nil {
		return err
	}
	if _, err := t.until(protocol.MsgHistory); err != nil {
		return err
	}
	if err := t.c.GetStats(); err != nil {
		return err
	}
	if _, err := t.until(protocol.MsgStats); err != nil {
		return err
	}
	return nil
}

// round 下注并打完一局，等待房间重置
func (t *table) round(game string) error {
	betType := "main"
	if game == "dice" {
		betType = "big"
	}
	if err := t.c.PlaceBet(betType, t.bet); err != nil {
		return err
	}
	if _, err := t.until(protocol.MsgBetPlaced); err != nil {
		return err
	}
	if game == "dice" {
		if err := t.c.StartRound(); err != nil {
			return err
		}
	}
	if _, err := t.until(protocol.MsgGameComplete); err != nil {
		return err
	}
	_, err := t.until(protocol.MsgRoomReset)
	return err
}

// until 处理消息直到收到指定类型；轮到自己时自动行动
func (t *table) until(msgType protocol.MessageType) (*protocol.Message, error) {
	deadline := time.Now().Add(waitTimeout)
	for {
		msg, err := t.c.ReceiveWithTimeout(time.Until(deadline))
		if err != nil {
			return nil, err
		}
		t.state.Apply(msg)
		render(t.state, msg)

		if msg.Type == protocol.MsgError {
			payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
			if err != nil {
				return nil, err
			}
			return nil, errServer{payload: payload}
		}
		if err := t.act(msg); err != nil {
			return nil, err
		}
		if msg.Type == msgType {
			return msg, nil
		}
	}
}

// act 轮到自己或自己拿到新牌时决定下一步
func (t *table) act(msg *protocol.Message) error {
	switch msg.Type {
	case protocol.MsgNextPlayer:
	case protocol.MsgCardDealt:
		payload, err := codec.ParsePayload[protocol.CardDealtPayload](msg)
		if err != nil || payload.PlayerID != t.state.PlayerID {
			return nil
		}
	default:
		return nil
	}
	if !t.state.IsMyTurn() {
		return nil
	}

	hand := t.state.Hand
	chance := t.state.CardCounter.BustChance(hand.Value)
	switch {
	case len(hand.Cards) == 2 && hand.Value >= 9 && hand.Value <= 11 && t.state.Balance >= t.bet:
		fmt.Println(infoStyle.Render("➡️ 加倍"))
		return t.c.DoubleDown()
	case hand.Value < 17 && chance < hitThreshold:
		fmt.Println(infoStyle.Render(fmt.Sprintf("➡️ 要牌（爆牌概率 %.0f%%）", chance*100)))
		return t.c.Hit()
	default:
		fmt.Println(infoStyle.Render("➡️ 停牌"))
		return t.c.Stand()
	}
}

func render(state *client.TableState, msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgAuthenticated:
		fmt.Println(boxStyle.Render(fmt.Sprintf("🎰 %s  余额 %d", state.PlayerID, state.Balance)))
	case protocol.MsgRoomCreated, protocol.MsgRoomJoined:
		if state.Room != nil {
			fmt.Println(infoStyle.Render(fmt.Sprintf("🏠 房间 %s (%s) 限注 %d-%d",
				state.Room.ID, state.Room.Game, state.Room.MinBet, state.Room.MaxBet)))
		}
	case protocol.MsgBetPlaced:
		fmt.Println(infoStyle.Render(fmt.Sprintf("💰 已下注，余额 %d", state.Balance)))
	case protocol.MsgCardDealt, protocol.MsgPlayerDoubledDown, protocol.MsgPlayerStood:
		if len(state.Hand.Cards) > 0 {
			fmt.Printf("🃏 手牌 %s = %s\n", renderCards(state.Hand.Cards), handValue(state.Hand))
		}
	case protocol.MsgDealerTurn:
		fmt.Printf("🎩 庄家 %s = %s\n", renderCards(state.Dealer.Cards), handValue(state.Dealer))
	case protocol.MsgDiceRolled:
		if state.LastRoll != nil {
			line := fmt.Sprintf("🎲 %v = %d", state.LastRoll.Dice, state.LastRoll.Total)
			if state.LastRoll.Triple {
				line += " 围骰"
			}
			fmt.Println(line)
		}
	case protocol.MsgGameComplete:
		if r := state.LastResult; r != nil {
			style := loseStyle
			if r.Net > 0 {
				style = winStyle
			}
			fmt.Println(style.Render(fmt.Sprintf("结算 %+d，余额 %d", r.Net, r.Balance)))
		}
	case protocol.MsgStats:
		if s, err := codec.ParsePayload[protocol.StatsPayload](msg); err == nil {
			fmt.Println(boxStyle.Render(fmt.Sprintf("📊 %s\n对局 %d  胜 %d  负 %d\n下注 %d  赢得 %d",
				s.PlayerName, s.GamesPlayed, s.GamesWon, s.GamesLost, s.TotalBet, s.TotalWon)))
		}
	case protocol.MsgHistory:
		if h, err := codec.ParsePayload[protocol.HistoryPayload](msg); err == nil {
			lines := make([]string, 0, len(h.Rounds))
			for _, r := range h.Rounds {
				lines = append(lines, fmt.Sprintf("第 %d 局  %+d", r.Number, r.Payouts[state.PlayerID]))
			}
			fmt.Println(infoStyle.Render("📜 " + strings.Join(lines, " | ")))
		}
	case protocol.MsgError:
		if e, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			fmt.Println(loseStyle.Render(fmt.Sprintf("⚠️ %s: %s", e.Code, e.Message)))
		}
	}
}

// handValue 软牌显示为 "软 17"
func handValue(h protocol.HandInfo) string {
	if h.IsSoft {
		return fmt.Sprintf("软 %d", h.Value)
	}
	return fmt.Sprint(h.Value)
}

func renderCards(cards []protocol.CardInfo) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		switch {
		case c.Hidden:
			parts = append(parts, hiddenCard.Render("??"))
		case c.Suit == "hearts" || c.Suit == "diamonds":
			parts = append(parts, redCard.Render(c.Rank+suitSymbols[c.Suit]))
		default:
			parts = append(parts, blackCard.Render(c.Rank+suitSymbols[c.Suit]))
		}
	}
	return strings.Join(parts, " ")
}
