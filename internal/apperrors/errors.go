package apperrors

import (
	"errors"
	"fmt"

	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

// Kind 错误分类，决定客户端如何呈现
type Kind string

const (
	KindValidation Kind = "validation" // 输入非法或越界
	KindState      Kind = "state"      // 当前阶段不允许或未轮到
	KindResource   Kind = "resource"   // 房间/玩家不存在
	KindCapacity   Kind = "capacity"   // 房间已满
	KindFunds      Kind = "funds"      // 余额不足
	KindInternal   Kind = "internal"
)

// GameError 游戏错误（房间和会话共享），只发给请求方，不改变房间状态
type GameError struct {
	Kind    Kind
	Code    protocol.ErrorCode
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is 按错误码比较，格式化过消息的错误仍能匹配预定义错误
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建错误
func New(kind Kind, code protocol.ErrorCode, message string) *GameError {
	return &GameError{Kind: kind, Code: code, Message: message}
}

// Wrapf 基于预定义错误生成带上下文的消息
func Wrapf(base *GameError, format string, args ...any) *GameError {
	return &GameError{Kind: base.Kind, Code: base.Code, Message: fmt.Sprintf(format, args...)}
}

// KindOf 返回错误分类，非 GameError 视为内部错误
func KindOf(err error) Kind {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}

// registry 错误码 → 预定义错误
var registry = map[protocol.ErrorCode]*GameError{}

func newErr(kind Kind, code protocol.ErrorCode) *GameError {
	e := &GameError{Kind: kind, Code: code, Message: protocol.ErrorMessages[code]}
	registry[code] = e
	return e
}

// Lookup 按错误码查找预定义错误
func Lookup(code protocol.ErrorCode) (*GameError, bool) {
	e, ok := registry[code]
	return e, ok
}

// 预定义错误
var (
	ErrInvalidMessage     = newErr(KindValidation, protocol.ErrCodeInvalidMsg)
	ErrInvalidField       = newErr(KindValidation, protocol.ErrCodeInvalidField)
	ErrInvalidRoomOptions = newErr(KindValidation, protocol.ErrCodeInvalidRoomOptions)
	ErrUnsupportedGame    = newErr(KindValidation, protocol.ErrCodeUnsupportedGame)
	ErrBetOutOfRange      = newErr(KindValidation, protocol.ErrCodeBetOutOfRange)
	ErrInvalidBetType     = newErr(KindValidation, protocol.ErrCodeInvalidBetType)
	ErrInvalidToken       = newErr(KindValidation, protocol.ErrCodeInvalidToken)

	ErrNotAuthenticated     = newErr(KindState, protocol.ErrCodeNotAuthenticated)
	ErrAlreadyAuthenticated = newErr(KindState, protocol.ErrCodeAlreadyAuthenticated)
	ErrAlreadyInRoom        = newErr(KindState, protocol.ErrCodeAlreadyInRoom)
	ErrNotInRoom            = newErr(KindState, protocol.ErrCodeNotInRoom)
	ErrWrongPhase           = newErr(KindState, protocol.ErrCodeWrongPhase)
	ErrNotYourTurn          = newErr(KindState, protocol.ErrCodeNotYourTurn)
	ErrNotHost              = newErr(KindState, protocol.ErrCodeNotHost)
	ErrCannotDouble         = newErr(KindState, protocol.ErrCodeCannotDouble)
	ErrNoBets               = newErr(KindState, protocol.ErrCodeNoBets)
	ErrShoeExhausted        = newErr(KindState, protocol.ErrCodeShoeExhausted)
	ErrMaintenance          = newErr(KindState, protocol.ErrCodeMaintenance)
	ErrRateLimited          = newErr(KindState, protocol.ErrCodeRateLimit)

	ErrRoomNotFound   = newErr(KindResource, protocol.ErrCodeRoomNotFound)
	ErrPlayerNotFound = newErr(KindResource, protocol.ErrCodePlayerNotFound)
	ErrBetNotFound    = newErr(KindResource, protocol.ErrCodeBetNotFound)

	ErrRoomFull = newErr(KindCapacity, protocol.ErrCodeRoomFull)

	ErrInsufficientFunds = newErr(KindFunds, protocol.ErrCodeInsufficientFunds)
)
