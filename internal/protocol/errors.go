package protocol

// ErrorCode 稳定的错误码，客户端据此做分支处理
type ErrorCode string

// 错误码
const (
	ErrCodeInternal   ErrorCode = "INTERNAL"
	ErrCodeInvalidMsg ErrorCode = "INVALID_MESSAGE"
	ErrCodeRateLimit  ErrorCode = "RATE_LIMITED" // 速率限制

	// 身份
	ErrCodeNotAuthenticated     ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeAlreadyAuthenticated ErrorCode = "ALREADY_AUTHENTICATED"
	ErrCodeInvalidToken         ErrorCode = "INVALID_TOKEN"

	// 校验
	ErrCodeInvalidField       ErrorCode = "INVALID_FIELD"
	ErrCodeInvalidRoomOptions ErrorCode = "INVALID_ROOM_OPTIONS"
	ErrCodeUnsupportedGame    ErrorCode = "UNSUPPORTED_GAME"
	ErrCodeBetOutOfRange      ErrorCode = "BET_OUT_OF_RANGE"
	ErrCodeInvalidBetType     ErrorCode = "INVALID_BET_TYPE"

	// 状态
	ErrCodeAlreadyInRoom  ErrorCode = "ALREADY_IN_ROOM"
	ErrCodeNotInRoom      ErrorCode = "NOT_IN_ROOM"
	ErrCodeWrongPhase     ErrorCode = "WRONG_PHASE"
	ErrCodeNotYourTurn    ErrorCode = "NOT_YOUR_TURN"
	ErrCodeNotHost        ErrorCode = "NOT_HOST"
	ErrCodeCannotDouble   ErrorCode = "CANNOT_DOUBLE_DOWN"
	ErrCodeNoBets         ErrorCode = "NO_BETS"
	ErrCodeShoeExhausted  ErrorCode = "SHOE_EXHAUSTED"
	ErrCodeMaintenance    ErrorCode = "SERVER_MAINTENANCE" // 服务器维护中
	ErrCodeBetNotFound    ErrorCode = "BET_NOT_FOUND"
	ErrCodeRoomNotFound   ErrorCode = "ROOM_NOT_FOUND"
	ErrCodePlayerNotFound ErrorCode = "PLAYER_NOT_FOUND"

	// 容量与资金
	ErrCodeRoomFull          ErrorCode = "ROOM_FULL"
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
)

// ErrorMessages 错误码对应的默认消息
var ErrorMessages = map[ErrorCode]string{
	ErrCodeInternal:             "internal server error",
	ErrCodeInvalidMsg:           "invalid message",
	ErrCodeRateLimit:            "too many requests",
	ErrCodeNotAuthenticated:     "authenticate first",
	ErrCodeAlreadyAuthenticated: "connection is already authenticated",
	ErrCodeInvalidToken:         "identity token rejected",
	ErrCodeInvalidField:         "missing or invalid field",
	ErrCodeInvalidRoomOptions:   "invalid room options",
	ErrCodeUnsupportedGame:      "unsupported game",
	ErrCodeBetOutOfRange:        "bet outside table limits",
	ErrCodeInvalidBetType:       "invalid bet type",
	ErrCodeAlreadyInRoom:        "already seated in a room",
	ErrCodeNotInRoom:            "not in a room",
	ErrCodeWrongPhase:           "action not allowed in the current phase",
	ErrCodeNotYourTurn:          "not your turn",
	ErrCodeNotHost:              "only the host can do that",
	ErrCodeCannotDouble:         "double down needs a two-card hand",
	ErrCodeNoBets:               "no bets placed",
	ErrCodeShoeExhausted:        "shoe exhausted",
	ErrCodeMaintenance:          "server under maintenance",
	ErrCodeBetNotFound:          "bet not found",
	ErrCodeRoomNotFound:         "room not found",
	ErrCodePlayerNotFound:       "player not found",
	ErrCodeRoomFull:             "room is full",
	ErrCodeInsufficientFunds:    "insufficient balance",
}
