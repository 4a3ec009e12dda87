package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
	"github.com/Uwaniumnya/crystal-social/internal/protocol"
)

// NewMessage 创建一个新消息，自动填充 id 与时间戳
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := &protocol.Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		msg.Data = data
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为 JSON 字节
func Encode(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// Encoder 会追加换行
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return append([]byte(nil), out...), nil
}

// Decode 从 JSON 字节解码消息信封
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, apperrors.Wrapf(apperrors.ErrInvalidMessage, "invalid message: %v", err)
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, apperrors.Wrapf(apperrors.ErrInvalidMessage, "message type is required")
	}
	return msg, nil
}

// ParsePayload 解析消息的 Data 到指定类型，空 Data 得到零值
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidMessage, "invalid %s data: %v", msg.Type, err)
	}
	return &payload, nil
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code protocol.ErrorCode) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code protocol.ErrorCode, text string) *protocol.Message {
	return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Kind:    string(kindForCode(code)),
		Message: text,
	})
}

// NewErrorFromError 将任意错误转换为错误消息；非 GameError 统一视为内部错误
func NewErrorFromError(err error) *protocol.Message {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		return MustNewMessage(protocol.MsgError, protocol.ErrorPayload{
			Code:    gameErr.Code,
			Kind:    string(gameErr.Kind),
			Message: gameErr.Message,
		})
	}
	return NewErrorMessage(protocol.ErrCodeInternal)
}

func kindForCode(code protocol.ErrorCode) apperrors.Kind {
	if e, ok := apperrors.Lookup(code); ok {
		return e.Kind
	}
	return apperrors.KindInternal
}
