package log

import (
	"encoding/json"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
	"github.com/BrendanGraham14/steer-sub006/internal/provider"
)

type messageMarshaler message.Message

func (m messageMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("role", string(m.Role))
	enc.AddString("text", message.Message(m).TextContent())
	if m.ToolResult != nil {
		_ = enc.AddObject("tool_result", toolResultMarshaler(*m.ToolResult))
	}
	return nil
}

type messagesMarshaler []message.Message

func (m messagesMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, msg := range m {
		_ = enc.AppendObject(messageMarshaler(msg))
	}
	return nil
}

// MessagesField creates a zap field for a message slice.
func MessagesField(messages []message.Message) zap.Field {
	return zap.Array("messages", messagesMarshaler(messages))
}

type toolMarshaler provider.Tool

func (t toolMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", t.Name)
	enc.AddString("description", t.Description)
	if t.Parameters != nil {
		if paramsJSON, err := json.Marshal(t.Parameters); err == nil {
			enc.AddString("parameters", string(paramsJSON))
		}
	}
	return nil
}

type toolsMarshaler []provider.Tool

func (t toolsMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, tool := range t {
		_ = enc.AppendObject(toolMarshaler(tool))
	}
	return nil
}

// ToolsField creates a zap field for a tool slice.
func ToolsField(tools []provider.Tool) zap.Field {
	return zap.Array("tools", toolsMarshaler(tools))
}

type toolResultMarshaler message.ToolResult

func (tr toolResultMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("tool_use_id", tr.ToolUseID)
	enc.AddBool("is_error", tr.IsError())
	if tr.IsError() {
		enc.AddString("error", tr.Err.Error())
	} else {
		enc.AddString("output", tr.Output)
	}
	return nil
}

type usageMarshaler provider.Usage

func (u usageMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("input_tokens", u.InputTokens)
	enc.AddInt("output_tokens", u.OutputTokens)
	return nil
}

// UsageField creates a zap field for token usage.
func UsageField(usage provider.Usage) zap.Field {
	return zap.Object("usage", usageMarshaler(usage))
}
