package remoteworkspace

import (
	"testing"

	"github.com/BrendanGraham14/steer-sub006/internal/message"
)

func TestRestorePayloadRoundTrip(t *testing.T) {
	payload := SessionRestorePayload{
		Messages: []message.Message{
			message.NewUserMessage("msg_1", "thread_1", "", 1000, message.TextUserBlock("hi")),
		},
		ApprovedTools:        []string{"read_file", "bash"},
		ApprovedBashPatterns: []string{"git status*"},
		ActiveMessageID:      "msg_1",
	}

	data, err := MarshalRestorePayload(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := UnmarshalRestorePayload(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(got.Messages) != 1 || got.Messages[0].ID != "msg_1" {
		t.Fatalf("messages did not round trip: %+v", got.Messages)
	}
	if len(got.ApprovedTools) != 2 || got.ApprovedTools[1] != "bash" {
		t.Fatalf("approved tools did not round trip: %+v", got.ApprovedTools)
	}
	if len(got.ApprovedBashPatterns) != 1 {
		t.Fatalf("bash patterns did not round trip: %+v", got.ApprovedBashPatterns)
	}
	if got.ActiveMessageID != "msg_1" {
		t.Fatalf("active message id did not round trip: %q", got.ActiveMessageID)
	}
}
