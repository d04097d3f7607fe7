package remoteworkspace

import "testing"

func TestStructRoundTrip(t *testing.T) {
	req := ExecuteToolRequest{
		ToolCallID:  "call_1",
		ToolName:    "read_file",
		Parameters:  []byte(`{"path":"a.go"}`),
		CancelToken: "tok",
	}

	s, err := toStruct(req)
	if err != nil {
		t.Fatalf("toStruct: %v", err)
	}

	var got ExecuteToolRequest
	if err := fromStruct(s, &got); err != nil {
		t.Fatalf("fromStruct: %v", err)
	}
	if got.ToolCallID != req.ToolCallID || got.ToolName != req.ToolName || got.CancelToken != req.CancelToken {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
	if string(got.Parameters) != `{"path":"a.go"}` {
		t.Fatalf("unexpected parameters round trip: %s", got.Parameters)
	}
}

func TestFromStructNilIsNoop(t *testing.T) {
	var out ExecuteToolResult
	if err := fromStruct(nil, &out); err != nil {
		t.Fatalf("expected nil struct to be a no-op, got %v", err)
	}
}
