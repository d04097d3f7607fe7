package remoteworkspace

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// cancelGraceTimeout bounds the best-effort CancelExecution call fired
// when the caller's context is cancelled mid-ExecuteTool.
const cancelGraceTimeout = 3 * time.Second

// Client is the engine-side handle to a remote workspace's gRPC
// service. It wraps a plain *grpc.ClientConn rather than a generated
// stub: every call is a manual conn.Invoke/NewStream against
// ServiceDesc's method set (see DESIGN.md for why there is no
// protoc-generated client here).
type Client struct {
	conn *grpc.ClientConn
}

// NewClient wraps an already-dialed connection. Dialing (TLS, auth,
// retries) is the caller's concern; Client only speaks the protocol.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/"+method, in, out); err != nil {
		return err
	}
	if resp != nil {
		return fromStruct(out, resp)
	}
	return nil
}

func (c *Client) GetToolSchemas(ctx context.Context) ([]ToolSchema, error) {
	var resp struct {
		Tools []ToolSchema `json:"tools"`
	}
	if err := c.invoke(ctx, "GetToolSchemas", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// ExecuteTool calls ExecuteTool and applies the cancellation
// drop-guard from spec.md §6: a unique cancel token accompanies the
// request, and if ctx is cancelled while the call is outstanding, a
// best-effort CancelExecution fires on a short-lived background
// context so the server can drop the in-flight execution rather than
// run it to completion after the client has stopped listening.
func (c *Client) ExecuteTool(ctx context.Context, req ExecuteToolRequest) (*ExecuteToolResult, error) {
	req.CancelToken = uuid.NewString()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelCtx, cancel := context.WithTimeout(context.Background(), cancelGraceTimeout)
			defer cancel()
			_ = c.invoke(cancelCtx, "CancelExecution", struct {
				CancelToken string `json:"cancel_token"`
			}{CancelToken: req.CancelToken}, nil)
		case <-done:
		}
	}()

	var resp ExecuteToolResult
	if err := c.invoke(ctx, "ExecuteTool", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetToolApprovalRequirements(ctx context.Context, toolNames []string) (map[string]bool, error) {
	var resp struct {
		Requirements map[string]bool `json:"requirements"`
	}
	req := struct {
		ToolNames []string `json:"tool_names"`
	}{ToolNames: toolNames}
	if err := c.invoke(ctx, "GetToolApprovalRequirements", req, &resp); err != nil {
		return nil, err
	}
	return resp.Requirements, nil
}

func (c *Client) GetEnvironmentInfo(ctx context.Context, workingDirectory string) (*EnvironmentInfo, error) {
	var resp EnvironmentInfo
	req := struct {
		WorkingDirectory string `json:"working_directory,omitempty"`
	}{WorkingDirectory: workingDirectory}
	if err := c.invoke(ctx, "GetEnvironmentInfo", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.invoke(ctx, "Health", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetAgentInfo(ctx context.Context) (*AgentInfo, error) {
	var resp AgentInfo
	if err := c.invoke(ctx, "GetAgentInfo", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListFiles streams the matching paths to onChunk, up to
// listFilesChunkSize entries per call, until the server closes the
// stream.
func (c *Client) ListFiles(ctx context.Context, query string, maxResults int, onChunk func(paths []string) error) error {
	desc := &grpc.StreamDesc{StreamName: "ListFiles", ServerStreams: true}
	stream, err := c.conn.NewStream(ctx, desc, "/"+serviceName+"/ListFiles")
	if err != nil {
		return err
	}

	in, err := toStruct(listFilesRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return err
	}
	if err := stream.SendMsg(in); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		out := new(structpb.Struct)
		if err := stream.RecvMsg(out); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		var chunk listFilesChunk
		if err := fromStruct(out, &chunk); err != nil {
			return err
		}
		if err := onChunk(chunk.Paths); err != nil {
			return err
		}
	}
}
