package remoteworkspace

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// serviceName is the fully qualified gRPC service name the client and
// server agree on; there is no .proto file behind it (see DESIGN.md),
// so it is declared here rather than generated.
const serviceName = "steercore.remoteworkspace.v1.RemoteWorkspace"

// Server is what a remote workspace implements to serve the wire
// protocol. The engine only ever holds the Client side (below); Server
// exists so the same contract can be exercised in-process in tests
// without a real listener.
type Server interface {
	GetToolSchemas(ctx context.Context) ([]ToolSchema, error)
	ExecuteTool(ctx context.Context, req ExecuteToolRequest) (*ExecuteToolResult, error)
	CancelExecution(ctx context.Context, cancelToken string) error
	GetToolApprovalRequirements(ctx context.Context, toolNames []string) (map[string]bool, error)
	GetEnvironmentInfo(ctx context.Context, workingDirectory string) (*EnvironmentInfo, error)
	ListFiles(ctx context.Context, query string, maxResults int, send func(paths []string) error) error
	Health(ctx context.Context) (*HealthStatus, error)
	GetAgentInfo(ctx context.Context) (*AgentInfo, error)
}

// ServiceDesc registers Server against a *grpc.Server. Every unary
// method is carried as a structpb.Struct envelope (see wire.go)
// instead of a per-method generated message type.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetToolSchemas", Handler: unaryHandler(handleGetToolSchemas)},
		{MethodName: "ExecuteTool", Handler: unaryHandler(handleExecuteTool)},
		{MethodName: "CancelExecution", Handler: unaryHandler(handleCancelExecution)},
		{MethodName: "GetToolApprovalRequirements", Handler: unaryHandler(handleGetToolApprovalRequirements)},
		{MethodName: "GetEnvironmentInfo", Handler: unaryHandler(handleGetEnvironmentInfo)},
		{MethodName: "Health", Handler: unaryHandler(handleHealth)},
		{MethodName: "GetAgentInfo", Handler: unaryHandler(handleGetAgentInfo)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ListFiles", Handler: handleListFiles, ServerStreams: true},
	},
	Metadata: "internal/remoteworkspace",
}

// RegisterServer wires srv into s under ServiceDesc.
func RegisterServer(s *grpc.Server, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler adapts a (Server, *structpb.Struct) call into the
// grpc.methodHandler shape every grpc.MethodDesc needs, running the
// registered interceptor chain like generated code does.
func unaryHandler(call func(Server, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(Server)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func handleGetToolSchemas(s Server, ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	schemas, err := s.GetToolSchemas(ctx)
	if err != nil {
		return nil, err
	}
	return toStruct(struct {
		Tools []ToolSchema `json:"tools"`
	}{Tools: schemas})
}

func handleExecuteTool(s Server, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ExecuteToolRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	res, err := s.ExecuteTool(ctx, req)
	if err != nil {
		return nil, err
	}
	return toStruct(res)
}

func handleCancelExecution(s Server, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		CancelToken string `json:"cancel_token"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	if err := s.CancelExecution(ctx, req.CancelToken); err != nil {
		return nil, err
	}
	return toStruct(struct{}{})
}

func handleGetToolApprovalRequirements(s Server, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		ToolNames []string `json:"tool_names"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	reqs, err := s.GetToolApprovalRequirements(ctx, req.ToolNames)
	if err != nil {
		return nil, err
	}
	return toStruct(struct {
		Requirements map[string]bool `json:"requirements"`
	}{Requirements: reqs})
}

func handleGetEnvironmentInfo(s Server, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		WorkingDirectory string `json:"working_directory,omitempty"`
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	info, err := s.GetEnvironmentInfo(ctx, req.WorkingDirectory)
	if err != nil {
		return nil, err
	}
	return toStruct(info)
}

func handleHealth(s Server, ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	status, err := s.Health(ctx)
	if err != nil {
		return nil, err
	}
	return toStruct(status)
}

func handleGetAgentInfo(s Server, ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	info, err := s.GetAgentInfo(ctx)
	if err != nil {
		return nil, err
	}
	return toStruct(info)
}

// handleListFiles streams paths in chunks of up to listFilesChunkSize
// (spec.md §6), reusing the same structpb envelope as the unary calls.
func handleListFiles(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	var req listFilesRequest
	if err := fromStruct(in, &req); err != nil {
		return err
	}
	s := srv.(Server)
	return s.ListFiles(stream.Context(), req.Query, req.MaxResults, func(paths []string) error {
		for len(paths) > 0 {
			n := min(len(paths), listFilesChunkSize)
			out, err := toStruct(listFilesChunk{Paths: paths[:n]})
			if err != nil {
				return err
			}
			if err := stream.SendMsg(out); err != nil {
				return err
			}
			paths = paths[n:]
		}
		return nil
	})
}
