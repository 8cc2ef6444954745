package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/pkg/application"
	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
)

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// SchemaVersion is the version of the tool argument and result shapes.
const SchemaVersion = "1.0.0"

// Decomposer is the service behind the tools.
type Decomposer interface {
	GetSubtasks(ctx context.Context, description string) ([]task.Subtask, error)
	GetOverallStructure(ctx context.Context, selected []task.Subtask) ([]task.StructureStep, error)
}

type Server struct {
	mcpServer *mcp.Server
	svc       Decomposer
	logger    *zap.Logger
}

func NewServer(svc Decomposer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	info := mcp.ServerInfo{
		Name:    "taskforce",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Taskforce MCP Server"),
			mcp.WithDescription("Taskforce breaks a task description into estimated subtasks and builds a step-by-step plan from a selection of them."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Call taskforce_get_subtasks with a task description, pick the subtasks you want, then pass them to taskforce_get_overall_structure."),
		),
		svc:    svc,
		logger: logger,
	}

	s.registerTools()
	s.registerSchemaResource()
	return s
}

type GetSubtasksArgs struct {
	Description string `json:"description" jsonschema:"description=The task to break down into subtasks"`
}

type GetOverallStructureArgs struct {
	SelectedSubtasks []task.Subtask `json:"selected_subtasks" jsonschema:"description=The subtasks to organize into a plan"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("taskforce_get_subtasks").
		Description("Break a task description into subtasks with time estimates").
		Handler(s.handleGetSubtasks)

	s.mcpServer.Tool("taskforce_get_overall_structure").
		Description("Build an overall step-by-step structure for the selected subtasks").
		Handler(s.handleGetOverallStructure)
}

func (s *Server) handleGetSubtasks(ctx context.Context, args GetSubtasksArgs) (any, error) {
	subtasks, err := s.svc.GetSubtasks(ctx, args.Description)
	if err != nil {
		return nil, s.toolErr("taskforce_get_subtasks", err)
	}
	return subtasks, nil
}

func (s *Server) handleGetOverallStructure(ctx context.Context, args GetOverallStructureArgs) (any, error) {
	steps, err := s.svc.GetOverallStructure(ctx, args.SelectedSubtasks)
	if err != nil {
		return nil, s.toolErr("taskforce_get_overall_structure", err)
	}
	return steps, nil
}

// toolErr keeps messages meant for users and hides anything else.
func (s *Server) toolErr(tool string, err error) error {
	s.logger.Warn("tool failed", zap.String("tool", tool), zap.Error(err))

	var limitErr *application.TokenLimitError
	var procErr *application.ProcessingError
	switch {
	case errors.As(err, &limitErr), errors.As(err, &procErr):
		return fmt.Errorf("%s", err.Error())
	case errors.Is(err, task.ErrEmptyDescription):
		return fmt.Errorf("description must not be empty")
	case errors.Is(err, task.ErrNoSubtasks):
		return fmt.Errorf("select at least one subtask")
	default:
		return fmt.Errorf("failed to process the request, check the server logs")
	}
}

type schemaResponse struct {
	SchemaVersion string   `json:"schema_version"`
	ServerVersion string   `json:"server_version"`
	Tools         []string `json:"tools"`
}

func (s *Server) registerSchemaResource() {
	s.mcpServer.Resource("taskforce://schema").
		Name("taskforce://schema").
		Description("Tool schema version").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcp.ResourceContent, error) {
			data, err := json.Marshal(schemaResponse{
				SchemaVersion: SchemaVersion,
				ServerVersion: Version,
				Tools:         []string{"taskforce_get_subtasks", "taskforce_get_overall_structure"},
			})
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{
				URI:      "taskforce://schema",
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
