package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/biz/repo"
	"github.com/groupmute/groupmute/internal/biz/usecase"
)

const defaultLogLimit = 50

// MuteMCPServer exposes mute decisions and the mute log as MCP tools
type MuteMCPServer struct {
	server   *mcp.Server
	prefs    repo.PreferencesRepo
	blocking *usecase.BlockingUsecase
	muteLog  *usecase.MuteLogUsecase
}

// NewServer creates a new MCP server over the preference store
func NewServer(prefs repo.PreferencesRepo, blocking *usecase.BlockingUsecase, muteLog *usecase.MuteLogUsecase, version string) *MuteMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "groupmute",
		Version: version,
	}, nil)

	s := &MuteMCPServer{
		server:   server,
		prefs:    prefs,
		blocking: blocking,
		muteLog:  muteLog,
	}
	s.registerTools()
	return s
}

// registerTools registers all groupmute MCP tools
func (s *MuteMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_notification",
		Description: "Check whether a chat notification would be muted by the stored schedules. Does not dismiss or log anything.",
	}, s.handleEvaluate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_schedules",
		Description: "List the valid mute schedules with their window, weekdays and groups.",
	}, s.handleListSchedules)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_mute_logs",
		Description: "List recently muted notifications, newest first.",
	}, s.handleListMuteLogs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_muted_groups",
		Description: "List the legacy muted group selection.",
	}, s.handleListMutedGroups)
}

// EvaluateInput is the input for evaluate_notification
type EvaluateInput struct {
	PackageName string `json:"package_name" jsonschema:"the posting app package, e.g. com.whatsapp"`
	Title       string `json:"title" jsonschema:"the notification title"`
	At          string `json:"at,omitempty" jsonschema:"RFC3339 time to evaluate at, defaults to now"`
}

// EvaluateOutput is the output for evaluate_notification
type EvaluateOutput struct {
	Blocked  bool   `json:"blocked"`
	Schedule string `json:"schedule,omitempty"`
	Group    string `json:"group,omitempty"`
	At       string `json:"at"`
}

func (s *MuteMCPServer) handleEvaluate(ctx context.Context, req *mcp.CallToolRequest, input EvaluateInput) (*mcp.CallToolResult, EvaluateOutput, error) {
	at := s.blocking.Now()
	if input.At != "" {
		parsed, err := time.Parse(time.RFC3339, input.At)
		if err != nil {
			return nil, EvaluateOutput{}, fmt.Errorf("at must be RFC3339: %w", err)
		}
		at = parsed.In(s.blocking.Location())
	}

	decision := s.blocking.Evaluate(ctx, input.PackageName, input.Title, at)
	return nil, EvaluateOutput{
		Blocked:  decision.Blocked,
		Schedule: decision.Schedule,
		Group:    decision.Group,
		At:       at.Format(time.RFC3339),
	}, nil
}

// ListSchedulesInput is the input for list_schedules
type ListSchedulesInput struct{}

// ScheduleInfo summarizes one schedule
type ScheduleInfo struct {
	Name    string   `json:"name"`
	Window  string   `json:"window"`
	Days    []int    `json:"days"`
	Groups  []string `json:"groups"`
	Enabled bool     `json:"enabled"`
}

// ListSchedulesOutput is the output for list_schedules
type ListSchedulesOutput struct {
	Schedules []ScheduleInfo `json:"schedules"`
}

func (s *MuteMCPServer) handleListSchedules(ctx context.Context, req *mcp.CallToolRequest, input ListSchedulesInput) (*mcp.CallToolResult, ListSchedulesOutput, error) {
	schedules, err := s.prefs.ListSchedules(ctx)
	if err != nil {
		return nil, ListSchedulesOutput{}, err
	}

	out := ListSchedulesOutput{Schedules: make([]ScheduleInfo, 0, len(schedules))}
	for _, sc := range schedules {
		out.Schedules = append(out.Schedules, ScheduleInfo{
			Name:    sc.Name,
			Window:  sc.FormatWindow(),
			Days:    sc.Days,
			Groups:  sc.Groups,
			Enabled: sc.Enabled,
		})
	}
	return nil, out, nil
}

// ListMuteLogsInput is the input for list_mute_logs
type ListMuteLogsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries to return (default 50)"`
}

// ListMuteLogsOutput is the output for list_mute_logs
type ListMuteLogsOutput struct {
	Entries []domain.MuteLogEntry `json:"entries"`
	Total   int                   `json:"total"`
}

func (s *MuteMCPServer) handleListMuteLogs(ctx context.Context, req *mcp.CallToolRequest, input ListMuteLogsInput) (*mcp.CallToolResult, ListMuteLogsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}

	entries, err := s.muteLog.List(ctx, limit)
	if err != nil {
		return nil, ListMuteLogsOutput{}, err
	}
	if entries == nil {
		entries = []domain.MuteLogEntry{}
	}
	return nil, ListMuteLogsOutput{Entries: entries, Total: len(entries)}, nil
}

// ListMutedGroupsInput is the input for list_muted_groups
type ListMutedGroupsInput struct{}

// ListMutedGroupsOutput is the output for list_muted_groups
type ListMutedGroupsOutput struct {
	Groups []string `json:"groups"`
}

func (s *MuteMCPServer) handleListMutedGroups(ctx context.Context, req *mcp.CallToolRequest, input ListMutedGroupsInput) (*mcp.CallToolResult, ListMutedGroupsOutput, error) {
	groups, err := s.prefs.MutedGroups(ctx)
	if err != nil {
		return nil, ListMutedGroupsOutput{}, err
	}
	if groups == nil {
		groups = []string{}
	}
	return nil, ListMutedGroupsOutput{Groups: groups}, nil
}

// Run starts the MCP server with stdio transport
func (s *MuteMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *MuteMCPServer) GetServer() *mcp.Server {
	return s.server
}
