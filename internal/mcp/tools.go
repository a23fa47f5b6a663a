// ABOUTME: MCP tool implementations for the weight-cut engine.
// ABOUTME: Exposes phase, targets, plan, analytics, and weigh-in logging.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/makeweight/internal/analytics"
	"github.com/harperreed/makeweight/internal/engine"
	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/service"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "classify_phase",
		Description: "Classify the cut phase for a number of days until weigh-in (defaults to today)",
	}, s.handleClassifyPhase)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_targets",
		Description: "Get weight, hydration, and macro targets for a date (defaults to today)",
	}, s.handleGetTargets)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "weekly_plan",
		Description: "Get the seven-day plan around the weigh-in",
	}, s.handleWeeklyPlan)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_rates",
		Description: "Get average overnight drift and practice sweat loss from the weigh-in history",
	}, s.handleGetRates)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "project_weigh_in",
		Description: "Project weigh-in weight from current weight and historical loss rates",
	}, s.handleProjectWeighIn)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "assess_safety",
		Description: "Assess whether the remaining cut is safe for the days left",
	}, s.handleAssessSafety)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_weight",
		Description: "Record a weigh-in (morning, pre_session, post_session, before_bed, extra_before, extra_after, check_in)",
	}, s.handleLogWeight)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_logs",
		Description: "List recent weigh-ins, optionally filtered by measurement type",
	}, s.handleListLogs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_log",
		Description: "Delete a weigh-in by ID or ID prefix",
	}, s.handleDeleteLog)
}

// Tool input/output types

type classifyPhaseInput struct {
	DaysUntil *int   `json:"days_until,omitempty" jsonschema:"Days until weigh-in; negative means after. Defaults to the profile's value for today"`
	Protocol  string `json:"protocol,omitempty" jsonschema:"Protocol: extreme, rapid, hold, build, portion. Defaults to the profile's protocol"`
}

type phaseOutput struct {
	DaysUntil int          `json:"days_until"`
	Protocol  string       `json:"protocol"`
	Phase     string       `json:"phase"`
	Style     engine.Style `json:"style"`
	Message   string       `json:"message"`
}

type getTargetsInput struct {
	Date string `json:"date,omitempty" jsonschema:"Calendar date YYYY-MM-DD, defaults to today"`
}

type emptyInput struct{}

type projectInput struct {
	CurrentWeight *float64 `json:"current_weight,omitempty" jsonschema:"Current weight in lbs, defaults to the newest weigh-in"`
	DaysUntil     *int     `json:"days_until,omitempty" jsonschema:"Days until weigh-in, defaults to today's value"`
}

type projectOutput struct {
	CurrentWeight *float64        `json:"current_weight"`
	DaysUntil     int             `json:"days_until"`
	Projected     *float64        `json:"projected"`
	Rates         analytics.Rates `json:"rates"`
	Message       string          `json:"message"`
}

type safetyInput struct {
	CurrentWeight *float64 `json:"current_weight,omitempty" jsonschema:"Current weight in lbs, defaults to the newest weigh-in"`
	TargetWeight  *float64 `json:"target_weight,omitempty" jsonschema:"Target weight in lbs, defaults to today's target"`
	DaysUntil     *int     `json:"days_until,omitempty" jsonschema:"Days until weigh-in, defaults to today's value"`
}

type safetyOutput struct {
	Level      string  `json:"level"`
	Message    string  `json:"message"`
	Delta      float64 `json:"delta"`
	CutPercent float64 `json:"cut_percent"`
	DaysUntil  int     `json:"days_until"`
}

type logWeightInput struct {
	Type            string  `json:"type" jsonschema:"Measurement type (morning, pre_session, post_session, before_bed, extra_before, extra_after, check_in)"`
	Weight          float64 `json:"weight" jsonschema:"Weight in lbs"`
	RecordedAt      string  `json:"recorded_at,omitempty" jsonschema:"Timestamp (RFC 3339 or YYYY-MM-DD HH:MM), defaults to now"`
	DurationMinutes int     `json:"duration_minutes,omitempty" jsonschema:"Practice length in minutes for post-session entries"`
	Notes           string  `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type logOutput struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Weight  float64 `json:"weight"`
	Message string  `json:"message"`
}

type listLogsInput struct {
	Type  string `json:"type,omitempty" jsonschema:"Filter by measurement type"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type deleteLogInput struct {
	ID string `json:"id" jsonschema:"Weigh-in ID or prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleClassifyPhase(ctx context.Context, req *mcp.CallToolRequest, input classifyPhaseInput) (*mcp.CallToolResult, phaseOutput, error) {
	var protocol models.Protocol
	var days int

	p, profileErr := s.svc.Profile()
	if profileErr == nil {
		protocol = p.Protocol
		days = engine.DaysUntilWeighIn(p, s.svc.Today())
	}

	if input.Protocol != "" {
		parsed, err := models.ParseProtocol(input.Protocol)
		if err != nil {
			return nil, phaseOutput{}, err
		}
		protocol = parsed
	}
	if input.DaysUntil != nil {
		days = *input.DaysUntil
	}
	if profileErr != nil && (input.Protocol == "" || input.DaysUntil == nil) {
		return nil, phaseOutput{}, fmt.Errorf("days_until and protocol are required without a profile: %w", profileErr)
	}

	phase := engine.ClassifyPhase(days, protocol)
	return nil, phaseOutput{
		DaysUntil: days,
		Protocol:  protocol.String(),
		Phase:     string(phase),
		Style:     phase.Style(),
		Message:   fmt.Sprintf("%d days out on %s: %s", days, protocol, phase),
	}, nil
}

func (s *Server) handleGetTargets(ctx context.Context, req *mcp.CallToolRequest, input getTargetsInput) (*mcp.CallToolResult, any, error) {
	var date time.Time
	if input.Date != "" {
		d, err := time.ParseInLocation(models.DateLayout, input.Date, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", input.Date)
		}
		date = d
	}

	tg, err := s.svc.Targets(date)
	if err != nil {
		return nil, nil, err
	}
	return nil, tg, nil
}

func (s *Server) handleWeeklyPlan(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	plan, err := s.svc.Plan()
	if err != nil {
		return nil, nil, err
	}
	return nil, map[string]any{"plan": plan}, nil
}

func (s *Server) handleGetRates(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, analytics.Rates, error) {
	return nil, s.svc.Rates(), nil
}

func (s *Server) handleProjectWeighIn(ctx context.Context, req *mcp.CallToolRequest, input projectInput) (*mcp.CallToolResult, projectOutput, error) {
	current, days, err := s.currentAndDays(input.CurrentWeight, input.DaysUntil)
	if err != nil {
		return nil, projectOutput{}, err
	}

	rates := s.svc.Rates()
	out := projectOutput{
		CurrentWeight: current,
		DaysUntil:     days,
		Projected:     analytics.ProjectWeighIn(current, rates, days),
		Rates:         rates,
	}
	switch {
	case out.Projected == nil:
		out.Message = "No current weight: log a weigh-in first."
	case !rates.HasData():
		out.Message = fmt.Sprintf("No loss history yet; projection holds at %.1f lbs.", *out.Projected)
	default:
		out.Message = fmt.Sprintf("Projected weigh-in: %.1f lbs in %d days.", *out.Projected, days)
	}
	return nil, out, nil
}

func (s *Server) handleAssessSafety(ctx context.Context, req *mcp.CallToolRequest, input safetyInput) (*mcp.CallToolResult, safetyOutput, error) {
	current, days, err := s.currentAndDays(input.CurrentWeight, input.DaysUntil)
	if err != nil {
		return nil, safetyOutput{}, err
	}
	if current == nil {
		return nil, safetyOutput{}, fmt.Errorf("current_weight is required until a weigh-in is logged")
	}

	var target float64
	if input.TargetWeight != nil {
		target = *input.TargetWeight
	} else {
		tg, err := s.svc.Targets(time.Time{})
		if err != nil {
			return nil, safetyOutput{}, fmt.Errorf("target_weight is required without a profile: %w", err)
		}
		target = tg.Weight.Weight
	}

	a := analytics.AssessSafety(*current, target, days)
	return nil, safetyOutput{
		Level:      string(a.Level),
		Message:    a.Message,
		Delta:      a.Delta,
		CutPercent: a.CutPercent,
		DaysUntil:  days,
	}, nil
}

// currentAndDays fills missing inputs from the newest weigh-in and the profile.
func (s *Server) currentAndDays(weight *float64, daysUntil *int) (*float64, int, error) {
	st := s.svc.State()
	current := weight
	if current == nil {
		current = analytics.CurrentWeight(st.Profile, st.Logs)
	}

	if daysUntil != nil {
		return current, *daysUntil, nil
	}
	if st.Profile == nil {
		return nil, 0, fmt.Errorf("days_until is required without a profile: %w", service.ErrNoProfile)
	}
	return current, engine.DaysUntilWeighIn(st.Profile, s.svc.Today()), nil
}

func (s *Server) handleLogWeight(ctx context.Context, req *mcp.CallToolRequest, input logWeightInput) (*mcp.CallToolResult, logOutput, error) {
	mt, err := models.ParseMeasurementType(input.Type)
	if err != nil {
		return nil, logOutput{}, err
	}

	in := service.LogInput{
		Type:            mt,
		Weight:          input.Weight,
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
	}
	if input.RecordedAt != "" {
		t, err := models.ParseTimestamp(input.RecordedAt)
		if err != nil {
			return nil, logOutput{}, err
		}
		in.RecordedAt = t
	}

	l, err := s.svc.LogWeight(ctx, in)
	if err != nil {
		return nil, logOutput{}, fmt.Errorf("failed to log weight: %w", err)
	}
	s.logger.Debug("logged weight via MCP", "id", l.ShortID())

	return nil, logOutput{
		ID:      l.ShortID(),
		Type:    string(l.Type),
		Weight:  l.Weight,
		Message: fmt.Sprintf("Logged %s: %.1f lbs (ID: %s)", l.Type, l.Weight, l.ShortID()),
	}, nil
}

func (s *Server) handleListLogs(ctx context.Context, req *mcp.CallToolRequest, input listLogsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	var mt *models.MeasurementType
	if input.Type != "" {
		parsed, err := models.ParseMeasurementType(input.Type)
		if err != nil {
			return nil, nil, err
		}
		mt = &parsed
	}

	logs := s.svc.Logs(mt, input.Limit)
	if len(logs) == 0 {
		return nil, map[string]any{"message": "No weigh-ins found."}, nil
	}
	return nil, map[string]any{"logs": logs}, nil
}

func (s *Server) handleDeleteLog(ctx context.Context, req *mcp.CallToolRequest, input deleteLogInput) (*mcp.CallToolResult, simpleOutput, error) {
	l, err := s.svc.DeleteLog(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete weigh-in: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s weigh-in: %s", l.Type, l.ShortID()),
	}, nil
}
