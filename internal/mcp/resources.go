// ABOUTME: MCP resource implementations for the weight-cut engine.
// ABOUTME: Provides cut://today and cut://plan snapshots for coaching clients.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	todayURI = "cut://today"
	planURI  = "cut://plan"
)

func (s *Server) registerResources() {
	// cut://today - status, targets, and intake for the resolved date
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Cut Status",
		Description: "Phase, targets, projection, safety, and logged intake for today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// cut://plan - the seven-day plan
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         planURI,
		Name:        "Weekly Plan",
		Description: "Seven-day plan around the weigh-in with daily targets",
		MIMEType:    "application/json",
	}, s.handlePlanResource)
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	status, err := s.svc.Status()
	if err != nil {
		return nil, err
	}
	targets, err := s.svc.Targets(status.Date)
	if err != nil {
		return nil, err
	}

	result := map[string]any{
		"date":     status.Date.Format("2006-01-02"),
		"status":   status,
		"targets":  targets,
		"tracking": s.svc.Tracking(status.Date),
		"recent":   s.svc.Logs(nil, 5),
	}
	return jsonResource(todayURI, result)
}

func (s *Server) handlePlanResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	plan, err := s.svc.Plan()
	if err != nil {
		return nil, err
	}
	return jsonResource(planURI, map[string]any{"plan": plan})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
