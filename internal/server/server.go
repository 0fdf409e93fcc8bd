// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/prompts"
	"github.com/readygate/readygate/internal/report"
	"github.com/readygate/readygate/internal/resources"
	"github.com/readygate/readygate/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts, and
// resources registered. This is the single place where dependencies are
// resolved.
func New() (*server.MCPServer, error) {
	// --- Shared dependencies ---

	cfgStore := config.NewFileStore()

	renderer, err := report.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("creating report renderer: %w", err)
	}

	// --- The MCP server ---

	s := server.NewMCPServer(
		"readygate",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Session tools ---

	startTool := tools.NewSessionStartTool(cfgStore)
	s.AddTool(startTool.Definition(), startTool.Handle)

	answerTool := tools.NewSessionAnswerTool(cfgStore)
	s.AddTool(answerTool.Definition(), answerTool.Handle)

	statusTool := tools.NewSessionStatusTool(cfgStore)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	pauseTool := tools.NewSessionPauseTool(cfgStore)
	s.AddTool(pauseTool.Definition(), pauseTool.Handle)

	reportTool := tools.NewSessionReportTool(cfgStore, renderer)
	s.AddTool(reportTool.Definition(), reportTool.Handle)

	searchTool := tools.NewSessionSearchTool(cfgStore)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	// --- Rule tools ---

	evaluateTool := tools.NewRulesEvaluateTool(cfgStore, renderer)
	s.AddTool(evaluateTool.Definition(), evaluateTool.Handle)

	amendTool := tools.NewRulesAmendTool(cfgStore)
	s.AddTool(amendTool.Definition(), amendTool.Handle)

	// --- Analysis tools ---

	scanTool := tools.NewAmbiguityScanTool(cfgStore)
	s.AddTool(scanTool.Definition(), scanTool.Handle)

	// --- Prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Resources ---

	resourceHandler := resources.NewHandler(cfgStore)
	s.AddResource(resourceHandler.RulesResource(), resourceHandler.HandleRules)
	s.AddResource(resourceHandler.GlossaryResource(), resourceHandler.HandleGlossary)
	s.AddResource(resourceHandler.ActiveSessionResource(), resourceHandler.HandleActiveSession)

	return s, nil
}

// serverInstructions returns the usage guidance sent to MCP hosts.
func serverInstructions() string {
	return `readygate gates implementation behind understanding: no code until a
questioning session reaches its confidence target.

Typical flow:
1. rg_session_start — describe the unit of work; answer the 5 triage questions.
2. rg_session_answer — submit each answer; watch confidence, gaps, and new questions.
3. rg_session_status / rg_session_report — inspect progress at any time.
4. rg_rules_evaluate — before and after implementation, check the five rule
   families; blocking violations must halt work.
5. rg_rules_amend — tune rule parameters (with a rationale); the test-first
   principle and constitutional compliance cannot be amended.

rg_ambiguity_scan vets requirement text standalone, without a session.
Prior sessions are searchable with rg_session_search, and similar past work
automatically lowers the confidence threshold for familiar tasks.`
}
