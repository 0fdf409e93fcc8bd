// Package resources implements the MCP resource handlers.
//
// Resources provide read-only data the host can pull for context. They use
// URI-based addressing (readygate://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/glossary"
	"github.com/readygate/readygate/internal/store"
)

// Handler manages the readygate resource endpoints.
type Handler struct {
	cfg config.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(cfg config.Store) *Handler {
	return &Handler{cfg: cfg}
}

// RulesResource returns the MCP resource definition for the active rule
// parameters.
func (h *Handler) RulesResource() mcp.Resource {
	return mcp.NewResource(
		"readygate://rules/params",
		"Rule Parameters",
		mcp.WithResourceDescription("Active rule-engine parameters, including any accepted amendments"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleRules returns the current rule parameters as JSON.
func (h *Handler) HandleRules(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	root, err := findRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}
	cfg, err := h.cfg.Load(root)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, cfg.RuleParams())
}

// GlossaryResource returns the MCP resource definition for the domain
// glossary.
func (h *Handler) GlossaryResource() mcp.Resource {
	return mcp.NewResource(
		"readygate://glossary",
		"Domain Glossary",
		mcp.WithResourceDescription("Domain terms with their meanings per stakeholder group, as used by overloaded-term detection"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleGlossary returns the glossary terms as JSON.
func (h *Handler) HandleGlossary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	root, err := findRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}
	cfg, err := h.cfg.Load(root)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	var provider glossary.Provider
	if cfg.GlossaryPath != "" {
		provider, err = glossary.LoadFile(cfg.GlossaryPath)
		if err != nil {
			return errorResource(req.Params.URI, err.Error()), nil
		}
	} else {
		provider = glossary.Default()
	}
	return jsonResource(req.Params.URI, provider.Terms())
}

// ActiveSessionResource returns the MCP resource definition for the
// active questioning session.
func (h *Handler) ActiveSessionResource() mcp.Resource {
	return mcp.NewResource(
		"readygate://session/active",
		"Active Questioning Session",
		mcp.WithResourceDescription("Full state of the active questioning session, if any"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleActiveSession returns the active session snapshot as JSON.
func (h *Handler) HandleActiveSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	root, err := findRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	db, err := store.New(config.StatePath(root))
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	defer db.Close()

	sess, err := db.ActiveSession()
	if errors.Is(err, store.ErrNotFound) {
		return errorResource(req.Params.URI, "no active session"), nil
	}
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, sess)
}

// jsonResource marshals v into a JSON resource body.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
