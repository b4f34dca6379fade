package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/cue/internal/ports/primary"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "cue"
	ServerVersion   = "1.0.0"
)

// Agent-facing strings. The rendezvous only works if the agent keeps calling
// back, so every continuing reply ends with a reminder to do so.
const (
	joinInstructions = "Remember it: pass it as the agent_id argument on every cue call so the " +
		"mailbox knows who is asking. Before this session ends you must call the cue tool " +
		"with your final summary, question, or request."

	conversationOver = "The user chose to end the conversation. This session is now over.\n\n" +
		"No further cue call is needed in this session. The join/cue contract applies " +
		"again from the next session on."

	continueReminder = "Reminder: after acting on this instruction you must call the cue tool " +
		"again with your summary, question, or request. The conversation only continues " +
		"through cue; do not end your reply without calling it."
)

// Server speaks line-delimited JSON-RPC over a pipe, usually stdin/stdout of
// a host process. It exposes the three agent tools and forwards them to the
// identity and rendezvous services; all logging goes to the injected logger
// because stdout carries the protocol stream.
type Server struct {
	reader     *bufio.Reader
	writer     io.Writer
	identity   primary.IdentityService
	rendezvous primary.RendezvousService
	mu         sync.Mutex
	logger     zerolog.Logger
}

// NewServer creates an MCP server over the given reader and writer.
func NewServer(r io.Reader, w io.Writer, identity primary.IdentityService, rendezvous primary.RendezvousService, logger zerolog.Logger) *Server {
	return &Server{
		reader:     bufio.NewReader(r),
		writer:     w,
		identity:   identity,
		rendezvous: rendezvous,
		logger:     logger.With().Str("component", "mcp").Logger(),
	}
}

// Run reads requests until EOF. Tool calls are handled synchronously, so a
// blocking cue holds the loop; that matches how hosts drive the protocol,
// one call at a time.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info().Msg("server starting")

	for {
		line, err := s.reader.ReadString('\n')
		if err == io.EOF {
			s.logger.Info().Msg("stdin closed, shutting down")
			return nil
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("read error")
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var req JSONRPCRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.logger.Error().Err(err).Msg("failed to parse request")
			s.sendError(nil, -32700, "Parse error", nil)
			continue
		}

		s.handleRequest(ctx, &req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req *JSONRPCRequest) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized":
		// Notification, no response needed
		s.logger.Debug().Msg("initialized notification received")
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	default:
		s.logger.Warn().Str("method", req.Method).Msg("unknown method")
		s.sendError(req.ID, -32601, "Method not found", nil)
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) {
	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capability{
			Tools: &ToolCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
		Instructions: "This server parks your messages for a human and blocks until they respond. " +
			"Call join once to get an agent_id, then call cue at the end of every reply.",
	}

	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsList(req *JSONRPCRequest) {
	tools := []ToolDefinition{
		{
			Name: "join",
			Description: "Join the conversation and get your agent_id. Call this once at the start " +
				"of a session; the returned agent_id is your identity and must be passed to every " +
				"cue call. Pass a previously issued agent_id to resume that identity.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"agent_id": {
						Type:        "string",
						Description: "Previously issued agent_id to resume. Omit to get a fresh one.",
					},
				},
			},
		},
		{
			Name: "recall",
			Description: "Recover a forgotten agent_id by describing what you were working on. " +
				"Searches earlier cue prompts and returns the matching agent_id, or a fresh one " +
				"when nothing matches.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"hints": {
						Type:        "string",
						Description: "Anything you remember from the earlier conversation, e.g. 'the user asked me to refactor the login module'",
					},
				},
				Required: []string{"hints"},
			},
		},
		{
			Name: "cue",
			Description: "Hand control back to the user and wait for their response. You must call " +
				"this tool at the end of every reply, after completing any task and after answering " +
				"any question. Even when you believe the conversation is over, call it and let the " +
				"user decide. The conversation only continues through this tool; never end a reply " +
				"without calling it.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"prompt": {
						Type:        "string",
						Description: "Your reply, summary, or question for the user (plain text). Put structured requests in payload.",
					},
					"agent_id": {
						Type:        "string",
						Description: "Your identity, obtained from join or recall.",
					},
					"payload": {
						Type: "string",
						Description: `Optional structured request as a JSON string. {"type":"choice","options":[{"id":"A","label":"..."}]} presents options, {"type":"confirm","text":"..."} asks yes/no, {"type":"form","fields":[{"id":"...","label":"...","kind":"text"}]} collects fields.`,
					},
				},
				Required: []string{"prompt", "agent_id"},
			},
		},
	}

	s.sendResult(req.ID, ToolsListResult{Tools: tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req *JSONRPCRequest) {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.logger.Error().Err(err).Msg("failed to parse tool call params")
		s.sendError(req.ID, -32602, "Invalid params", nil)
		return
	}

	switch params.Name {
	case "join":
		s.handleJoin(ctx, req, params)
	case "recall":
		s.handleRecall(ctx, req, params)
	case "cue":
		s.handleCue(ctx, req, params)
	default:
		s.logger.Warn().Str("tool", params.Name).Msg("unknown tool")
		s.sendError(req.ID, -32602, "Unknown tool", nil)
	}
}

func (s *Server) handleJoin(ctx context.Context, req *JSONRPCRequest, params ToolCallParams) {
	agentID, _ := params.Arguments["agent_id"].(string)

	result, err := s.identity.Join(ctx, primary.JoinRequest{AgentID: agentID})
	if err != nil {
		s.sendToolError(req.ID, err)
		return
	}

	var text string
	if result.Created {
		text = fmt.Sprintf("Your agent_id is: %s\n\n%s", result.AgentID, joinInstructions)
	} else {
		text = fmt.Sprintf("Welcome back. Your agent_id is still: %s\n\n%s", result.AgentID, joinInstructions)
	}
	s.sendToolResult(req.ID, TextItem(text))
}

func (s *Server) handleRecall(ctx context.Context, req *JSONRPCRequest, params ToolCallParams) {
	hints, _ := params.Arguments["hints"].(string)
	if strings.TrimSpace(hints) == "" {
		s.sendToolError(req.ID, fmt.Errorf("hints is required"))
		return
	}

	result, err := s.identity.Recall(ctx, primary.RecallRequest{Hints: hints})
	if err != nil {
		s.sendToolError(req.ID, err)
		return
	}

	var text string
	if result.Recalled {
		text = fmt.Sprintf(
			"Found your agent_id: %s\n\nIt last appeared in the request %q. Pass it as the agent_id argument on future cue calls.",
			result.AgentID, result.Matched,
		)
	} else {
		text = fmt.Sprintf(
			"No earlier conversation matched. Your new agent_id is: %s\n\n%s",
			result.AgentID, joinInstructions,
		)
	}
	s.sendToolResult(req.ID, TextItem(text))
}

func (s *Server) handleCue(ctx context.Context, req *JSONRPCRequest, params ToolCallParams) {
	prompt, _ := params.Arguments["prompt"].(string)
	agentID, _ := params.Arguments["agent_id"].(string)
	payload, _ := params.Arguments["payload"].(string)

	if strings.TrimSpace(prompt) == "" {
		s.sendToolError(req.ID, fmt.Errorf("prompt is required"))
		return
	}
	if strings.TrimSpace(agentID) == "" {
		s.sendToolError(req.ID, fmt.Errorf("agent_id is required; call join first"))
		return
	}

	s.logger.Info().Str("agent_id", agentID).Msg("cue tool called")

	result, err := s.rendezvous.Cue(ctx, primary.CueRequest{
		AgentID: agentID,
		Prompt:  prompt,
		Payload: payload,
	})
	if err != nil {
		s.sendToolError(req.ID, err)
		return
	}

	s.sendResult(req.ID, ToolCallResult{Content: renderCueResult(result)})
}

// renderCueResult turns the engine's result into tool content the agent acts
// on. A cancelled result is a single closing message; anything else carries
// the instruction, any images, and the trailing reminder.
func renderCueResult(result *primary.CueResult) []ContentItem {
	if result.Cancelled {
		return []ContentItem{TextItem(conversationOver)}
	}

	var items []ContentItem
	if result.Text != "" {
		items = append(items, TextItem("The user wants to continue and provided the following instruction:\n\n"+result.Text))
	} else {
		items = append(items, TextItem("The user wants to continue and attached the following images:"))
	}
	for _, img := range result.Images {
		items = append(items, ImageItem(img.Base64Data, img.MimeType))
	}
	items = append(items, TextItem(continueReminder))
	return items
}

func (s *Server) sendToolResult(id any, items ...ContentItem) {
	s.sendResult(id, ToolCallResult{Content: items})
}

// sendToolError reports a tool failure inside the result, the way hosts
// expect tool-level errors, rather than as a protocol error.
func (s *Server) sendToolError(id any, err error) {
	s.logger.Warn().Err(err).Msg("tool call failed")
	s.sendResult(id, ToolCallResult{
		Content: []ContentItem{TextItem("Error: " + err.Error())},
		IsError: true,
	})
}

func (s *Server) sendResult(id any, result any) {
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) sendError(id any, code int, message string, data any) {
	s.send(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(resp JSONRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal response")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.writer, "%s\n", data); err != nil {
		s.logger.Error().Err(err).Msg("failed to write response")
	}
}
