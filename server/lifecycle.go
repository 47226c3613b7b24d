package server

import (
	"encoding/json"

	"github.com/felixgeelhaar/lsp-go/middleware"
	"github.com/felixgeelhaar/lsp-go/protocol"
)

// InitializeParams is the payload of the initialize request. Client
// capabilities are retained raw; servers that negotiate features decode
// the parts they understand.
type InitializeParams struct {
	ProcessID    *int            `json:"processId"`
	RootURI      string          `json:"rootUri,omitempty"`
	Capabilities json.RawMessage `json:"capabilities,omitempty"`
	Trace        string          `json:"trace,omitempty"`
}

// ServerInfo is the serverInfo member of the initialize result.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is the result of the initialize request.
type InitializeResult struct {
	Capabilities map[string]any `json:"capabilities"`
	ServerInfo   ServerInfo     `json:"serverInfo"`
}

func (s *Server) handleInitialize(req *protocol.Request) (*protocol.Response, error) {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, protocol.NewInvalidParams(err.Error())
		}
	}

	s.mu.Lock()
	if s.state != stateUninitialized {
		s.mu.Unlock()
		return nil, protocol.NewInvalidRequest("server is already initialized")
	}
	s.state = stateInitialized
	info := s.info
	capabilities := s.capabilities
	s.mu.Unlock()
	s.logger.Info("initialized",
		middleware.F("client_root", params.RootURI),
	)

	return protocol.NewResponse(req.ID, InitializeResult{
		Capabilities: capabilities,
		ServerInfo: ServerInfo{
			Name:    info.Name,
			Version: info.Version,
		},
	}), nil
}

func (s *Server) handleShutdown(req *protocol.Request) (*protocol.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateUninitialized {
		return nil, protocol.NewServerNotInitialized("server has not been initialized")
	}
	s.state = stateShutdown

	return protocol.NewResponse(req.ID, nil), nil
}

func (s *Server) handleExit() {
	s.mu.Lock()
	if s.exited {
		s.mu.Unlock()
		return
	}
	s.exited = true
	// Exit after shutdown is the orderly path.
	code := 1
	if s.state == stateShutdown {
		code = 0
	}
	onExit := s.onExit
	s.mu.Unlock()

	if onExit != nil {
		onExit(code)
	}
}
