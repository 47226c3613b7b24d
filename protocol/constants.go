package protocol

// LSP method names handled by this module.
const (
	MethodInitialize  = "initialize"
	MethodInitialized = "initialized"
	MethodShutdown    = "shutdown"
	MethodExit        = "exit"

	MethodDidOpen   = "textDocument/didOpen"
	MethodDidChange = "textDocument/didChange"
	MethodDidClose  = "textDocument/didClose"
	MethodDidSave   = "textDocument/didSave"

	MethodPublishDiagnostics = "textDocument/publishDiagnostics"

	MethodCancelRequest = "$/cancelRequest"
	MethodProgress      = "$/progress"
	MethodLogMessage    = "window/logMessage"
)
