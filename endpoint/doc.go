// Package endpoint implements the JSON-RPC dispatch core of an LSP server.
//
// An Endpoint sits between a framing transport and the application
// handler. The transport delivers one complete message's text per
// OnMessage call; the endpoint classifies it as a single unit or a batch,
// routes each unit to the Handler by the presence of its id member
// (request) or its absence (notification), and assembles the handler's
// output into correctly shaped response and notification messages for the
// Remote.
//
//	ep := endpoint.New(handler, remote)
//	err := ep.OnMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`))
//
// # Batches
//
// A batch (JSON array) is answered by one response array containing the
// response objects of its request-shaped units, in input order.
// Notification-shaped units contribute nothing to the array; output they
// produce is transmitted as separate messages after the response array.
// An empty batch is answered with a single invalid-request error.
//
// # Error behavior
//
// Malformed input is never fatal. Text that is not valid JSON is answered
// with a parse-error response carrying a null id; a batch element that is
// not an object is answered with an invalid-request entry without
// affecting its siblings. OnMessage returns an error only when the Remote
// fails to transmit.
package endpoint
