// Command chathub relays chat messages between websocket clients.
//
//	chathub -addr=:8000
//
// Everything is as ephemeral as can be. A message is sent to every
// connected client (if any) and then forgotten, including back to the
// client that sent it. There is no history and no point-to-point delivery:
// receiverId travels with the message but does not select recipients.
//
// Connect by opening a websocket to any path.
//
//	ws://localhost:8000/
//
// Each websocket text message is one JSON event. The server greets a new
// connection with its session id:
//
//	{"event":"connect","data":{"sid":"<uuid>"}}
//
// Publish by sending a sendMessage event.
//
//	{"event":"sendMessage","data":{"senderId":"A","receiverId":"B","message":"hi"}}
//
// Every connected client then receives
//
//	{"event":"message","data":{"senderId":"A","receiverId":"B","message":"hi"}}
//
// Publish by POSTing the same payload without the event envelope.
//
//	curl localhost:8000/messages -d '{"senderId":"A","receiverId":"B","message":"hi"}'
//
// Malformed payloads are logged and dropped; the sender gets no reply.
//
// GET / is a liveness check, GET /metrics dumps counters as JSON and
// GET /client serves an HTML websocket client.
//
// Settings come from the environment (PORT defaults to 8000, a .env file
// is read if present) and can be overridden with flags; see -help.
package main
